// Package observ provides lightweight phase timing for the audit pipeline.
package observ

import (
	"fmt"
	"time"
)

// Phase records the duration and metadata of one audit phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the execution time of the audit phases.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary returns a human-readable string of all tracked phases.
func (t *Timer) Summary() string {
	out := "timings:\n"
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		out += fmt.Sprintf("  %-12s %7.2f ms", p.Name, millis(p.Dur))
		if p.Note != "" {
			out += "  // " + p.Note
		}
		out += "\n"
	}
	out += fmt.Sprintf("  %-12s %7.2f ms\n", "total", millis(total))
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
