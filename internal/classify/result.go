package classify

import "sort"

// ExternalMap maps library names to their resolved external paths while
// preserving first-seen order. Re-adding a known name keeps the original
// entry.
type ExternalMap struct {
	names []string
	paths map[string]string
}

// Set records name -> path unless name is already present.
func (m *ExternalMap) Set(name, path string) {
	if m.paths == nil {
		m.paths = make(map[string]string)
	}
	if _, ok := m.paths[name]; ok {
		return
	}
	m.names = append(m.names, name)
	m.paths[name] = path
}

// Get returns the recorded path for name.
func (m *ExternalMap) Get(name string) (string, bool) {
	path, ok := m.paths[name]
	return path, ok
}

func (m *ExternalMap) Len() int { return len(m.names) }

// Names returns library names in insertion order. Do not modify the
// returned slice.
func (m *ExternalMap) Names() []string { return m.names }

// Paths returns resolved paths in insertion order.
func (m *ExternalMap) Paths() []string {
	out := make([]string, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.paths[name])
	}
	return out
}

// Result holds the classification state for one Handle run. All fields
// start empty, are populated during categorize/process, and are read-only
// afterwards.
type Result struct {
	// Names is the union of all distinct library names seen.
	Names map[string]struct{}
	// Broken is the set of names with unresolved linkage.
	Broken map[string]struct{}
	// External maps names to paths resolved outside the build root.
	External ExternalMap
	// NewRecipesNeeded lists external paths requiring a new recipe, in
	// first-seen order of the External mapping.
	NewRecipesNeeded []string
	// Messages holds the synthesized diagnostics, in emission order.
	Messages []string
}

// Hint is one machine-usable remediation suggestion.
type Hint struct {
	// Kind is "fix-link-flags" for broken linkage or "add-recipe" for
	// external linkage.
	Kind    string `json:"kind"`
	Library string `json:"library"`
	Path    string `json:"path,omitempty"`
}

// Hints derives the remediation summary from the classified sets. Broken
// libraries come first: the resulting binary will not load at all, so they
// outrank everything else in remediation order.
func (r *Result) Hints() []Hint {
	hints := make([]Hint, 0, len(r.Broken)+r.External.Len())
	broken := make([]string, 0, len(r.Broken))
	for name := range r.Broken {
		broken = append(broken, name)
	}
	sort.Strings(broken)
	for _, name := range broken {
		hints = append(hints, Hint{Kind: "fix-link-flags", Library: name})
	}
	for _, name := range r.External.Names() {
		path, _ := r.External.Get(name)
		hints = append(hints, Hint{Kind: "add-recipe", Library: name, Path: path})
	}
	return hints
}

func newResult() *Result {
	return &Result{
		Names:  make(map[string]struct{}),
		Broken: make(map[string]struct{}),
	}
}
