package scan

import "time"

// Stage describes a high-level scan phase.
type Stage string

const (
	// StageCollect is the artifact discovery stage.
	StageCollect Stage = "collect"
	// StageLdd is the per-artifact dependency resolution stage.
	StageLdd Stage = "ldd"
	// StageClassify is the record construction stage.
	StageClassify Stage = "classify"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the artifact is waiting to be scanned.
	StatusQueued Status = "queued"
	// StatusWorking indicates the artifact is being scanned.
	StatusWorking Status = "working"
	// StatusDone indicates the artifact finished scanning.
	StatusDone Status = "done"
	// StatusError indicates the scan of the artifact failed.
	StatusError Status = "error"
)

// Event reports progress for an artifact (or for the scan overall when File
// is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
