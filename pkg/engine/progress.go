package engine

import "time"

// Progress phases.
const (
	PhaseDiscover = "discover"
	PhasePorts    = "ports"
	PhaseDevice   = "device"
	PhaseUsers    = "users"
	PhaseSearch   = "search"
)

// ProgressSink receives progress events. Events are delivered from the
// goroutine running the operation, never concurrently.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ProgressSinkFunc adapts a function to ProgressSink.
type ProgressSinkFunc func(ProgressEvent)

// OnEvent calls f(ev).
func (f ProgressSinkFunc) OnEvent(ev ProgressEvent) { f(ev) }

type ProgressEvent struct {
	Phase     string
	Host      string
	Port      int
	Status    string
	Message   string
	Timestamp time.Time
}

func statusFromError(err error) string {
	if err != nil {
		return "failed"
	}
	return "completed"
}

func (e *Engine) emit(ev ProgressEvent) {
	if e.progress == nil {
		return
	}
	ev.Timestamp = time.Now()
	e.progress.OnEvent(ev)
}
