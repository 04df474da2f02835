package narration

import "fmt"

// EventKind identifies what an Event reports.
type EventKind int

const (
	// EventProgress is emitted when a segment is submitted to the engine.
	EventProgress EventKind = iota
	// EventSegmentFailed is emitted when the engine could not speak a
	// segment. The session carries on with the next one.
	EventSegmentFailed
	// EventFinished is emitted once per session when it becomes terminal.
	EventFinished
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventSegmentFailed:
		return "segment-failed"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is delivered to the caller on the scheduler's Events channel.
type Event struct {
	Kind    EventKind
	Handle  Handle
	Index   int // 0-based segment index
	Total   int
	Segment TextSegment
	Status  Status // set on EventFinished
	Err     error  // set on EventSegmentFailed
}

// Position returns the 1-based segment number.
func (e Event) Position() int {
	return e.Index + 1
}

// String describes the event for status lines and logs.
func (e Event) String() string {
	switch e.Kind {
	case EventProgress:
		return fmt.Sprintf("reading %d of %d", e.Position(), e.Total)
	case EventSegmentFailed:
		return fmt.Sprintf("could not read %d of %d: %v", e.Position(), e.Total, e.Err)
	case EventFinished:
		return "narration " + e.Status.String()
	default:
		return e.Kind.String()
	}
}

type notificationKind int

const (
	noteStarted notificationKind = iota
	noteEnded
	noteFailed
	noteDelayElapsed
	noteCatalogChanged
	noteCatalogTimeout
)

func (k notificationKind) String() string {
	switch k {
	case noteStarted:
		return "start"
	case noteEnded:
		return "end"
	case noteFailed:
		return "error"
	case noteDelayElapsed:
		return "delay"
	case noteCatalogChanged:
		return "catalog-changed"
	case noteCatalogTimeout:
		return "catalog-timeout"
	default:
		return "unknown"
	}
}

// notification is posted to the scheduler loop by engine callbacks and
// timers, tagged with the generation and segment it was issued for.
type notification struct {
	kind  notificationKind
	gen   uint64
	index int
	err   error
}
