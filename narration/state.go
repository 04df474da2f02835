package narration

// Status represents the lifecycle position of a narration session.
type Status int

const (
	// StatusIdle indicates no session has started yet.
	StatusIdle Status = iota
	// StatusSpeaking indicates the session owns the engine and is reading.
	StatusSpeaking
	// StatusCompleted indicates every segment was submitted and answered.
	StatusCompleted
	// StatusCancelled indicates the session was stopped or superseded.
	StatusCancelled
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSpeaking:
		return "speaking"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further submissions may happen in this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions lists the allowed moves. Speaking loops on itself for every
// advance; terminal states have no way out.
var transitions = map[Status][]Status{
	StatusIdle:     {StatusSpeaking},
	StatusSpeaking: {StatusSpeaking, StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session is the state container for one narration run. It is owned by the
// scheduler's control goroutine and never shared.
type Session struct {
	handle   Handle
	segments []TextSegment
	lang     string
	prosody  Prosody
	cursor   int
	status   Status

	// inFlight is set between a submission and its terminal notification.
	inFlight bool
	// awaitingCatalog is set while the next submission waits for voices.
	awaitingCatalog bool
	reported        bool
}

func newSession(h Handle, segments []TextSegment, lang string, p Prosody) *Session {
	segs := make([]TextSegment, len(segments))
	copy(segs, segments)
	return &Session{
		handle:   h,
		segments: segs,
		lang:     lang,
		prosody:  p,
		status:   StatusIdle,
	}
}

// transition moves the session to the given status, returning false if the
// move is not allowed.
func (s *Session) transition(to Status) bool {
	if !CanTransition(s.status, to) {
		return false
	}
	s.status = to
	return true
}

func (s *Session) exhausted() bool {
	return s.cursor >= len(s.segments)
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Handle:   s.handle,
		Status:   s.status,
		Cursor:   s.cursor,
		Total:    len(s.segments),
		Lang:     s.lang,
		InFlight: s.inFlight,
	}
}

// Snapshot is a copy of a session's observable state.
type Snapshot struct {
	Handle   Handle
	Status   Status
	Cursor   int // number of segments submitted so far
	Total    int
	Lang     string
	InFlight bool
}

// Active returns true if the session is still reading.
func (s Snapshot) Active() bool {
	return s.Status == StatusSpeaking
}

// Progress returns the fraction of segments submitted, between 0 and 1.
func (s Snapshot) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Cursor) / float64(s.Total)
}
