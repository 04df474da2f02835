package narration

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between narration and the UI.

// ProgressMsg indicates a segment has been handed to the engine.
type ProgressMsg struct {
	Handle   Handle
	Index    int // 0-based segment index
	Total    int
	Text     string
	Progress float64 // segments submitted so far over total (0.0 to 1.0)
}

// SegmentFailedMsg indicates one segment could not be spoken. Narration
// continues with the next segment.
type SegmentFailedMsg struct {
	Handle Handle
	Index  int
	Total  int
	Err    error
}

// FinishedMsg indicates a session reached a terminal status.
type FinishedMsg struct {
	Handle Handle
	Status Status
}

// StartedMsg indicates Start accepted a session.
type StartedMsg struct {
	Handle Handle
	Total  int
	Title  string // what is being read, for status lines
}

// ErrorMsg indicates a narration request was rejected.
type ErrorMsg struct {
	Err         error
	Recoverable bool
	Disabled    bool // true when the language cannot be narrated
}

// UnavailableMsg indicates no speech engine can be used. It is sent once at
// startup so the UI can disable narration.
type UnavailableMsg struct {
	Err error
}

// closedMsg is returned when the events channel has been closed.
type closedMsg struct{}

// MsgFromEvent converts a scheduler event into its Bubble Tea message.
func MsgFromEvent(ev Event) tea.Msg {
	switch ev.Kind {
	case EventProgress:
		p := 0.0
		if ev.Total > 0 {
			p = float64(ev.Position()) / float64(ev.Total)
		}
		return ProgressMsg{
			Handle:   ev.Handle,
			Index:    ev.Index,
			Total:    ev.Total,
			Text:     ev.Segment.Text,
			Progress: p,
		}
	case EventSegmentFailed:
		return SegmentFailedMsg{Handle: ev.Handle, Index: ev.Index, Total: ev.Total, Err: ev.Err}
	case EventFinished:
		return FinishedMsg{Handle: ev.Handle, Status: ev.Status}
	default:
		return nil
	}
}

// WaitForEventCmd waits for the next scheduler event. The UI re-issues it
// after every narration message it receives.
func WaitForEventCmd(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return MsgFromEvent(ev)
	}
}

// IsClosed reports whether msg signals that the events channel closed.
func IsClosed(msg tea.Msg) bool {
	_, ok := msg.(closedMsg)
	return ok
}

// StartCmd starts a session on s and reports the outcome.
func StartCmd(s *Scheduler, segments []TextSegment, lang, title string, opts ...StartOption) tea.Cmd {
	return func() tea.Msg {
		h, err := s.Start(segments, lang, opts...)
		if err != nil {
			return ErrorMsg{
				Err:         err,
				Recoverable: IsRecoverableError(err),
				Disabled:    errors.Is(err, ErrLanguageDisabled),
			}
		}
		return StartedMsg{Handle: h, Total: len(segments), Title: title}
	}
}

// StopCmd cancels the current session.
func StopCmd(s *Scheduler) tea.Cmd {
	return func() tea.Msg {
		s.Stop()
		return nil
	}
}
