package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/newsreel/narration"
	"github.com/muesli/reflow/truncate"
)

// narrationStatus tracks what the status bar shows about narration.
type narrationStatus struct {
	handle    narration.Handle
	state     narration.Status
	current   int // 0-based index of the segment being read
	total     int
	title     string
	failures  int
	lastError string

	// unavailable is set once when no speech engine exists
	unavailable bool
}

func newNarrationStatus() narrationStatus {
	return narrationStatus{state: narration.StatusIdle, current: -1}
}

// update applies a narration message. It reports whether msg belonged to
// the session being displayed.
func (s *narrationStatus) update(msg any) bool {
	switch m := msg.(type) {
	case narration.StartedMsg:
		*s = narrationStatus{
			handle:      m.Handle,
			state:       narration.StatusSpeaking,
			current:     -1,
			total:       m.Total,
			title:       m.Title,
			unavailable: s.unavailable,
		}
		return true

	case narration.ProgressMsg:
		if m.Handle != s.handle {
			return false
		}
		s.current = m.Index
		s.total = m.Total
		return true

	case narration.SegmentFailedMsg:
		if m.Handle != s.handle {
			return false
		}
		s.failures++
		if m.Err != nil {
			s.lastError = m.Err.Error()
		}
		return true

	case narration.FinishedMsg:
		if m.Handle != s.handle {
			return false
		}
		s.state = m.Status
		return true

	case narration.ErrorMsg:
		if m.Err != nil {
			s.lastError = m.Err.Error()
		}
		return true

	case narration.UnavailableMsg:
		s.unavailable = true
		if m.Err != nil {
			s.lastError = m.Err.Error()
		}
		return true
	}
	return false
}

// active reports whether a session is speaking.
func (s narrationStatus) active() bool {
	return s.state == narration.StatusSpeaking
}

// progress returns the fraction of segments submitted.
func (s narrationStatus) progress() float64 {
	if s.total <= 0 || s.current < 0 {
		return 0
	}
	return float64(s.current+1) / float64(s.total)
}

// compact returns the status bar fragment, or "" when idle.
func (s narrationStatus) compact() string {
	var icon string
	switch s.state {
	case narration.StatusSpeaking:
		icon = "▶"
	case narration.StatusCompleted:
		icon = "■"
	case narration.StatusCancelled:
		icon = "◼"
	default:
		return ""
	}

	out := lipgloss.NewStyle().Foreground(s.color()).Render(icon + " " + s.state.String())
	if s.active() && s.total > 0 && s.current >= 0 {
		out += narrationCounterStyle(fmt.Sprintf(" reading %d of %d", s.current+1, s.total))
	}
	if s.failures > 0 {
		out += narrationErrorStyle(fmt.Sprintf(" (%d skipped)", s.failures))
	}
	return out
}

// detailed returns a multi-line panel for the pager.
func (s narrationStatus) detailed(width int) string {
	if s.state == narration.StatusIdle && s.lastError == "" {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Narration"))
	if s.title != "" {
		lines = append(lines, truncate.StringWithTail(s.title, uint(max(0, width-2)), ellipsis)) //nolint:gosec
	}
	if s.total > 0 && s.current >= 0 {
		lines = append(lines, fmt.Sprintf("Segment: %d of %d", s.current+1, s.total))
		if width > 20 {
			lines = append(lines, s.progressBar(width-4))
		}
	}
	if s.lastError != "" {
		msg := truncate.StringWithTail(s.lastError, uint(max(0, width-9)), ellipsis) //nolint:gosec
		lines = append(lines, narrationErrorStyle("Error: "+msg))
	}
	return strings.Join(lines, "\n")
}

// progressBar renders a bar width cells wide.
func (s narrationStatus) progressBar(width int) string {
	if width < 10 {
		return ""
	}
	filled := min(int(s.progress()*float64(width)), width)
	return lipgloss.NewStyle().Foreground(s.color()).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")).Render(strings.Repeat("░", width-filled))
}

func (s narrationStatus) color() lipgloss.Color {
	switch s.state {
	case narration.StatusSpeaking:
		return lipgloss.Color("#00FF00")
	case narration.StatusCompleted:
		return lipgloss.Color("#888888")
	case narration.StatusCancelled:
		return lipgloss.Color("#FF8800")
	default:
		return lipgloss.Color("#666666")
	}
}
