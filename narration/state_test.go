package narration

import "testing"

// TestStatusString tests the string representation of statuses.
func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusIdle, "idle"},
		{StatusSpeaking, "speaking"},
		{StatusCompleted, "completed"},
		{StatusCancelled, "cancelled"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.status.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestCanTransition tests the one-directional lifecycle.
func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{"idle to speaking", StatusIdle, StatusSpeaking, true},
		{"idle to completed", StatusIdle, StatusCompleted, false},
		{"idle to cancelled", StatusIdle, StatusCancelled, false},
		{"speaking advances", StatusSpeaking, StatusSpeaking, true},
		{"speaking to completed", StatusSpeaking, StatusCompleted, true},
		{"speaking to cancelled", StatusSpeaking, StatusCancelled, true},
		{"speaking to idle", StatusSpeaking, StatusIdle, false},
		{"completed is terminal", StatusCompleted, StatusSpeaking, false},
		{"completed to cancelled", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusSpeaking, false},
		{"cancelled to completed", StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

// TestSessionLifecycle tests a session from creation to completion.
func TestSessionLifecycle(t *testing.T) {
	segs := []TextSegment{NewSegment("one", ""), NewSegment("two", "")}
	s := newSession(Handle{Generation: 1}, segs, "en-US", DefaultProsody())

	// the session keeps its own copy
	segs[0].Text = "changed"
	if s.segments[0].Text != "one" {
		t.Errorf("segment text = %q, want %q", s.segments[0].Text, "one")
	}

	if s.status != StatusIdle {
		t.Fatalf("initial status = %v, want %v", s.status, StatusIdle)
	}
	if s.transition(StatusCompleted) {
		t.Error("transition(idle -> completed) = true, want false")
	}
	if !s.transition(StatusSpeaking) {
		t.Fatal("transition(idle -> speaking) = false, want true")
	}

	for !s.exhausted() {
		s.cursor++
	}
	if !s.transition(StatusCompleted) {
		t.Fatal("transition(speaking -> completed) = false, want true")
	}
	if s.transition(StatusCancelled) {
		t.Error("transition(completed -> cancelled) = true, want false")
	}

	snap := s.snapshot()
	if snap.Cursor != 2 || snap.Total != 2 || snap.Status != StatusCompleted {
		t.Errorf("snapshot = %+v, want completed 2/2", snap)
	}
	if snap.Active() {
		t.Error("Active() = true, want false")
	}
	if snap.Progress() != 1 {
		t.Errorf("Progress() = %v, want 1", snap.Progress())
	}
}

// TestSnapshotProgress tests progress on an empty snapshot.
func TestSnapshotProgress(t *testing.T) {
	var snap Snapshot
	if got := snap.Progress(); got != 0 {
		t.Errorf("Progress() = %v, want 0", got)
	}
}
