package narration_test

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/newsreel/narration"
	"github.com/dgnsrekt/newsreel/narration/engines/mock"
)

// TestMsgFromEvent tests the conversion of scheduler events to messages
func TestMsgFromEvent(t *testing.T) {
	h := narration.Handle{Generation: 3}
	seg := narration.NewSegment("Second headline", "en-GB")

	progress, ok := narration.MsgFromEvent(narration.Event{
		Kind: narration.EventProgress, Handle: h, Index: 1, Total: 4, Segment: seg,
	}).(narration.ProgressMsg)
	if !ok {
		t.Fatal("MsgFromEvent(progress) did not return ProgressMsg")
	}
	if progress.Text != "Second headline" || progress.Progress != 0.5 {
		t.Errorf("ProgressMsg = %+v, want text %q and progress 0.5", progress, seg.Text)
	}

	failed, ok := narration.MsgFromEvent(narration.Event{
		Kind: narration.EventSegmentFailed, Handle: h, Index: 2, Total: 4, Err: narration.ErrUtteranceFailed,
	}).(narration.SegmentFailedMsg)
	if !ok || !errors.Is(failed.Err, narration.ErrUtteranceFailed) {
		t.Errorf("MsgFromEvent(failed) = %+v, want SegmentFailedMsg", failed)
	}

	finished, ok := narration.MsgFromEvent(narration.Event{
		Kind: narration.EventFinished, Handle: h, Status: narration.StatusCancelled,
	}).(narration.FinishedMsg)
	if !ok || finished.Status != narration.StatusCancelled || finished.Handle != h {
		t.Errorf("MsgFromEvent(finished) = %+v, want cancelled FinishedMsg", finished)
	}
}

// TestWaitForEventCmdClosed tests the closed channel message
func TestWaitForEventCmdClosed(t *testing.T) {
	ch := make(chan narration.Event)
	close(ch)

	msg := narration.WaitForEventCmd(ch)()
	if !narration.IsClosed(msg) {
		t.Errorf("WaitForEventCmd() on a closed channel = %T, want closed message", msg)
	}
}

// TestStartCmd tests the messages StartCmd reports
func TestStartCmd(t *testing.T) {
	s := newTestScheduler(t, mock.New(), testConfig())

	tests := []struct {
		name     string
		segments []narration.TextSegment
		lang     string
		disabled bool
		wantErr  error
	}{
		{"started", segments("one", "two"), "en-US", false, nil},
		{"empty", nil, "en-US", false, narration.ErrNoSegments},
		{"disabled language", segments("vanakkam"), "ta-IN", true, narration.ErrLanguageDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := narration.StartCmd(s, tt.segments, tt.lang, "title")()
			if tt.wantErr == nil {
				started, ok := msg.(narration.StartedMsg)
				if !ok {
					t.Fatalf("StartCmd() = %T, want StartedMsg", msg)
				}
				if started.Total != len(tt.segments) || !started.Handle.Valid() {
					t.Errorf("StartedMsg = %+v, want %d segments and a valid handle", started, len(tt.segments))
				}
				return
			}
			em, ok := msg.(narration.ErrorMsg)
			if !ok {
				t.Fatalf("StartCmd() = %T, want ErrorMsg", msg)
			}
			if !errors.Is(em.Err, tt.wantErr) {
				t.Errorf("ErrorMsg.Err = %v, want %v", em.Err, tt.wantErr)
			}
			if em.Disabled != tt.disabled {
				t.Errorf("ErrorMsg.Disabled = %v, want %v", em.Disabled, tt.disabled)
			}
		})
	}
}
