package notify_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/adamwoolhether/profilehttp/notify"
)

func TestSlot_LastWriteWins(t *testing.T) {
	s := notify.NewSlot()

	s.Publish(notify.Notification{Message: "first", Visible: true})
	s.Publish(notify.Notification{Message: "second", Visible: true})

	got := s.Load()
	if got.Message != "second" || !got.Visible {
		t.Errorf("expected last write, got %+v", got)
	}

	s.Dismiss()
	if got := s.Load(); got != (notify.Notification{}) {
		t.Errorf("expected dismissed slot, got %+v", got)
	}
}

func TestSlot_PartialSetters(t *testing.T) {
	var s notify.Slot

	s.SetMessage("boom")
	if got := s.Load(); got.Message != "boom" || got.Visible {
		t.Errorf("unexpected state after SetMessage: %+v", got)
	}

	s.SetVisible(true)
	if got := s.Load(); got.Message != "boom" || !got.Visible {
		t.Errorf("unexpected state after SetVisible: %+v", got)
	}
}

func TestSlot_ConcurrentWritesNeverTear(t *testing.T) {
	s := notify.NewSlot()

	// Each writer pairs its message with a visibility derived from it, so
	// any torn read shows up as a mismatch.
	const writers = 8
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 500 {
				n := (i + j) % 2
				s.Publish(notify.Notification{Message: fmt.Sprintf("msg-%d", n), Visible: n == 1})
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			return
		default:
		}

		got := s.Load()
		if got.Message == "" {
			continue
		}
		wantVisible := got.Message == "msg-1"
		if got.Visible != wantVisible {
			t.Fatalf("torn read: %+v", got)
		}
	}
}
