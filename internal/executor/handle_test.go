package executor

import (
	"errors"
	"sync"
	"testing"

	"github.com/aryankumar/batchrun/internal/util"
)

func TestHandle_Lifecycle(t *testing.T) {
	notify := make(chan *Handle, 1)
	h := newHandle(7, notify)

	if h.State() != StatePending || h.IsDone() {
		t.Fatalf("new handle should be pending, got %s", h.State())
	}
	if h.Index() != 7 {
		t.Errorf("expected index 7, got %d", h.Index())
	}

	if !h.start() {
		t.Fatal("start should succeed on a pending handle")
	}
	if h.Cancel() {
		t.Error("cancel should fail on a running handle")
	}

	h.finish(Record{Value: "ok"}, nil)
	if h.State() != StateDone {
		t.Errorf("expected done, got %s", h.State())
	}

	select {
	case got := <-notify:
		if got != h {
			t.Error("notify received a different handle")
		}
	default:
		t.Fatal("handle did not notify on finish")
	}

	rec, err := h.Result()
	if err != nil || rec.Value != "ok" {
		t.Errorf("unexpected result %+v, %v", rec, err)
	}
}

func TestHandle_Cancel(t *testing.T) {
	notify := make(chan *Handle, 1)
	h := newHandle(0, notify)

	if !h.Cancel() {
		t.Fatal("cancel should succeed on a pending handle")
	}
	if h.Cancel() {
		t.Error("second cancel should report false")
	}
	if h.start() {
		t.Error("a cancelled handle must not start")
	}
	if h.State() != StateCancelled || !h.IsDone() {
		t.Errorf("expected cancelled, got %s", h.State())
	}

	_, err := h.Result()
	if !errors.Is(err, util.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
	if len(notify) != 1 {
		t.Errorf("expected exactly one notification, got %d", len(notify))
	}
}

func TestHandle_Fail(t *testing.T) {
	h := newHandle(0, nil)
	h.fail(errBoom)

	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed after fail")
	}

	if _, err := h.Result(); !errors.Is(err, errBoom) {
		t.Errorf("expected errBoom, got %v", err)
	}

	// Terminal handles ignore further transitions
	h.finish(Record{Value: 1}, nil)
	if _, err := h.Result(); !errors.Is(err, errBoom) {
		t.Errorf("finish overwrote a terminal handle: %v", err)
	}
}

// TestHandle_CancelRace checks that a racing start and cancel produce exactly
// one winner and exactly one notification
func TestHandle_CancelRace(t *testing.T) {
	for i := 0; i < 200; i++ {
		notify := make(chan *Handle, 1)
		h := newHandle(i, notify)

		var started, cancelled bool
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if h.start() {
				started = true
				h.finish(Record{}, nil)
			}
		}()
		go func() {
			defer wg.Done()
			cancelled = h.Cancel()
		}()
		wg.Wait()

		if started == cancelled {
			t.Fatalf("iteration %d: started=%v cancelled=%v", i, started, cancelled)
		}
		if len(notify) != 1 {
			t.Fatalf("iteration %d: expected one notification, got %d", i, len(notify))
		}
	}
}

func TestHandleState_String(t *testing.T) {
	tests := []struct {
		state    HandleState
		expected string
	}{
		{StatePending, "pending"},
		{StateRunning, "running"},
		{StateDone, "done"},
		{StateCancelled, "cancelled"},
		{HandleState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
