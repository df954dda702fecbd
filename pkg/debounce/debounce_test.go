package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/pdf-annotator/pkg/debounce"
)

func TestSchedule_CoalescesBurst(t *testing.T) {
	d := debounce.New(20 * time.Millisecond)

	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		d.Schedule(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}

	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("last = %d, want 5", got)
	}
}

func TestFlush_RunsSynchronously(t *testing.T) {
	d := debounce.New(time.Hour)

	ran := false
	d.Schedule(func() { ran = true })

	if !d.Pending() {
		t.Fatal("Pending() = false after Schedule")
	}
	if !d.Flush() {
		t.Fatal("Flush() = false, want true")
	}
	if !ran {
		t.Error("Flush() did not run the pending call")
	}
	if d.Pending() {
		t.Error("Pending() = true after Flush")
	}
	if d.Flush() {
		t.Error("second Flush() = true, want false")
	}
}

func TestCancel_DropsPendingCall(t *testing.T) {
	d := debounce.New(10 * time.Millisecond)

	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })

	if !d.Cancel() {
		t.Fatal("Cancel() = false, want true")
	}

	time.Sleep(40 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestFlush_AfterFireIsNoop(t *testing.T) {
	d := debounce.New(5 * time.Millisecond)

	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })

	time.Sleep(40 * time.Millisecond)

	if d.Flush() {
		t.Error("Flush() = true after the call already fired")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}
