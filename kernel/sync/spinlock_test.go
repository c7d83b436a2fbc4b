package sync

import "testing"

func TestSpinlock(t *testing.T) {
	var sl Spinlock

	if !sl.TryToAcquire() {
		t.Fatal("expected TryToAcquire to succeed on a free lock")
	}

	if sl.TryToAcquire() {
		t.Fatal("expected TryToAcquire to fail on a held lock")
	}

	sl.Release()

	sl.Acquire()
	if sl.TryToAcquire() {
		t.Fatal("expected TryToAcquire to fail after Acquire")
	}
	sl.Release()

	// Releasing a free lock is a no-op.
	sl.Release()

	if !sl.TryToAcquire() {
		t.Fatal("expected TryToAcquire to succeed after Release")
	}
	sl.Release()
}
