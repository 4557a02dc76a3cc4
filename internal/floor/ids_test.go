package floor

import (
	"testing"
	"time"
)

func TestIDGeneratorStrictlyIncreasing(t *testing.T) {
	// Freeze the clock so every call lands in the same millisecond.
	frozen := time.UnixMilli(1700000000000)
	gen := newIDGeneratorAt(func() time.Time { return frozen })

	last := int64(0)
	for i := 0; i < 1000; i++ {
		id := gen.Next()
		if id <= last {
			t.Fatalf("id %d is not greater than previous id %d", id, last)
		}
		last = id
	}
}

func TestIDGeneratorFollowsClock(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	gen := newIDGeneratorAt(func() time.Time { return now })

	first := gen.Next()
	if first != 1700000000000 {
		t.Fatalf("first id = %d, want 1700000000000", first)
	}

	// When the clock jumps ahead, ids follow it.
	now = time.UnixMilli(1700000005000)
	second := gen.Next()
	if second != 1700000005000 {
		t.Fatalf("second id = %d, want 1700000005000", second)
	}

	// When the clock stalls, ids keep increasing anyway.
	third := gen.Next()
	if third != 1700000005001 {
		t.Fatalf("third id = %d, want 1700000005001", third)
	}
}
