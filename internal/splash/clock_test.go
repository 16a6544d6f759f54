package splash

import (
	"fmt"
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	var fired []string
	c.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "b") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	stopped := c.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "stopped") })

	if !stopped.Stop() {
		t.Error("Stop() = false for a pending timer")
	}
	if stopped.Stop() {
		t.Error("second Stop() = true")
	}
	if next, ok := c.NextDeadline(); !ok || !next.Equal(start.Add(100*time.Millisecond)) {
		t.Errorf("NextDeadline() = %v, %v", next, ok)
	}

	c.Advance(250 * time.Millisecond)
	if fmt.Sprint(fired) != "[a]" {
		t.Errorf("fired = %v after 250ms, want [a]", fired)
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}

	c.AdvanceTo(start.Add(time.Second))
	if fmt.Sprint(fired) != "[a b]" {
		t.Errorf("fired = %v, want [a b]", fired)
	}
	if _, ok := c.NextDeadline(); ok {
		t.Error("NextDeadline() found a timer after all fired")
	}
	if !c.Now().Equal(start.Add(time.Second)) {
		t.Errorf("Now() = %v", c.Now())
	}
}

func TestManualClockImmediate(t *testing.T) {
	c := NewManualClock(time.Time{})
	done := make(chan struct{})
	c.AfterFunc(0, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero-delay timer did not run")
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}
