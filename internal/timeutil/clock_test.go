package timeutil

import (
	"testing"
	"time"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(90 * time.Second)
	if got := c.Now().Sub(start); got != 90*time.Second {
		t.Errorf("after Advance: elapsed %v, want 90s", got)
	}

	c.Sleep(5 * time.Second)
	if got := c.Now().Sub(start); got != 95*time.Second {
		t.Errorf("after Sleep: elapsed %v, want 95s", got)
	}
	if sleeps := c.Sleeps(); len(sleeps) != 1 || sleeps[0] != 5*time.Second {
		t.Errorf("Sleeps() = %v, want [5s]", sleeps)
	}

	select {
	case fired := <-c.After(5 * time.Second):
		if got := fired.Sub(start); got != 100*time.Second {
			t.Errorf("After fired at %v, want start+100s", got)
		}
	default:
		t.Fatal("MockClock.After should be ready immediately")
	}
	if sleeps := c.Sleeps(); len(sleeps) != 2 {
		t.Errorf("Sleeps() = %v, want After recorded too", sleeps)
	}

	later := start.Add(time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("after Set: Now() = %v, want %v", c.Now(), later)
	}
}

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	before := time.Now()
	if c.Now().Before(before) {
		t.Error("RealClock.Now() went backwards")
	}
	select {
	case <-c.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Error("RealClock.After did not fire")
	}
}
