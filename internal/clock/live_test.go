package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/chadury2021/nautilus-trader-s/errs"
)

func TestLiveTimeNowIsUTC(t *testing.T) {
	c := NewLive()
	now := c.TimeNow()
	if now.Location() != time.UTC {
		t.Fatalf("TimeNow location = %v, want UTC", now.Location())
	}
	if time.Since(now) > time.Second {
		t.Fatalf("TimeNow drifted: %v", now)
	}
}

func TestLivePastDueAlertFiresBeforeReturn(t *testing.T) {
	c := NewLive()
	var fired atomic.Bool
	err := c.SetTimeAlert("late", c.TimeNow().Add(-time.Second), func(string, time.Time) {
		fired.Store(true)
	})
	if err != nil {
		t.Fatalf("SetTimeAlert: %v", err)
	}
	if !fired.Load() {
		t.Fatal("past-due alert must fire synchronously before SetTimeAlert returns")
	}
	if len(c.Labels()) != 0 {
		t.Fatalf("past-due alert must not stay registered, labels = %v", c.Labels())
	}
}

func TestLiveAlertFiresNearAlertTime(t *testing.T) {
	c := NewLive()
	fired := make(chan time.Time, 1)
	alertAt := c.TimeNow().Add(20 * time.Millisecond)
	if err := c.SetTimeAlert("soon", alertAt, func(_ string, at time.Time) {
		fired <- at
	}); err != nil {
		t.Fatalf("SetTimeAlert: %v", err)
	}

	select {
	case at := <-fired:
		if !at.Equal(alertAt) {
			t.Fatalf("handler received %v, want scheduled time %v", at, alertAt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alert never fired")
	}
	deadline := time.Now().Add(time.Second)
	for len(c.Labels()) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("fired alert still registered, labels = %v", c.Labels())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLiveAlertCancelledBeforeFireNeverInvoked(t *testing.T) {
	c := NewLive()
	var fired atomic.Bool
	if err := c.SetTimeAlert("later", c.TimeNow().Add(50*time.Millisecond), func(string, time.Time) {
		fired.Store(true)
	}); err != nil {
		t.Fatalf("SetTimeAlert: %v", err)
	}
	c.CancelTimeAlert("later")
	time.Sleep(150 * time.Millisecond)
	if fired.Load() {
		t.Fatal("cancelled alert must never fire")
	}
}

func TestLiveDuplicateLabelRejected(t *testing.T) {
	c := NewLive()
	defer c.StopAllTimers()
	noop := func(string, time.Time) {}

	if err := c.SetTimer("A", time.Minute, time.Time{}, time.Time{}, true, noop); err != nil {
		t.Fatalf("first SetTimer: %v", err)
	}
	err := c.SetTimer("A", time.Minute, time.Time{}, time.Time{}, true, noop)
	if !errs.HasCode(err, errs.CodeDuplicateLabel) {
		t.Fatalf("expected duplicate_label, got %v", err)
	}
}

func TestLiveRepeatingTimerFiresAndStops(t *testing.T) {
	c := NewLive()
	var count atomic.Int64
	start := c.TimeNow()
	stop := start.Add(35 * time.Millisecond)

	err := c.SetTimer("tick", 10*time.Millisecond, start, stop, true, func(string, time.Time) {
		count.Add(1)
	})
	if err != nil {
		t.Fatalf("SetTimer: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(c.Labels()) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timer never auto-removed, labels = %v", c.Labels())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := count.Load(); got != 3 {
		t.Fatalf("timer fired %d times, want 3 fires inside (start, stop]", got)
	}
}

func TestLiveNonRepeatingTimerFiresOnce(t *testing.T) {
	c := NewLive()
	var count atomic.Int64
	err := c.SetTimer("single", 10*time.Millisecond, time.Time{}, time.Time{}, false, func(string, time.Time) {
		count.Add(1)
	})
	if err != nil {
		t.Fatalf("SetTimer: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Fatalf("non-repeating timer fired %d times, want 1", got)
	}
}

func TestLiveStopAllTimers(t *testing.T) {
	c := NewLive()
	var count atomic.Int64
	noop := func(string, time.Time) { count.Add(1) }

	if err := c.SetTimer("a", 10*time.Millisecond, time.Time{}, time.Time{}, true, noop); err != nil {
		t.Fatalf("SetTimer: %v", err)
	}
	if err := c.SetTimeAlert("b", c.TimeNow().Add(time.Hour), noop); err != nil {
		t.Fatalf("SetTimeAlert: %v", err)
	}
	c.StopAllTimers()
	if got := c.Labels(); len(got) != 0 {
		t.Fatalf("Labels after StopAllTimers = %v", got)
	}
	settled := count.Load()
	time.Sleep(50 * time.Millisecond)
	if count.Load() != settled {
		t.Fatal("timers kept firing after StopAllTimers")
	}
}

func TestLiveCancelUnknownLabelIsNoOp(t *testing.T) {
	c := NewLive()
	c.CancelTimeAlert("ghost")
	c.CancelTimer("ghost")
}
