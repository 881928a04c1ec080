package clock

import (
	"sort"
	"sync"
	"time"
)

// VirtualClock is an in-memory clock for deterministic simulations. Time
// advances only when the driving loop calls SetTime or Advance; every due
// timer fires synchronously, in chronological order (ties broken by label),
// before the step call returns. Handlers never run concurrently with the
// caller.
type VirtualClock struct {
	mu      sync.Mutex
	current time.Time
	timers  map[string]*virtualTimer
}

type virtualTimer struct {
	label    string
	nextFire time.Time
	interval time.Duration
	stop     time.Time
	repeat   bool
	oneShot  bool
	handler  Handler
}

// NewVirtual initialises a simulated clock starting at the provided timestamp.
func NewVirtual(start time.Time) *VirtualClock {
	return &VirtualClock{
		current: start.UTC(),
		timers:  make(map[string]*virtualTimer),
	}
}

// TimeNow returns the current simulated time.
func (c *VirtualClock) TimeNow() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// UnixEpoch returns 1970-01-01T00:00:00Z.
func (c *VirtualClock) UnixEpoch() time.Time { return unixEpoch }

// SetTimeAlert schedules a one-shot callback. A past-due alertTime fires on
// the next step rather than being dropped.
func (c *VirtualClock) SetTimeAlert(label string, alertTime time.Time, handler Handler) error {
	label, err := validateLabel(label)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.timers[label]; exists {
		return duplicateLabel(label)
	}
	c.timers[label] = &virtualTimer{
		label:    label,
		nextFire: alertTime.UTC(),
		oneShot:  true,
		handler:  handler,
	}
	return nil
}

// CancelTimeAlert removes a pending one-shot alert; no-op on unknown labels.
func (c *VirtualClock) CancelTimeAlert(label string) { c.cancel(label) }

// SetTimer schedules a repeating timer firing every interval from start until
// stop. Zero start defaults to the current simulated time; zero stop repeats
// unbounded.
func (c *VirtualClock) SetTimer(label string, interval time.Duration, start, stop time.Time, repeat bool, handler Handler) error {
	label, err := validateLabel(label)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if start.IsZero() {
		start = c.current
	}
	start, stop = start.UTC(), stop.UTC()
	if err := validateTimer(label, interval, start, stop); err != nil {
		return err
	}
	if _, exists := c.timers[label]; exists {
		return duplicateLabel(label)
	}
	first := start.Add(interval)
	if repeat && !stop.IsZero() && first.After(stop) {
		// No fire fits inside (start, stop]; nothing to schedule.
		return nil
	}
	c.timers[label] = &virtualTimer{
		label:    label,
		nextFire: first,
		interval: interval,
		stop:     stop,
		repeat:   repeat,
		handler:  handler,
	}
	return nil
}

// CancelTimer stops and removes a repeating timer; no-op on unknown labels.
func (c *VirtualClock) CancelTimer(label string) { c.cancel(label) }

// Labels returns the sorted labels of all active timers and alerts.
func (c *VirtualClock) Labels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	labels := make([]string, 0, len(c.timers))
	for label := range c.timers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// StopAllTimers cancels every active timer and alert.
func (c *VirtualClock) StopAllTimers() {
	c.mu.Lock()
	c.timers = make(map[string]*virtualTimer)
	c.mu.Unlock()
}

// SetTime moves the clock to the supplied timestamp, firing every due timer
// in chronological order before returning. Moving backwards fires nothing.
func (c *VirtualClock) SetTime(ts time.Time) {
	c.advanceTo(ts.UTC())
}

// Advance moves the clock forward by the specified duration, firing every due
// timer in chronological order before returning.
func (c *VirtualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()
	c.advanceTo(target)
}

func (c *VirtualClock) advanceTo(target time.Time) {
	for {
		c.mu.Lock()
		due := c.nextDueLocked(target)
		if due == nil {
			if target.After(c.current) {
				c.current = target
			}
			c.mu.Unlock()
			return
		}
		fireAt := due.nextFire
		if fireAt.After(c.current) {
			c.current = fireAt
		}
		if due.oneShot || !due.repeat {
			delete(c.timers, due.label)
		} else {
			due.nextFire = due.nextFire.Add(due.interval)
			if !due.stop.IsZero() && due.nextFire.After(due.stop) {
				delete(c.timers, due.label)
			}
		}
		handler := due.handler
		label := due.label
		c.mu.Unlock()

		// Handlers run outside the lock so they may set or cancel timers.
		handler(label, fireAt)
	}
}

// nextDueLocked picks the earliest timer due at or before target; ties are
// broken by label for determinism.
func (c *VirtualClock) nextDueLocked(target time.Time) *virtualTimer {
	var due *virtualTimer
	for _, t := range c.timers {
		if t.nextFire.After(target) {
			continue
		}
		if due == nil || t.nextFire.Before(due.nextFire) ||
			(t.nextFire.Equal(due.nextFire) && t.label < due.label) {
			due = t
		}
	}
	return due
}

func (c *VirtualClock) cancel(label string) {
	c.mu.Lock()
	delete(c.timers, label)
	c.mu.Unlock()
}
