package clock

import (
	"sort"
	"sync"
	"time"
)

// LiveClock reads wall-clock time and fires handlers from dedicated timing
// goroutines. Handlers therefore run concurrently with the caller; a handler
// that needs ordered processing must route its work through the execution
// queue like any other producer.
type LiveClock struct {
	mu     sync.Mutex
	timers map[string]*liveTimer
}

type liveTimer struct {
	stop func()
}

// NewLive constructs a wall-clock backed clock.
func NewLive() *LiveClock {
	return &LiveClock{timers: make(map[string]*liveTimer)}
}

// TimeNow returns the current wall-clock time in UTC.
func (c *LiveClock) TimeNow() time.Time { return time.Now().UTC() }

// UnixEpoch returns 1970-01-01T00:00:00Z.
func (c *LiveClock) UnixEpoch() time.Time { return unixEpoch }

// SetTimeAlert schedules a one-shot callback. A past-due alertTime invokes
// the handler synchronously before SetTimeAlert returns.
func (c *LiveClock) SetTimeAlert(label string, alertTime time.Time, handler Handler) error {
	label, err := validateLabel(label)
	if err != nil {
		return err
	}
	alertTime = alertTime.UTC()

	c.mu.Lock()
	if _, exists := c.timers[label]; exists {
		c.mu.Unlock()
		return duplicateLabel(label)
	}

	delay := time.Until(alertTime)
	if delay <= 0 {
		c.mu.Unlock()
		handler(label, alertTime)
		return nil
	}

	timer := time.AfterFunc(delay, func() {
		c.remove(label)
		handler(label, alertTime)
	})
	c.timers[label] = &liveTimer{stop: func() { timer.Stop() }}
	c.mu.Unlock()
	return nil
}

// CancelTimeAlert removes a pending one-shot alert; no-op on unknown labels.
func (c *LiveClock) CancelTimeAlert(label string) { c.cancel(label) }

// SetTimer schedules a repeating timer firing every interval from start until
// stop. Zero start defaults to now; zero stop repeats unbounded.
func (c *LiveClock) SetTimer(label string, interval time.Duration, start, stop time.Time, repeat bool, handler Handler) error {
	label, err := validateLabel(label)
	if err != nil {
		return err
	}
	if start.IsZero() {
		start = c.TimeNow()
	}
	start, stop = start.UTC(), stop.UTC()
	if err := validateTimer(label, interval, start, stop); err != nil {
		return err
	}

	c.mu.Lock()
	if _, exists := c.timers[label]; exists {
		c.mu.Unlock()
		return duplicateLabel(label)
	}

	first := start.Add(interval)
	if repeat && !stop.IsZero() && first.After(stop) {
		// No fire fits inside (start, stop]; nothing to schedule.
		c.mu.Unlock()
		return nil
	}

	done := make(chan struct{})
	var once sync.Once
	c.timers[label] = &liveTimer{stop: func() { once.Do(func() { close(done) }) }}
	c.mu.Unlock()

	go c.run(label, interval, first, stop, repeat, handler, done)
	return nil
}

func (c *LiveClock) run(label string, interval time.Duration, next, stop time.Time, repeat bool, handler Handler, done chan struct{}) {
	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-done:
			timer.Stop()
			return
		case <-timer.C:
		}
		handler(label, next)
		if !repeat {
			c.remove(label)
			return
		}
		next = next.Add(interval)
		if !stop.IsZero() && next.After(stop) {
			c.remove(label)
			return
		}
	}
}

// CancelTimer stops and removes a repeating timer; no-op on unknown labels.
func (c *LiveClock) CancelTimer(label string) { c.cancel(label) }

// Labels returns the sorted labels of all active timers and alerts.
func (c *LiveClock) Labels() []string {
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
func (c *LiveClock) StopAllTimers() {
	c.mu.Lock()
	stops := make([]func(), 0, len(c.timers))
	for _, t := range c.timers {
		stops = append(stops, t.stop)
	}
	c.timers = make(map[string]*liveTimer)
	c.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

func (c *LiveClock) cancel(label string) {
	c.mu.Lock()
	t, ok := c.timers[label]
	if ok {
		delete(c.timers, label)
	}
	c.mu.Unlock()
	if ok {
		t.stop()
	}
}

func (c *LiveClock) remove(label string) {
	c.mu.Lock()
	delete(c.timers, label)
	c.mu.Unlock()
}
