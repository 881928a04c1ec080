// Package clock provides the single source of "now" for the trading core and
// a registry of labelled, cancellable timers. Two implementations satisfy the
// same contract: LiveClock fires handlers from timing goroutines against
// wall-clock time, VirtualClock fires them synchronously when a driving
// backtest loop steps simulated time. Production and deterministic replay
// share one interface.
package clock

import (
	"strings"
	"time"

	"github.com/chadury2021/nautilus-trader-s/errs"
)

// Handler is invoked when a timer or alert fires, with the timer's label and
// the scheduled fire time.
type Handler func(label string, at time.Time)

// Clock is the time source and timer registry contract.
//
// Labels must be unique among currently active timers; reusing a label after
// its timer fired or was cancelled is legal. Cancelling an unknown label is a
// silent no-op on both cancel operations.
type Clock interface {
	// TimeNow returns the current time, UTC-normalized.
	TimeNow() time.Time
	// UnixEpoch returns 1970-01-01T00:00:00Z.
	UnixEpoch() time.Time

	// SetTimeAlert schedules a one-shot callback at alertTime. A past-due
	// alert is never dropped: LiveClock invokes the handler synchronously
	// before returning, VirtualClock fires it on the next step.
	SetTimeAlert(label string, alertTime time.Time, handler Handler) error
	// CancelTimeAlert removes a pending one-shot alert; no-op if absent.
	CancelTimeAlert(label string)

	// SetTimer schedules a handler firing every interval from start until
	// stop. A zero start defaults to TimeNow(); a zero stop repeats
	// unbounded. When repeat is false the timer behaves as a single bounded
	// alert at start+interval.
	SetTimer(label string, interval time.Duration, start, stop time.Time, repeat bool, handler Handler) error
	// CancelTimer stops and removes a repeating timer; no-op if absent.
	CancelTimer(label string)

	// Labels returns the sorted labels of all active timers and alerts.
	Labels() []string
	// StopAllTimers cancels every active timer and alert.
	StopAllTimers()
}

func validateLabel(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", errs.New("clock", errs.CodeInvalidConfig, errs.WithMessage("timer label required"))
	}
	return trimmed, nil
}

func duplicateLabel(label string) error {
	return errs.New("clock", errs.CodeDuplicateLabel, errs.WithLabel(label),
		errs.WithMessage("label already registered with an active timer"))
}

func validateTimer(label string, interval time.Duration, start, stop time.Time) error {
	if interval <= 0 {
		return errs.New("clock", errs.CodeInvalidInterval, errs.WithLabel(label),
			errs.WithMessage("timer interval must be positive"),
			errs.WithField("interval", interval.String()))
	}
	if !stop.IsZero() && !stop.After(start) {
		return errs.New("clock", errs.CodeInvalidRange, errs.WithLabel(label),
			errs.WithMessage("timer stop time must be after start time"))
	}
	return nil
}

var unixEpoch = time.Unix(0, 0).UTC()
