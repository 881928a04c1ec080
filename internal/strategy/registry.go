// Package strategy exposes the handle the trading layer registers to receive
// forwarded events, and the registry the execution client fans out through.
// Registration and deregistration happen outside the execution core.
package strategy

import (
	"strings"
	"sync"

	"github.com/chadury2021/nautilus-trader-s/errs"
	"github.com/chadury2021/nautilus-trader-s/internal/message"
)

// Strategy receives every event forwarded by the execution client. OnEvent is
// invoked from the processing goroutine; implementations must not block it.
type Strategy interface {
	ID() string
	OnEvent(evt message.Event)
}

// Registry is a thread-safe collection of registered strategies. Fan-out
// iterates a snapshot in registration order.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]Strategy
	ordered []Strategy
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Strategy)}
}

// Register adds a strategy; a duplicate id is a conflict.
func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return errs.New("strategy", errs.CodeInvalidConfig, errs.WithMessage("nil strategy"))
	}
	id := strings.TrimSpace(s.ID())
	if id == "" {
		return errs.New("strategy", errs.CodeInvalidConfig, errs.WithMessage("strategy id required"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[id]; exists {
		return errs.New("strategy", errs.CodeConflict,
			errs.WithMessage("strategy id already registered"),
			errs.WithField("strategy_id", id))
	}
	r.byID[id] = s
	r.ordered = append(r.ordered, s)
	return nil
}

// Deregister removes a strategy by id; no-op if absent.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[id]; !exists {
		return
	}
	delete(r.byID, id)
	for i, s := range r.ordered {
		if s.ID() == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
}

// Snapshot returns the registered strategies in registration order.
func (r *Registry) Snapshot() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Strategy, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len reports the number of registered strategies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
