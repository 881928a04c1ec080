// Package account holds the account and portfolio state passed through the
// execution client at construction. The client refreshes account balances
// from venue account-state events; the portfolio belongs to the strategy
// layer.
package account

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Account tracks balances for a single trading account.
type Account struct {
	ID string

	mu              sync.RWMutex
	currency        string
	balance         decimal.Decimal
	marginBalance   decimal.Decimal
	marginAvailable decimal.Decimal
}

// New constructs an empty account.
func New(id string) *Account {
	return &Account{ID: id}
}

// Update replaces the account balances with a fresh snapshot.
func (a *Account) Update(currency string, balance, marginBalance, marginAvailable decimal.Decimal) {
	a.mu.Lock()
	a.currency = currency
	a.balance = balance
	a.marginBalance = marginBalance
	a.marginAvailable = marginAvailable
	a.mu.Unlock()
}

// Snapshot returns the current balances.
func (a *Account) Snapshot() (currency string, balance, marginBalance, marginAvailable decimal.Decimal) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currency, a.balance, a.marginBalance, a.marginAvailable
}

// Portfolio tracks open position quantities keyed by position id.
type Portfolio struct {
	mu        sync.RWMutex
	positions map[string]decimal.Decimal
}

// NewPortfolio constructs an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{positions: make(map[string]decimal.Decimal)}
}

// SetPosition records the signed quantity held for a position id; a zero
// quantity removes the entry.
func (p *Portfolio) SetPosition(positionID string, quantity decimal.Decimal) {
	p.mu.Lock()
	if quantity.IsZero() {
		delete(p.positions, positionID)
	} else {
		p.positions[positionID] = quantity
	}
	p.mu.Unlock()
}

// Position returns the signed quantity held for a position id.
func (p *Portfolio) Position(positionID string) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positions[positionID]
}

// Len returns the number of open positions.
func (p *Portfolio) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.positions)
}
