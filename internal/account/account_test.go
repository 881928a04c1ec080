package account

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccountUpdateAndSnapshot(t *testing.T) {
	acct := New("ACCT-1")
	if acct.ID != "ACCT-1" {
		t.Fatalf("id %q", acct.ID)
	}

	currency, balance, _, _ := acct.Snapshot()
	if currency != "" || !balance.IsZero() {
		t.Fatalf("expected empty account, got %s %s", currency, balance)
	}

	acct.Update("USD", decimal.NewFromInt(100000), decimal.NewFromInt(100000), decimal.NewFromInt(80000))
	currency, balance, marginBalance, marginAvailable := acct.Snapshot()
	if currency != "USD" {
		t.Fatalf("currency %q", currency)
	}
	if !balance.Equal(decimal.NewFromInt(100000)) || !marginBalance.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("balances %s %s", balance, marginBalance)
	}
	if !marginAvailable.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("margin available %s", marginAvailable)
	}

	// A later snapshot replaces the previous one wholesale.
	acct.Update("EUR", decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.NewFromInt(3))
	currency, balance, _, _ = acct.Snapshot()
	if currency != "EUR" || !balance.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("after second update: %s %s", currency, balance)
	}
}

func TestPortfolioPositions(t *testing.T) {
	p := NewPortfolio()
	if p.Len() != 0 {
		t.Fatalf("new portfolio has %d positions", p.Len())
	}

	p.SetPosition("P-1", decimal.NewFromInt(100000))
	p.SetPosition("P-2", decimal.NewFromInt(-50000))
	if p.Len() != 2 {
		t.Fatalf("expected 2 positions, got %d", p.Len())
	}
	if !p.Position("P-1").Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("P-1 %s", p.Position("P-1"))
	}
	if !p.Position("P-2").Equal(decimal.NewFromInt(-50000)) {
		t.Fatalf("P-2 %s", p.Position("P-2"))
	}

	if !p.Position("absent").IsZero() {
		t.Fatalf("absent position %s", p.Position("absent"))
	}

	p.SetPosition("P-1", decimal.Zero)
	if p.Len() != 1 {
		t.Fatalf("flat position not removed, len %d", p.Len())
	}
}
