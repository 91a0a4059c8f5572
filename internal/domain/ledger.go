package domain

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Balance is an amount held in a single currency.
type Balance struct {
	Currency string          `json:"currency" yaml:"currency"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
}

// Ledger is an in-memory portfolio of non-negative balances.
// Currencies are enumerated in the order they were first credited.
type Ledger struct {
	mu       sync.RWMutex
	order    []string
	balances map[string]decimal.Decimal
}

// NewLedger creates a ledger from initial balances.
func NewLedger(balances ...Balance) (*Ledger, error) {
	l := &Ledger{balances: make(map[string]decimal.Decimal, len(balances))}
	for _, b := range balances {
		if err := l.Increment(b.Currency, b.Amount); err != nil {
			return nil, errors.Wrapf(err, "initial %s balance", b.Currency)
		}
	}
	return l, nil
}

// Increment credits amount to currency, creating the entry when absent.
func (l *Ledger) Increment(currency string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.Wrapf(ErrNegativeAmount, "credit %s %s", amount.String(), currency)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.balances[currency]
	if !ok {
		l.order = append(l.order, currency)
	}
	l.balances[currency] = current.Add(amount)
	return nil
}

// Decrement debits amount from currency. Zero balances are kept.
func (l *Ledger) Decrement(currency string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.balances[currency]
	if !ok || current.LessThan(amount) {
		return errors.Wrapf(ErrInsufficientFunds, "debit %s %s: have %s", amount.String(), currency, current.String())
	}
	l.balances[currency] = current.Sub(amount)
	return nil
}

// Balance returns the balance of currency and whether it is held.
func (l *Ledger) Balance(currency string) (decimal.Decimal, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.balances[currency]
	return b, ok
}

// Currencies returns held currencies in ledger order.
func (l *Ledger) Currencies() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Len returns the number of held currencies.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Snapshot returns a copy of all balances in ledger order.
func (l *Ledger) Snapshot() []Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Balance, 0, len(l.order))
	for _, currency := range l.order {
		out = append(out, Balance{Currency: currency, Amount: l.balances[currency]})
	}
	return out
}
