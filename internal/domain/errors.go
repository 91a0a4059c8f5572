package domain

import "github.com/pkg/errors"

var (
	// ErrNegativeAmount is returned when crediting a negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInsufficientFunds is returned when a debit exceeds the balance or the currency is not held.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoCurrency is returned when an exchange is requested against an empty ledger.
	ErrNoCurrency = errors.New("you have no currency")
	// ErrNoRoute is returned when the target can't be reached from any held currency.
	ErrNoRoute = errors.New("no route")
	// ErrNegativeCycle is returned when an arbitrage loop is reachable from a searched source.
	ErrNegativeCycle = errors.New("negative cycle detected, cannot find the shortest paths")
	// ErrInvalidRate is returned for zero or negative exchange rates.
	ErrInvalidRate = errors.New("invalid rate")
	// ErrInvalidFee is returned for a fee fraction outside [0, 1).
	ErrInvalidFee = errors.New("invalid fee")
	// ErrInvalidAmount is returned for a non-positive requested amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrUnknownCurrency is returned when a currency is not a node of the rate graph.
	ErrUnknownCurrency = errors.New("unknown currency")
)
