// Package executor replays a conversion route against a ledger using exact decimal arithmetic.
package executor

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/xroute/internal/domain"
)

const defaultDivisionPrecision int32 = 28

type ledger interface {
	Balance(currency string) (decimal.Decimal, bool)
	Increment(currency string, amount decimal.Decimal) error
	Decrement(currency string, amount decimal.Decimal) error
}

// Executor applies routes hop by hop.
type Executor struct {
	l         *zap.Logger
	precision int32
}

// Option configures the Executor.
type Option func(*Executor)

// WithDivisionPrecision sets the number of decimal places kept when dividing
// the requested amount by the route rate.
func WithDivisionPrecision(places int32) Option {
	return func(e *Executor) {
		if places > 0 {
			e.precision = places
		}
	}
}

// New creates an Executor.
func New(logger *zap.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{l: logger, precision: defaultDivisionPrecision}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FullRouteRate returns the product of fee-adjusted rates along the route.
func FullRouteRate(feeAdjusted *domain.RateGraph, route domain.Route) (decimal.Decimal, error) {
	hops := route.Hops()
	if len(hops) == 0 {
		return decimal.Zero, errors.Wrapf(domain.ErrNoRoute, "route %q has no hops", route.String())
	}

	full := decimal.NewFromInt(1)
	for _, hop := range hops {
		rate, ok := feeAdjusted.Weight(hop.From, hop.To)
		if !ok {
			return decimal.Zero, errors.Wrapf(domain.ErrNoRoute, "no rate for %s", hop.String())
		}
		full = full.Mul(rate)
	}
	return full, nil
}

// Execute converts into route.Target so that requested units arrive, or as many
// as the source balance allows when requested exceeds what is reachable.
// All hop amounts are computed before the ledger is touched.
func (e *Executor) Execute(l ledger, feeAdjusted *domain.RateGraph, route domain.Route, requested decimal.Decimal) ([]domain.Exchange, error) {
	plan, err := e.Plan(l, feeAdjusted, route, requested)
	if err != nil {
		return nil, err
	}

	for _, ex := range plan {
		if err := l.Decrement(ex.From, ex.AmountFrom); err != nil {
			return nil, errors.Wrapf(err, "hop %s_%s", ex.From, ex.To)
		}
		if err := l.Increment(ex.To, ex.AmountTo); err != nil {
			return nil, errors.Wrapf(err, "hop %s_%s", ex.From, ex.To)
		}
		e.l.Info(ex.String(),
			zap.String("from", ex.From),
			zap.String("to", ex.To),
			zap.String("amount_from", ex.AmountFrom.String()),
			zap.String("amount_to", ex.AmountTo.String()))
	}

	return plan, nil
}

// Plan computes the exchanges Execute would apply without mutating the ledger.
func (e *Executor) Plan(l ledger, feeAdjusted *domain.RateGraph, route domain.Route, requested decimal.Decimal) ([]domain.Exchange, error) {
	fullRate, err := FullRouteRate(feeAdjusted, route)
	if err != nil {
		return nil, err
	}

	balance, ok := l.Balance(route.Source)
	if !ok {
		return nil, errors.Wrapf(domain.ErrInsufficientFunds, "%s is not held", route.Source)
	}

	maxTarget := balance.Mul(fullRate)
	amount := balance
	exact := false
	if requested.LessThanOrEqual(maxTarget) {
		amount = requested.DivRound(fullRate, e.precision)
		exact = true
		if amount.GreaterThan(balance) {
			amount = balance
			exact = false
		}
	} else {
		e.l.Warn("requested amount exceeds reachable amount, exchanging whole balance",
			zap.String("requested", requested.String()),
			zap.String("max", maxTarget.String()),
			zap.String("source", route.Source))
	}

	hops := route.Hops()
	plan := make([]domain.Exchange, 0, len(hops))
	for i, hop := range hops {
		rate, _ := feeAdjusted.Weight(hop.From, hop.To)
		received := amount.Mul(rate).Round(e.precision)
		// the source amount was derived from requested, so the last hop
		// delivers requested and the rounding residue stays with the source
		if exact && i == len(hops)-1 {
			received = requested
		}
		plan = append(plan, domain.Exchange{
			From:       hop.From,
			To:         hop.To,
			AmountFrom: amount,
			AmountTo:   received,
		})
		amount = received
	}

	return plan, nil
}
