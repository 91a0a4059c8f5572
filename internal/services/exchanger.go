// Package services wires rate transformation, routing and route execution into
// a single exchange operation.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/xroute/internal/domain"
	"github.com/vadiminshakov/xroute/internal/services/executor"
	"github.com/vadiminshakov/xroute/internal/services/rates"
	"github.com/vadiminshakov/xroute/internal/services/router"
	"github.com/vadiminshakov/xroute/pkg/retrier"
)

// Journal stores completed exchanges.
type Journal interface {
	Save(record domain.ExchangeRecord) error
}

// Exchanger converts held currencies into a target currency along the best route.
type Exchanger struct {
	l        *zap.Logger
	router   *router.Router
	executor *executor.Executor
	journal  Journal
	retrier  *retrier.Retrier
	now      func() time.Time
	mu       sync.Mutex
}

// ExchangerOption configures the Exchanger.
type ExchangerOption func(*Exchanger)

// WithJournal records every completed exchange in j.
func WithJournal(j Journal) ExchangerOption {
	return func(e *Exchanger) {
		e.journal = j
	}
}

// WithJournalRetrier overrides the retry policy for journal writes.
func WithJournalRetrier(r *retrier.Retrier) ExchangerOption {
	return func(e *Exchanger) {
		e.retrier = r
	}
}

// WithDivisionPrecision sets decimal places kept by the route executor.
func WithDivisionPrecision(places int32) ExchangerOption {
	return func(e *Exchanger) {
		e.executor = executor.New(e.l, executor.WithDivisionPrecision(places))
	}
}

// NewExchanger creates an Exchanger.
func NewExchanger(logger *zap.Logger, opts ...ExchangerOption) *Exchanger {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Exchanger{
		l:        logger,
		router:   router.New(logger),
		executor: executor.New(logger),
		retrier:  retrier.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exchange obtains requested units of target (or as much as the chosen source
// balance allows) and returns the applied hops. The ledger is left untouched
// when an error is returned.
func (e *Exchanger) Exchange(ledger *domain.Ledger, raw *domain.RateGraph, fee decimal.Decimal, target string, requested decimal.Decimal) ([]domain.Exchange, error) {
	if !requested.IsPositive() {
		return nil, errors.Wrapf(domain.ErrInvalidAmount, "requested %s %s", requested.String(), target)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if ledger.Len() == 0 {
		return nil, domain.ErrNoCurrency
	}

	if err := rates.Validate(raw); err != nil {
		return nil, err
	}
	feeAdjusted, err := rates.ApplyFee(raw, fee)
	if err != nil {
		return nil, err
	}
	transformed, err := rates.LogTransform(feeAdjusted)
	if err != nil {
		return nil, err
	}

	route, err := e.router.Find(ledger.Currencies(), target, transformed)
	if err != nil {
		return nil, err
	}

	exchanges, err := e.executor.Execute(ledger, feeAdjusted, route, requested)
	if err != nil {
		return nil, errors.Wrapf(err, "execute route %s", route.String())
	}

	e.record(route, requested, fee, exchanges)

	return exchanges, nil
}

func (e *Exchanger) record(route domain.Route, requested, fee decimal.Decimal, exchanges []domain.Exchange) {
	if e.journal == nil {
		return
	}

	rec := domain.NewExchangeRecord(uuid.NewString(), e.now().UTC(), route, requested, fee, exchanges)
	err := e.retrier.Do(context.Background(), func(context.Context) error {
		return e.journal.Save(rec)
	})
	if err != nil {
		e.l.Error("failed to journal exchange", zap.String("id", rec.ID), zap.Error(err))
		return
	}
	e.l.Debug("exchange journaled", zap.String("id", rec.ID), zap.String("route", route.String()))
}

// Exchange runs a single exchange with a default Exchanger.
func Exchange(ledger *domain.Ledger, raw *domain.RateGraph, fee decimal.Decimal, target string, requested decimal.Decimal) error {
	_, err := NewExchanger(nil).Exchange(ledger, raw, fee, target, requested)
	return err
}
