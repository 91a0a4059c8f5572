// Package rates derives fee-adjusted and path-search graphs from raw exchange rates.
package rates

import (
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/xroute/internal/domain"
)

var one = decimal.NewFromInt(1)

// ValidateFee checks that fee is a fraction in [0, 1).
func ValidateFee(fee decimal.Decimal) error {
	if fee.IsNegative() || fee.GreaterThanOrEqual(one) {
		return errors.Wrapf(domain.ErrInvalidFee, "fee %s must be in [0, 1)", fee.String())
	}
	return nil
}

// Validate checks that every rate of the graph is positive.
func Validate(raw *domain.RateGraph) error {
	_, err := domain.MapWeights(raw, func(e domain.Edge[decimal.Decimal]) (decimal.Decimal, error) {
		return e.Weight, checkPositive(e)
	})
	return err
}

// ApplyFee returns a copy of raw with every rate multiplied by (1 - fee).
func ApplyFee(raw *domain.RateGraph, fee decimal.Decimal) (*domain.RateGraph, error) {
	if err := ValidateFee(fee); err != nil {
		return nil, err
	}

	keep := one.Sub(fee)
	return domain.MapWeights(raw, func(e domain.Edge[decimal.Decimal]) (decimal.Decimal, error) {
		if err := checkPositive(e); err != nil {
			return decimal.Zero, err
		}
		return e.Weight.Mul(keep), nil
	})
}

// LogTransform returns a path-search graph where every rate r becomes -ln(r).
// Minimizing the sum of these weights maximizes the product of rates.
func LogTransform(feeAdjusted *domain.RateGraph) (*domain.WeightGraph, error) {
	return domain.MapWeights(feeAdjusted, func(e domain.Edge[decimal.Decimal]) (float64, error) {
		if err := checkPositive(e); err != nil {
			return 0, err
		}
		return -math.Log(e.Weight.InexactFloat64()), nil
	})
}

func checkPositive(e domain.Edge[decimal.Decimal]) error {
	if !e.Weight.IsPositive() {
		return errors.Wrapf(domain.ErrInvalidRate, "rate %s->%s is %s", e.From, e.To, e.Weight.String())
	}
	return nil
}
