// Package router selects the most favourable conversion route to a target currency.
package router

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/xroute/internal/domain"
	"github.com/vadiminshakov/xroute/internal/services/pathfinder"
)

// Router finds the best route to a target among held currencies.
type Router struct {
	l *zap.Logger
}

// New creates a Router.
func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{l: logger}
}

// Find runs a shortest-path search from every held currency except the target and
// picks the candidate with the smallest transformed distance. Ties keep the
// first candidate in ledger order. A negative cycle from any candidate aborts the search.
func (r *Router) Find(held []string, target string, transformed *domain.WeightGraph) (domain.Route, error) {
	if !transformed.HasNode(target) {
		return domain.Route{}, errors.Wrapf(domain.ErrNoRoute, "no route to %s", target)
	}

	var (
		best  *pathfinder.Paths
		found bool
	)
	for _, currency := range held {
		if currency == target {
			continue
		}
		if !transformed.HasNode(currency) {
			r.l.Debug("held currency has no rates, skipping", zap.String("currency", currency))
			continue
		}

		paths, err := pathfinder.ShortestPaths(transformed, currency)
		if err != nil {
			return domain.Route{}, err
		}

		distance := paths.DistanceTo(target)
		r.l.Debug("candidate source",
			zap.String("source", currency),
			zap.String("target", target),
			zap.Float64("distance", distance))

		if !paths.Reachable(target) {
			continue
		}
		if !found || distance < best.DistanceTo(target) {
			best = paths
			found = true
		}
	}

	if !found {
		return domain.Route{}, errors.Wrapf(domain.ErrNoRoute, "no route to %s", target)
	}

	currencies, ok := best.PathTo(target)
	if !ok {
		return domain.Route{}, errors.Wrapf(domain.ErrNoRoute, "no route to %s", target)
	}

	route := domain.Route{
		Source:     best.Source,
		Target:     target,
		Currencies: currencies,
		Distance:   best.DistanceTo(target),
	}
	r.l.Info("route selected", zap.String("route", route.String()), zap.Float64("distance", route.Distance))

	return route, nil
}
