// Package pathfinder computes single-source shortest paths over weighted currency graphs.
package pathfinder

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/xroute/internal/domain"
)

// Paths holds the shortest-path tables for one source.
type Paths struct {
	Source      string
	Distance    map[string]float64
	Predecessor map[string]string
}

// DistanceTo returns the distance to target, +Inf when unreachable or unknown.
func (p *Paths) DistanceTo(target string) float64 {
	d, ok := p.Distance[target]
	if !ok {
		return math.Inf(1)
	}
	return d
}

// Reachable reports whether target has a finite distance.
func (p *Paths) Reachable(target string) bool {
	return !math.IsInf(p.DistanceTo(target), 1)
}

// PathTo walks predecessors from target back to the source and returns the
// path in source->target order.
func (p *Paths) PathTo(target string) ([]string, bool) {
	if !p.Reachable(target) {
		return nil, false
	}

	path := []string{target}
	for current := target; current != p.Source; {
		prev, ok := p.Predecessor[current]
		if !ok {
			return nil, false
		}
		path = append(path, prev)
		current = prev
	}
	slices.Reverse(path)

	return path, true
}

// ShortestPaths runs Bellman-Ford from source. It relaxes every edge |V|-1 times
// and then verifies that no edge can still be relaxed; if one can, a negative
// cycle is reachable from source and ErrNegativeCycle is returned.
func ShortestPaths(g *domain.WeightGraph, source string) (*Paths, error) {
	if !g.HasNode(source) {
		return nil, errors.Wrapf(domain.ErrUnknownCurrency, "source %s", source)
	}

	nodes := g.Nodes()
	paths := initialize(nodes, source)

	for i := 0; i < len(nodes)-1; i++ {
		for _, u := range nodes {
			for _, e := range g.Neighbours(u) {
				paths.relax(e)
			}
		}
	}

	for _, u := range nodes {
		for _, e := range g.Neighbours(u) {
			if paths.canRelax(e) {
				return nil, errors.Wrapf(domain.ErrNegativeCycle, "source %s, edge %s->%s", source, e.From, e.To)
			}
		}
	}

	return paths, nil
}

func initialize(nodes []string, source string) *Paths {
	p := &Paths{
		Source:      source,
		Distance:    make(map[string]float64, len(nodes)),
		Predecessor: make(map[string]string, len(nodes)),
	}
	for _, n := range nodes {
		p.Distance[n] = math.Inf(1)
	}
	p.Distance[source] = 0
	return p
}

func (p *Paths) canRelax(e domain.Edge[float64]) bool {
	return p.Distance[e.From]+e.Weight < p.Distance[e.To]
}

func (p *Paths) relax(e domain.Edge[float64]) {
	if p.canRelax(e) {
		p.Distance[e.To] = p.Distance[e.From] + e.Weight
		p.Predecessor[e.To] = e.From
	}
}
