package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Edge is a directed conversion from one currency to another.
type Edge[W any] struct {
	From   string
	To     string
	Weight W
}

// Graph is a directed graph keyed by currency code.
// Nodes and edges are enumerated in insertion order.
type Graph[W any] struct {
	nodes []string
	edges map[string][]Edge[W]
}

// RateGraph holds exchange rates, raw or fee-adjusted.
type RateGraph = Graph[decimal.Decimal]

// WeightGraph holds path-search weights.
type WeightGraph = Graph[float64]

// NewGraph creates an empty graph.
func NewGraph[W any]() *Graph[W] {
	return &Graph[W]{edges: make(map[string][]Edge[W])}
}

// NewRateGraph builds a rate graph from nested maps.
// Map iteration order is random, so currencies are added in lexical order.
func NewRateGraph(rates map[string]map[string]float64) *RateGraph {
	g := NewGraph[decimal.Decimal]()

	for _, from := range sortedKeys(rates) {
		g.AddNode(from)
		neighbours := rates[from]
		for _, to := range sortedKeys(neighbours) {
			g.SetEdge(from, to, decimal.NewFromFloat(neighbours[to]))
		}
	}

	return g
}

// AddNode registers a currency. Adding an existing node is a no-op.
func (g *Graph[W]) AddNode(name string) {
	if g.HasNode(name) {
		return
	}
	g.nodes = append(g.nodes, name)
	g.edges[name] = nil
}

// SetEdge sets the weight of from->to, registering both endpoints.
func (g *Graph[W]) SetEdge(from, to string, weight W) {
	g.AddNode(from)
	g.AddNode(to)

	edges := g.edges[from]
	for i := range edges {
		if edges[i].To == to {
			edges[i].Weight = weight
			return
		}
	}
	g.edges[from] = append(edges, Edge[W]{From: from, To: to, Weight: weight})
}

// HasNode reports whether the currency is part of the graph.
func (g *Graph[W]) HasNode(name string) bool {
	_, ok := g.edges[name]
	return ok
}

// Nodes returns currencies in insertion order.
func (g *Graph[W]) Nodes() []string {
	nodes := make([]string, len(g.nodes))
	copy(nodes, g.nodes)
	return nodes
}

// Neighbours returns outgoing edges of the node.
func (g *Graph[W]) Neighbours(name string) []Edge[W] {
	return g.edges[name]
}

// Weight returns the weight of from->to.
func (g *Graph[W]) Weight(from, to string) (W, bool) {
	for _, e := range g.edges[from] {
		if e.To == to {
			return e.Weight, true
		}
	}
	var zero W
	return zero, false
}

// Len returns the number of nodes.
func (g *Graph[W]) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges.
func (g *Graph[W]) EdgeCount() int {
	n := 0
	for _, edges := range g.edges {
		n += len(edges)
	}
	return n
}

// MapWeights copies the graph, replacing every weight with fn(edge).
// Nodes without edges are carried over so the copy has the same node set.
func MapWeights[W, V any](g *Graph[W], fn func(Edge[W]) (V, error)) (*Graph[V], error) {
	out := NewGraph[V]()
	for _, node := range g.nodes {
		out.AddNode(node)
	}

	for _, node := range g.nodes {
		for _, e := range g.edges[node] {
			w, err := fn(e)
			if err != nil {
				return nil, err
			}
			out.SetEdge(e.From, e.To, w)
		}
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
