package domain

import "strings"

// Route is an ordered conversion path from a held currency to the target.
type Route struct {
	Source     string
	Target     string
	Currencies []string
	// Distance is the sum of transformed weights along the route.
	Distance float64
}

// Hops returns consecutive conversion steps of the route.
func (r Route) Hops() []Pair {
	if len(r.Currencies) < 2 {
		return nil
	}
	hops := make([]Pair, 0, len(r.Currencies)-1)
	for i := 0; i+1 < len(r.Currencies); i++ {
		hops = append(hops, Pair{From: r.Currencies[i], To: r.Currencies[i+1]})
	}
	return hops
}

// String returns the route as "A -> B -> C".
func (r Route) String() string {
	return strings.Join(r.Currencies, " -> ")
}
