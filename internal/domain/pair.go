// Package domain defines currency graphs, the balance ledger and exchange records.
package domain

import "fmt"

// Pair is a single directed conversion step.
type Pair struct {
	// From currency that is sold.
	From string
	// To currency that is bought.
	To string
}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}
