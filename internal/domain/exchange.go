package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Exchange is one applied conversion hop.
type Exchange struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	AmountFrom decimal.Decimal `json:"amount_from"`
	AmountTo   decimal.Decimal `json:"amount_to"`
}

// String returns the human-readable trace line.
func (e Exchange) String() string {
	return fmt.Sprintf("Exchanged %s %s to %s %s", e.AmountFrom.String(), e.From, e.AmountTo.String(), e.To)
}

// ExchangeRecord describes a completed multi-hop exchange.
type ExchangeRecord struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"ts"`
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Route     []string        `json:"route"`
	Requested decimal.Decimal `json:"requested"`
	Fee       decimal.Decimal `json:"fee"`
	Exchanges []Exchange      `json:"exchanges"`
}

// NewExchangeRecord creates a record for the applied exchanges of a route.
func NewExchangeRecord(id string, ts time.Time, route Route, requested, fee decimal.Decimal, exchanges []Exchange) ExchangeRecord {
	currencies := make([]string, len(route.Currencies))
	copy(currencies, route.Currencies)

	return ExchangeRecord{
		ID:        id,
		Timestamp: ts,
		Source:    route.Source,
		Target:    route.Target,
		Route:     currencies,
		Requested: requested,
		Fee:       fee,
		Exchanges: exchanges,
	}
}

// Spent returns the amount of the source currency debited by the first hop.
func (r ExchangeRecord) Spent() decimal.Decimal {
	if len(r.Exchanges) == 0 {
		return decimal.Zero
	}
	return r.Exchanges[0].AmountFrom
}

// Received returns the amount of the target currency credited by the last hop.
func (r ExchangeRecord) Received() decimal.Decimal {
	if len(r.Exchanges) == 0 {
		return decimal.Zero
	}
	return r.Exchanges[len(r.Exchanges)-1].AmountTo
}

// ExchangeRecordEntry bundles a record with its journal index.
type ExchangeRecordEntry struct {
	Index  uint64
	Record ExchangeRecord
}
