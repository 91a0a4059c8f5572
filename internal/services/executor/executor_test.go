package executor

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/xroute/internal/domain"
	"github.com/vadiminshakov/xroute/internal/services/rates"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Balance(currency string) (decimal.Decimal, bool) {
	args := m.Called(currency)
	return args.Get(0).(decimal.Decimal), args.Bool(1)
}

func (m *mockLedger) Increment(currency string, amount decimal.Decimal) error {
	return m.Called(currency, amount).Error(0)
}

func (m *mockLedger) Decrement(currency string, amount decimal.Decimal) error {
	return m.Called(currency, amount).Error(0)
}

func decimalMatcher(expected decimal.Decimal) interface{} {
	return mock.MatchedBy(func(actual decimal.Decimal) bool {
		return expected.Equal(actual)
	})
}

func feeAdjusted(t *testing.T, raw map[string]map[string]float64) *domain.RateGraph {
	g, err := rates.ApplyFee(domain.NewRateGraph(raw), decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	return g
}

func usdLedger(t *testing.T) *domain.Ledger {
	l, err := domain.NewLedger(domain.Balance{Currency: "USD", Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	return l
}

func balance(t *testing.T, l *domain.Ledger, currency string) decimal.Decimal {
	b, ok := l.Balance(currency)
	require.True(t, ok, "%s must be held", currency)
	return b
}

var multiHopRates = map[string]map[string]float64{
	"USD": {"BTC": 1, "ETH": 4},
	"BTC": {"ETH": 10},
	"ETH": {},
}

func TestFullRouteRate(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)

	rate, err := FullRouteRate(g, domain.Route{Currencies: []string{"USD", "BTC", "ETH"}})
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("9.801")), "got %s", rate)

	_, err = FullRouteRate(g, domain.Route{Currencies: []string{"ETH", "USD"}})
	assert.True(t, errors.Is(err, domain.ErrNoRoute))

	_, err = FullRouteRate(g, domain.Route{Currencies: []string{"USD"}})
	assert.True(t, errors.Is(err, domain.ErrNoRoute))
}

func TestExecutor_Direct(t *testing.T) {
	g := feeAdjusted(t, map[string]map[string]float64{
		"USD": {"BTC": 1, "ETH": 4},
		"BTC": {"ETH": 3},
		"ETH": {},
	})
	l := usdLedger(t)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "ETH"}}

	exchanges, err := New(zap.NewNop()).Execute(l, g, route, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, exchanges, 1)

	assert.True(t, balance(t, l, "ETH").Equal(decimal.NewFromInt(10)), "got %s", balance(t, l, "ETH"))
	assert.InDelta(t, 97.47474747474747, balance(t, l, "USD").InexactFloat64(), 1e-9)
	assert.Equal(t, "Exchanged 2.5252525252525252525252525253 USD to 10 ETH", exchanges[0].String())
	assert.Equal(t, "USD", exchanges[0].From)
	assert.Equal(t, "ETH", exchanges[0].To)
}

func TestExecutor_MultiHop(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	l := usdLedger(t)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "BTC", "ETH"}}

	exchanges, err := New(nil).Execute(l, g, route, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, exchanges, 2)

	assert.True(t, balance(t, l, "ETH").Equal(decimal.NewFromInt(10)), "got %s", balance(t, l, "ETH"))
	assert.InDelta(t, 98.97969594939292, balance(t, l, "USD").InexactFloat64(), 1e-9)
	for _, ex := range exchanges {
		assert.GreaterOrEqual(t, ex.AmountFrom.Exponent(), -defaultDivisionPrecision, ex.String())
		assert.GreaterOrEqual(t, ex.AmountTo.Exponent(), -defaultDivisionPrecision, ex.String())
	}
	// intermediate currency is passed through completely
	assert.True(t, balance(t, l, "BTC").IsZero())

	// each hop spends what the previous one received
	assert.True(t, exchanges[0].AmountTo.Equal(exchanges[1].AmountFrom))
}

func TestExecutor_Saturation(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	l := usdLedger(t)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "BTC", "ETH"}}

	_, err := New(nil).Execute(l, g, route, decimal.NewFromInt(1000))
	require.NoError(t, err)

	assert.True(t, balance(t, l, "USD").IsZero())
	assert.True(t, balance(t, l, "ETH").Equal(decimal.RequireFromString("980.1")), "got %s", balance(t, l, "ETH"))
}

func TestExecutor_EqualityBoundary(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "BTC", "ETH"}}

	exact := usdLedger(t)
	_, err := New(nil).Execute(exact, g, route, decimal.RequireFromString("980.1"))
	require.NoError(t, err)

	saturated := usdLedger(t)
	_, err = New(nil).Execute(saturated, g, route, decimal.RequireFromString("980.1000001"))
	require.NoError(t, err)

	for _, currency := range []string{"USD", "BTC", "ETH"} {
		assert.True(t, balance(t, exact, currency).Equal(balance(t, saturated, currency)),
			"%s: %s vs %s", currency, balance(t, exact, currency), balance(t, saturated, currency))
	}
	assert.True(t, balance(t, exact, "USD").IsZero())
}

func TestExecutor_DivisionPrecision(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "ETH"}}

	plan, err := New(nil, WithDivisionPrecision(4)).Plan(usdLedger(t), g, route, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.True(t, plan[0].AmountFrom.Equal(decimal.RequireFromString("2.5253")), "got %s", plan[0].AmountFrom)
	assert.True(t, plan[0].AmountTo.Equal(decimal.NewFromInt(10)), "got %s", plan[0].AmountTo)

	plan, err = New(nil, WithDivisionPrecision(4)).Plan(usdLedger(t), g, route, decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.True(t, plan[0].AmountTo.Equal(decimal.NewFromInt(396)), "got %s", plan[0].AmountTo)
}

func TestExecutor_IntermediateHopsRounded(t *testing.T) {
	g := feeAdjusted(t, map[string]map[string]float64{
		"USD": {"BTC": 0.3333},
		"BTC": {"ETH": 7},
	})
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "BTC", "ETH"}}

	plan, err := New(nil, WithDivisionPrecision(6)).Plan(usdLedger(t), g, route, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, plan, 2)

	for _, ex := range plan {
		assert.GreaterOrEqual(t, ex.AmountFrom.Exponent(), int32(-6), ex.String())
		assert.GreaterOrEqual(t, ex.AmountTo.Exponent(), int32(-6), ex.String())
	}
	assert.True(t, plan[0].AmountTo.Equal(plan[1].AmountFrom))
	assert.True(t, plan[1].AmountTo.Equal(decimal.NewFromInt(5)))
}

func TestExecutor_PlanDoesNotMutate(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	l := usdLedger(t)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "BTC", "ETH"}}

	plan, err := New(nil).Plan(l, g, route, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.True(t, balance(t, l, "USD").Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{"USD"}, l.Currencies())
}

func TestExecutor_SourceNotHeld(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	l := usdLedger(t)
	route := domain.Route{Source: "BTC", Target: "ETH", Currencies: []string{"BTC", "ETH"}}

	_, err := New(nil).Execute(l, g, route, decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds))
}

func TestExecutor_HopOrder(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "BTC", "ETH"}}

	l := &mockLedger{}
	l.On("Balance", "USD").Return(decimal.NewFromInt(100), true)
	decUSD := l.On("Decrement", "USD", decimalMatcher(decimal.NewFromInt(100))).Return(nil).Once()
	incBTC := l.On("Increment", "BTC", decimalMatcher(decimal.NewFromInt(99))).Return(nil).Once().NotBefore(decUSD)
	decBTC := l.On("Decrement", "BTC", decimalMatcher(decimal.NewFromInt(99))).Return(nil).Once().NotBefore(incBTC)
	l.On("Increment", "ETH", decimalMatcher(decimal.RequireFromString("980.1"))).Return(nil).Once().NotBefore(decBTC)

	_, err := New(nil).Execute(l, g, route, decimal.NewFromInt(5000))
	require.NoError(t, err)
	l.AssertExpectations(t)
}

func TestExecutor_LedgerErrorPropagates(t *testing.T) {
	g := feeAdjusted(t, multiHopRates)
	route := domain.Route{Source: "USD", Target: "ETH", Currencies: []string{"USD", "ETH"}}

	l := &mockLedger{}
	l.On("Balance", "USD").Return(decimal.NewFromInt(100), true)
	l.On("Decrement", "USD", mock.Anything).Return(domain.ErrInsufficientFunds)

	_, err := New(nil).Execute(l, g, route, decimal.NewFromInt(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds))
	l.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
}
