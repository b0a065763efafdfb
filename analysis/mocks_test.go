package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/currencies"
	"github.com/sig-0/nbprates/storage/types"
)

type ratesInRangeDelegate func(context.Context, types.Currency, time.Time, time.Time) ([]*types.ExchangeRate, error)

type mockSource struct {
	ratesInRangeFn ratesInRangeDelegate
}

func (m *mockSource) RatesInRange(
	ctx context.Context,
	currency types.Currency,
	from, to time.Time,
) ([]*types.ExchangeRate, error) {
	if m.ratesInRangeFn != nil {
		return m.ratesInRangeFn(ctx, currency, from, to)
	}

	return nil, nil
}

// seriesStart is the effective date of the first point of every fixed series
var seriesStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// fixedSource serves the same per-currency series regardless of the requested range,
// one publication per day starting at seriesStart
type fixedSource struct {
	series map[types.Currency][]float64

	mu    sync.Mutex
	calls []period.Range
}

func newFixedSource() *fixedSource {
	return &fixedSource{
		series: make(map[types.Currency][]float64),
	}
}

func (f *fixedSource) set(currency types.Currency, values ...float64) *fixedSource {
	f.series[currency] = values

	return f
}

func (f *fixedSource) RatesInRange(
	_ context.Context,
	currency types.Currency,
	from, to time.Time,
) ([]*types.ExchangeRate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, period.Range{From: from, To: to})
	f.mu.Unlock()

	values := f.series[currency]
	out := make([]*types.ExchangeRate, 0, len(values))

	for i, v := range values {
		out = append(out, &types.ExchangeRate{
			AsOf:     seriesStart.AddDate(0, 0, i),
			Base:     currency,
			Target:   currencies.PLN,
			RateType: types.RateTypeMID,
			Source:   types.SourceNBP,
			Rate:     v,
		})
	}

	return out, nil
}
