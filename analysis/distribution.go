package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/currencies"
	"github.com/sig-0/nbprates/provider/nbp"
	"github.com/sig-0/nbprates/storage/types"
)

// DistributionRequest selects the currency pair to analyze
type DistributionRequest struct {
	Anchor time.Time // last day of the window, zero means today
	Base   types.Currency
	Quote  types.Currency
	Period period.Period
}

// Distribution holds the day-to-day changes of a cross rate (Base/Quote)
type Distribution struct {
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
	Pair  types.Pair `json:"pair"`

	// Changes are the differences between consecutive cross rates, in Quote units
	Changes []float64 `json:"changes"`
}

// PairName returns the pair in BASE/QUOTE notation
func (d *Distribution) PairName() string {
	return d.Pair.Base.String() + "/" + d.Pair.Target.String()
}

// Distribution computes the day-to-day changes of the Base/Quote cross rate,
// derived from both currencies' PLN mid rates
func (s *Service) Distribution(ctx context.Context, req DistributionRequest) (*Distribution, error) {
	base, err := nbp.ParseCurrency(req.Base.String())
	if err != nil {
		return nil, err
	}

	quote, err := nbp.ParseCurrency(req.Quote.String())
	if err != nil {
		return nil, err
	}

	if base == quote {
		return nil, ErrSameCurrency
	}

	start, end, err := s.window(req.Anchor, req.Period)
	if err != nil {
		return nil, err
	}

	baseRates, err := s.seriesOrHome(ctx, base, start, end)
	if err != nil {
		return nil, err
	}

	quoteRates, err := s.seriesOrHome(ctx, quote, start, end)
	if err != nil {
		return nil, err
	}

	cross := crossRates(
		baseRates,
		quoteRates,
		currencies.IsHome(base),
		currencies.IsHome(quote),
	)
	if len(cross) < 2 {
		return nil, ErrNotEnoughData
	}

	changes := make([]float64, 0, len(cross)-1)
	for i := 1; i < len(cross); i++ {
		changes = append(changes, cross[i]-cross[i-1])
	}

	return &Distribution{
		Start: start,
		End:   end,
		Pair: types.Pair{
			Base:   base,
			Target: quote,
		},
		Changes: changes,
	}, nil
}

// seriesOrHome fetches the currency's series. The home currency (PLN)
// has no series, its rate is implicitly 1
func (s *Service) seriesOrHome(
	ctx context.Context,
	currency types.Currency,
	from, to time.Time,
) ([]*types.ExchangeRate, error) {
	if currencies.IsHome(currency) {
		return nil, nil
	}

	return s.fetchSeries(ctx, currency, from, to)
}

// crossRates derives the base/quote rates, oldest first.
// Only dates published for both currencies are kept
func crossRates(base, quote []*types.ExchangeRate, baseIsHome, quoteIsHome bool) []float64 {
	switch {
	case !baseIsHome && !quoteIsHome:
		quoteByDay := make(map[string]float64, len(quote))
		for _, r := range quote {
			quoteByDay[dayKey(r.AsOf)] = r.Rate
		}

		baseByDay := make(map[string]float64, len(base))
		days := make([]string, 0, len(base))

		for _, r := range base {
			k := dayKey(r.AsOf)
			if _, ok := quoteByDay[k]; !ok {
				continue
			}

			if _, seen := baseByDay[k]; !seen {
				days = append(days, k)
			}

			baseByDay[k] = r.Rate
		}

		sort.Strings(days)

		out := make([]float64, 0, len(days))
		for _, k := range days {
			out = append(out, baseByDay[k]/quoteByDay[k])
		}

		return out
	case baseIsHome:
		// PLN/quote
		out := make([]float64, 0, len(quote))
		for _, r := range quote {
			out = append(out, 1/r.Rate)
		}

		return out
	default:
		// base/PLN
		out := make([]float64, 0, len(base))
		for _, r := range base {
			out = append(out, r.Rate)
		}

		return out
	}
}

func dayKey(t time.Time) string {
	return t.UTC().Format(period.DateLayout)
}
