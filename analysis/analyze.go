package analysis

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
	"github.com/sig-0/nbprates/storage/types"
)

// AnalyzeRequest selects the series to analyze
type AnalyzeRequest struct {
	Anchor   time.Time // last day of the window, zero means today
	Currency types.Currency
	Period   period.Period
}

// Sessions counts consecutive-publication movements
type Sessions struct {
	Increased int `json:"increased"`
	Decreased int `json:"decreased"`
	Unchanged int `json:"unchanged"`
}

// Report is the statistical summary of a currency's PLN mid rates
type Report struct {
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Currency types.Currency `json:"currency"`

	// Modes holds every value sharing the highest frequency,
	// empty when no value repeats
	Modes []float64 `json:"modes"`

	Median                 float64  `json:"median"`
	StdDev                 float64  `json:"std_dev"`
	CoefficientOfVariation float64  `json:"coefficient_of_variation"`
	Sessions               Sessions `json:"sessions"`
	Samples                int      `json:"samples"`
}

// Analyze computes the statistical summary of the currency over the period
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Report, error) {
	currency, err := nbp.ParseCurrency(req.Currency.String())
	if err != nil {
		return nil, err
	}

	start, end, err := s.window(req.Anchor, req.Period)
	if err != nil {
		return nil, err
	}

	rates, err := s.fetchSeries(ctx, currency, start, end)
	if err != nil {
		return nil, err
	}

	if len(rates) < 2 {
		return nil, ErrNotEnoughData
	}

	values := make([]float64, 0, len(rates))
	for _, r := range rates {
		values = append(values, r.Rate)
	}

	mean, std := stat.MeanStdDev(values, nil)

	return &Report{
		Start:                  start,
		End:                    end,
		Currency:               currency,
		Modes:                  modes(values),
		Median:                 median(values),
		StdDev:                 std,
		CoefficientOfVariation: std / mean,
		Sessions:               countSessions(values),
		Samples:                len(values),
	}, nil
}

// median returns the middle value, or the mean of the two middle values
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// modes returns the most frequent values in order of first appearance.
// No value is dominant when every value appears once
func modes(values []float64) []float64 {
	var (
		counts = make(map[float64]int, len(values))
		order  = make([]float64, 0, len(values))
		best   int
	)

	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}

		counts[v]++

		best = max(best, counts[v])
	}

	out := []float64{}

	if best < 2 {
		return out
	}

	for _, v := range order {
		if counts[v] == best {
			out = append(out, v)
		}
	}

	return out
}

func countSessions(values []float64) Sessions {
	var sessions Sessions

	for i := 1; i < len(values); i++ {
		switch prev, cur := values[i-1], values[i]; {
		case cur > prev:
			sessions.Increased++
		case cur < prev:
			sessions.Decreased++
		default:
			sessions.Unchanged++
		}
	}

	return sessions
}
