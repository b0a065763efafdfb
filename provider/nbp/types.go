package nbp

import (
	"fmt"
	"time"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/currencies"
	"github.com/sig-0/nbprates/storage/types"
)

// seriesResponse is the /exchangerates/rates/{table}/{code}/... response
type seriesResponse struct {
	Table    string       `json:"table"`
	Currency string       `json:"currency"`
	Code     string       `json:"code"`
	Rates    []seriesRate `json:"rates"`
}

type seriesRate struct {
	No            string  `json:"no"`
	EffectiveDate string  `json:"effectiveDate"`
	Mid           float64 `json:"mid"`
}

// tableResponse is a single element of the /exchangerates/tables/{table}/ response
type tableResponse struct {
	Table         string      `json:"table"`
	No            string      `json:"no"`
	EffectiveDate string      `json:"effectiveDate"`
	Rates         []tableRate `json:"rates"`
}

type tableRate struct {
	Currency string  `json:"currency"`
	Code     string  `json:"code"`
	Mid      float64 `json:"mid"`
}

// toRates maps the series to exchange rates, oldest first
func (s *seriesResponse) toRates(code types.Currency, fetchedAt time.Time) ([]*types.ExchangeRate, error) {
	out := make([]*types.ExchangeRate, 0, len(s.Rates))

	for _, r := range s.Rates {
		rate, err := newMidRate(code, r.EffectiveDate, r.Mid, fetchedAt)
		if err != nil {
			return nil, err
		}

		out = append(out, rate)
	}

	sortByDate(out)

	return out, nil
}

// toRates maps every listed currency of the table to an exchange rate
func (t *tableResponse) toRates(fetchedAt time.Time) ([]*types.ExchangeRate, error) {
	out := make([]*types.ExchangeRate, 0, len(t.Rates))

	for _, r := range t.Rates {
		code, err := ParseCurrency(r.Code)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s lists %q: %w", ErrInvalidResponse, t.No, r.Code, err)
		}

		rate, err := newMidRate(code, t.EffectiveDate, r.Mid, fetchedAt)
		if err != nil {
			return nil, err
		}

		out = append(out, rate)
	}

	return out, nil
}

func newMidRate(
	code types.Currency,
	effectiveDate string,
	mid float64,
	fetchedAt time.Time,
) (*types.ExchangeRate, error) {
	asOf, err := time.Parse(period.DateLayout, effectiveDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid effective date %q", ErrInvalidResponse, effectiveDate)
	}

	if mid <= 0 {
		return nil, fmt.Errorf("%w: invalid mid rate %v for %s", ErrInvalidResponse, mid, code)
	}

	return &types.ExchangeRate{
		AsOf:      asOf,
		FetchedAt: fetchedAt,
		Base:      code,
		Target:    currencies.Home,
		RateType:  types.RateTypeMID,
		Source:    types.SourceNBP,
		Rate:      mid,
	}, nil
}
