package sql

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sig-0/nbprates/storage"
	"github.com/sig-0/nbprates/storage/types"
)

// numericScale is the number of decimal places kept for a stored rate
const numericScale = 8

// Storage is a Postgres-backed rate store
type Storage struct {
	queries *Queries
}

func NewStorage(queries *Queries) *Storage {
	return &Storage{
		queries: queries,
	}
}

func (s *Storage) SaveExchangeRate(
	ctx context.Context,
	rate *types.ExchangeRate,
) error {
	arg := saveExchangeRateParams{
		Base:      rate.Base.String(),
		Target:    rate.Target.String(),
		Rate:      floatToNumeric(rate.Rate),
		RateType:  rate.RateType.String(),
		Source:    rate.Source.String(),
		AsOf:      timeToTimestampz(rate.AsOf),
		FetchedAt: timeToTimestampz(rate.FetchedAt),
	}

	if err := s.queries.saveExchangeRate(ctx, arg); err != nil {
		return fmt.Errorf("unable to save exchange rate: %w", err)
	}

	return nil
}

func (s *Storage) RateAsOf(
	ctx context.Context,
	query *types.RateQuery,
	t time.Time,
) (*types.Page[*types.ExchangeRate], error) {
	arg := rateAsOfParams{
		Base:     query.Base.String(),
		Target:   optional(query.Target),
		Source:   optional(query.Source),
		RateType: optional(query.RateType),
		AsOf:     timeToTimestampz(t),
		Limit:    storage.NormalizeLimit(query.Limit),
		Offset:   max(query.Offset, 0),
	}

	results, err := s.queries.rateAsOf(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates: %w", err)
	}

	if len(results) == 0 {
		page := &types.Page[*types.ExchangeRate]{
			Results: nil,
			Total:   0,
		}

		if arg.Offset == 0 {
			return page, nil // valid case
		}

		// the window count is lost once the offset skips every row
		total, err := s.queries.countRatesAsOf(ctx, arg)
		if err != nil {
			return nil, fmt.Errorf("unable to count rates: %w", err)
		}

		page.Total = total

		return page, nil
	}

	items := make([]*types.ExchangeRate, 0, len(results))

	for _, result := range results {
		if rate := parseExchangeRate(result.exchangeRateRow); rate != nil {
			items = append(items, rate)
		}
	}

	return &types.Page[*types.ExchangeRate]{
		Results: items,
		Total:   results[0].Total,
	}, nil
}

func (s *Storage) RatesInRange(
	ctx context.Context,
	pair types.Pair,
	from, to time.Time,
) ([]*types.ExchangeRate, error) {
	arg := ratesInRangeParams{
		Base:   pair.Base.String(),
		Target: pair.Target.String(),
		From:   timeToTimestampz(from),
		To:     timeToTimestampz(to),
	}

	results, err := s.queries.ratesInRange(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rate history: %w", err)
	}

	out := make([]*types.ExchangeRate, 0, len(results))

	for _, result := range results {
		if rate := parseExchangeRate(result); rate != nil {
			out = append(out, rate)
		}
	}

	return out, nil
}

func (s *Storage) ListSources(ctx context.Context) ([]types.Source, error) {
	results, err := s.queries.listSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch sources: %w", err)
	}

	if len(results) == 0 {
		return nil, nil // valid case
	}

	out := make([]types.Source, 0, len(results))

	for _, src := range results {
		out = append(out, types.Source(src))
	}

	return out, nil
}

func (s *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	results, err := s.queries.listCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch currencies: %w", err)
	}

	if len(results) == 0 {
		return nil, nil // valid case
	}

	out := make([]types.Currency, 0, len(results))

	for _, code := range results {
		out = append(out, types.Currency(code))
	}

	return out, nil
}

// parseExchangeRate parses the postgres exchange rate to the common Go type
func parseExchangeRate(row exchangeRateRow) *types.ExchangeRate {
	if !row.Rate.Valid || row.Rate.Int == nil {
		return nil
	}

	return &types.ExchangeRate{
		Base:      types.Currency(row.Base),
		Target:    types.Currency(row.Target),
		Rate:      numericToFloat(row.Rate),
		RateType:  types.RateType(row.RateType),
		Source:    types.Source(row.Source),
		AsOf:      timestampzToTime(row.AsOf),
		FetchedAt: timestampzToTime(row.FetchedAt),
	}
}

// optional converts an optional query filter to a nullable text argument
func optional[T ~string](v *T) *string {
	if v == nil {
		return nil
	}

	s := string(*v)

	return &s
}

// floatToNumeric converts the float value to postgres numeric
func floatToNumeric(value float64) pgtype.Numeric {
	// NBP publishes up to 6 decimal places (JPY, HUF), keep some headroom
	i := int64(math.Round(value * math.Pow10(numericScale)))

	return pgtype.Numeric{
		Int:   big.NewInt(i),
		Exp:   -numericScale,
		Valid: true,
	}
}

// numericToFloat converts the postgres value to float
func numericToFloat(value pgtype.Numeric) float64 {
	f, _ := new(big.Rat).SetInt(value.Int).Float64()

	if value.Exp > 0 {
		f *= math.Pow10(int(value.Exp))
	} else if value.Exp < 0 {
		f /= math.Pow10(int(-value.Exp))
	}

	return f
}

// timeToTimestampz converts the time value to postgres timestamp
func timeToTimestampz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t.UTC(),
		Valid: true,
	}
}

// timestampzToTime converts the postgres timestamp value to time
func timestampzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}

	return ts.Time.UTC()
}
