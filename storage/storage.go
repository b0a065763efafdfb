package storage

import (
	"context"
	"time"

	"github.com/sig-0/nbprates/storage/types"
)

// Storage is an abstraction over ingested exchange rate data
type Storage interface {
	// SaveExchangeRate saves the given exchange rate data point.
	// Saving the same (base, target, source, type, as-of) point again overwrites it
	SaveExchangeRate(context.Context, *types.ExchangeRate) error

	// RateAsOf fetches the latest rates not after the given time,
	// one per (target, source, type) bucket
	RateAsOf(context.Context, *types.RateQuery, time.Time) (*types.Page[*types.ExchangeRate], error)

	// RatesInRange fetches the history of a single pair within [from, to], oldest first
	RatesInRange(ctx context.Context, pair types.Pair, from, to time.Time) ([]*types.ExchangeRate, error)

	// ListSources lists all present sources for fx rates
	ListSources(context.Context) ([]types.Source, error)

	// ListCurrencies lists all currencies present
	ListCurrencies(context.Context) ([]types.Currency, error)
}

const (
	// DefaultLimit is the page size used when the query does not set one
	DefaultLimit = int32(100)

	// MaxLimit caps the page size of a single query
	MaxLimit = int32(500)
)

// NormalizeLimit clamps the requested page size to (0, MaxLimit]
func NormalizeLimit(limit int32) int32 {
	if limit <= 0 {
		return DefaultLimit
	}

	return min(limit, MaxLimit)
}
