// Package analysis computes statistics over NBP mid rate series:
// per-currency summaries and cross-rate change distributions.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
	"github.com/sig-0/nbprates/storage/types"
)

var (
	// ErrNotEnoughData is returned when a series has fewer than two points
	ErrNotEnoughData = errors.New("not enough exchange rate data for analysis")

	// ErrSameCurrency is returned when both sides of a pair are the same currency
	ErrSameCurrency = errors.New("currency pair must consist of two different currencies")
)

const defaultConcurrency = 4

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// RateSource provides the PLN mid rate series of a currency
type RateSource interface {
	// RatesInRange returns the rates published within [from, to].
	// The range never exceeds period.MaxRangeDays
	RatesInRange(ctx context.Context, currency types.Currency, from, to time.Time) ([]*types.ExchangeRate, error)
}

// Service computes statistics over NBP rate series
type Service struct {
	source RateSource
	logger *slog.Logger
	today  func() time.Time

	concurrency int
}

// New creates a new analysis service
func New(source RateSource, opts ...Option) *Service {
	s := &Service{
		source:      source,
		logger:      noopLogger,
		today:       period.Today,
		concurrency: defaultConcurrency,
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// window resolves the [start, end] window of the period ending at the anchor.
// A zero anchor resolves to today
func (s *Service) window(anchor time.Time, p period.Period) (time.Time, time.Time, error) {
	end := period.Day(anchor)
	if anchor.IsZero() {
		end = period.Day(s.today())
	}

	start, err := period.Start(end, p)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

// fetchSeries fetches the full [from, to] series of the currency, oldest first.
// The range is split into API-sized chunks, fetched concurrently
func (s *Service) fetchSeries(
	ctx context.Context,
	currency types.Currency,
	from, to time.Time,
) ([]*types.ExchangeRate, error) {
	var (
		chunks  = period.Split(from, to)
		results = make([][]*types.ExchangeRate, len(chunks))
	)

	group, gCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i, chunk := range chunks {
		group.Go(func() error {
			rates, err := s.source.RatesInRange(gCtx, currency, chunk.From, chunk.To)
			if err != nil {
				if errors.Is(err, nbp.ErrNoData) {
					// nothing was published in this chunk (holidays, weekends)
					s.logger.Debug(
						"no rates published in range",
						"currency", currency,
						"range", chunk.String(),
					)

					return nil
				}

				return fmt.Errorf("unable to fetch %s rates for %s: %w", currency, chunk, err)
			}

			results[i] = rates

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []*types.ExchangeRate

	for _, rates := range results {
		out = append(out, rates...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AsOf.Before(out[j].AsOf)
	})

	s.logger.Debug(
		"fetched rate series",
		"currency", currency,
		"from", from.Format(period.DateLayout),
		"to", to.Format(period.DateLayout),
		"points", len(out),
	)

	return out, nil
}
