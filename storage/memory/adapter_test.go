package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/nbprates/storage/types"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func midRate(base types.Currency, asOf time.Time, rate float64) *types.ExchangeRate {
	return &types.ExchangeRate{
		AsOf:      asOf,
		FetchedAt: asOf.Add(time.Hour),
		Base:      base,
		Target:    types.CurrencyPLN,
		RateType:  types.RateTypeMID,
		Source:    types.SourceNBP,
		Rate:      rate,
	}
}

func TestStorage_RateAsOf(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("latest not after the cutoff", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(1), 3.9)))
		require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(4), 4.0)))
		require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(8), 4.1)))

		page, err := s.RateAsOf(ctx, &types.RateQuery{Base: types.CurrencyUSD}, day(5))
		require.NoError(t, err)

		require.Len(t, page.Results, 1)
		assert.EqualValues(t, 1, page.Total)
		assert.Equal(t, 4.0, page.Results[0].Rate)
		assert.Equal(t, day(4), page.Results[0].AsOf)
	})

	t.Run("nothing before the cutoff", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(8), 4.1)))

		page, err := s.RateAsOf(ctx, &types.RateQuery{Base: types.CurrencyUSD}, day(5))
		require.NoError(t, err)

		assert.Empty(t, page.Results)
		assert.Zero(t, page.Total)
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(1), 4.0)))
		require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyEUR, day(1), 4.3)))

		target := types.CurrencyPLN
		source := types.Source("OTHER")

		page, err := s.RateAsOf(ctx, &types.RateQuery{
			Base:   types.CurrencyEUR,
			Target: &target,
		}, day(2))
		require.NoError(t, err)

		require.Len(t, page.Results, 1)
		assert.Equal(t, types.CurrencyEUR, page.Results[0].Base)

		page, err = s.RateAsOf(ctx, &types.RateQuery{
			Base:   types.CurrencyEUR,
			Source: &source,
		}, day(2))
		require.NoError(t, err)

		assert.Empty(t, page.Results)
	})

	t.Run("pagination", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()

		for i := range 5 {
			r := midRate(types.CurrencyUSD, day(1), 4.0)
			r.Target = types.Currency(fmt.Sprintf("T%02d", i))

			require.NoError(t, s.SaveExchangeRate(ctx, r))
		}

		page, err := s.RateAsOf(ctx, &types.RateQuery{
			Base:   types.CurrencyUSD,
			Limit:  2,
			Offset: 2,
		}, day(2))
		require.NoError(t, err)

		assert.EqualValues(t, 5, page.Total)
		require.Len(t, page.Results, 2)
		assert.Equal(t, types.Currency("T02"), page.Results[0].Target)
		assert.Equal(t, types.Currency("T03"), page.Results[1].Target)

		page, err = s.RateAsOf(ctx, &types.RateQuery{
			Base:   types.CurrencyUSD,
			Offset: 10,
		}, day(2))
		require.NoError(t, err)

		assert.Empty(t, page.Results)
		assert.EqualValues(t, 5, page.Total)
	})
}

func TestStorage_RatesInRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s := NewStorage()

	for _, d := range []int{9, 1, 5, 3, 7} {
		require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(d), float64(d))))
	}

	require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyEUR, day(5), 4.3)))

	// overwrite
	require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(5), 5.5)))

	rates, err := s.RatesInRange(
		ctx,
		types.Pair{Base: types.CurrencyUSD, Target: types.CurrencyPLN},
		day(3),
		day(7),
	)
	require.NoError(t, err)

	require.Len(t, rates, 3)
	assert.Equal(t, day(3), rates[0].AsOf)
	assert.Equal(t, 5.5, rates[1].Rate)
	assert.Equal(t, day(7), rates[2].AsOf)

	rates, err = s.RatesInRange(
		ctx,
		types.Pair{Base: types.CurrencyPLN, Target: types.CurrencyUSD},
		day(1),
		day(9),
	)
	require.NoError(t, err)

	assert.Empty(t, rates)
}

func TestStorage_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s := NewStorage()

	sources, err := s.ListSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)

	require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyUSD, day(1), 4.0)))
	require.NoError(t, s.SaveExchangeRate(ctx, midRate(types.CurrencyEUR, day(1), 4.3)))

	sources, err = s.ListSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Source{types.SourceNBP}, sources)

	currencies, err := s.ListCurrencies(ctx)
	require.NoError(t, err)
	assert.Equal(
		t,
		[]types.Currency{types.CurrencyEUR, types.CurrencyPLN, types.CurrencyUSD},
		currencies,
	)
}
