package sql

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/nbprates/storage"
	"github.com/sig-0/nbprates/storage/types"
)

// fakeRows serves pre-baked rows through the pgx.Rows interface
type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}

	r.pos++

	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}

	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v, _ = row[i].(string)
		case *int64:
			*v, _ = row[i].(int64)
		case *pgtype.Numeric:
			*v, _ = row[i].(pgtype.Numeric)
		case *pgtype.Timestamptz:
			*v, _ = row[i].(pgtype.Timestamptz)
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}

	return nil
}

type fakeDB struct {
	execSQL  string
	execArgs []any
	execErr  error

	querySQL  string
	queryArgs []any
	queryRows [][]any
	queryErr  error

	rowSQL   string
	rowArgs  []any
	rowCount int64
	rowErr   error
}

// fakeRow serves a single COUNT result
type fakeRow struct {
	count int64
	err   error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	if len(dest) != 1 {
		return fmt.Errorf("expected 1 destination, got %d", len(dest))
	}

	v, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("unsupported destination %T", dest[0])
	}

	*v = r.count

	return nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = sql
	f.execArgs = args

	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.querySQL = sql
	f.queryArgs = args

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return &fakeRows{rows: f.queryRows}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.rowSQL = sql
	f.rowArgs = args

	return &fakeRow{count: f.rowCount, err: f.rowErr}
}

func rateRow(base, target string, rate float64, asOf time.Time) []any {
	return []any{
		base,
		target,
		floatToNumeric(rate),
		types.RateTypeMID.String(),
		types.SourceNBP.String(),
		timeToTimestampz(asOf),
		timeToTimestampz(asOf.Add(time.Hour)),
	}
}

func TestStorage_SaveExchangeRate(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("upsert arguments", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		s := NewStorage(New(db))

		require.NoError(t, s.SaveExchangeRate(context.Background(), &types.ExchangeRate{
			AsOf:      asOf,
			FetchedAt: asOf,
			Base:      types.CurrencyUSD,
			Target:    types.CurrencyPLN,
			RateType:  types.RateTypeMID,
			Source:    types.SourceNBP,
			Rate:      3.9876,
		}))

		assert.Contains(t, db.execSQL, "ON CONFLICT")
		require.Len(t, db.execArgs, 7)
		assert.Equal(t, "USD", db.execArgs[0])
		assert.Equal(t, "PLN", db.execArgs[1])

		rate, ok := db.execArgs[2].(pgtype.Numeric)
		require.True(t, ok)
		assert.InDelta(t, 3.9876, numericToFloat(rate), 1e-12)
	})

	t.Run("exec error", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("connection reset")
		s := NewStorage(New(&fakeDB{execErr: dbErr}))

		err := s.SaveExchangeRate(context.Background(), &types.ExchangeRate{AsOf: asOf})

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestStorage_RateAsOf(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("page with total", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{
			queryRows: [][]any{
				append(rateRow("USD", "PLN", 4.01, asOf), int64(3)),
			},
		}

		target := types.CurrencyPLN
		s := NewStorage(New(db))

		page, err := s.RateAsOf(context.Background(), &types.RateQuery{
			Base:   types.CurrencyUSD,
			Target: &target,
			Offset: -5,
		}, asOf)
		require.NoError(t, err)

		assert.EqualValues(t, 3, page.Total)
		require.Len(t, page.Results, 1)
		assert.InDelta(t, 4.01, page.Results[0].Rate, 1e-12)
		assert.Equal(t, asOf, page.Results[0].AsOf)

		// nil filters are sent as NULL
		require.Len(t, db.queryArgs, 7)
		assert.Equal(t, "PLN", *db.queryArgs[1].(*string))
		assert.Nil(t, db.queryArgs[2])
		assert.Equal(t, storage.DefaultLimit, db.queryArgs[5])
		assert.Equal(t, int64(0), db.queryArgs[6])
	})

	t.Run("empty page", func(t *testing.T) {
		t.Parallel()

		s := NewStorage(New(&fakeDB{}))

		page, err := s.RateAsOf(context.Background(), &types.RateQuery{Base: types.CurrencyUSD}, asOf)
		require.NoError(t, err)

		assert.Empty(t, page.Results)
		assert.Zero(t, page.Total)
	})

	t.Run("offset past the last row keeps the total", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rowCount: 4}
		s := NewStorage(New(db))

		page, err := s.RateAsOf(context.Background(), &types.RateQuery{
			Base:   types.CurrencyUSD,
			Offset: 10,
		}, asOf)
		require.NoError(t, err)

		assert.Empty(t, page.Results)
		assert.EqualValues(t, 4, page.Total)

		assert.Contains(t, db.rowSQL, "COUNT(*)")
		require.Len(t, db.rowArgs, 5)
		assert.Equal(t, "USD", db.rowArgs[0])
	})

	t.Run("count error", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("connection reset")
		s := NewStorage(New(&fakeDB{rowErr: dbErr}))

		_, err := s.RateAsOf(context.Background(), &types.RateQuery{
			Base:   types.CurrencyUSD,
			Offset: 10,
		}, asOf)

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestStorage_RatesInRange(t *testing.T) {
	t.Parallel()

	var (
		day1 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		day2 = day1.AddDate(0, 0, 1)
	)

	t.Run("rows are parsed", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{
			queryRows: [][]any{
				rateRow("EUR", "PLN", 4.31, day1),
				rateRow("EUR", "PLN", 4.32, day2),
			},
		}

		rates, err := NewStorage(New(db)).RatesInRange(
			context.Background(),
			types.Pair{Base: types.CurrencyEUR, Target: types.CurrencyPLN},
			day1,
			day2,
		)
		require.NoError(t, err)

		require.Len(t, rates, 2)
		assert.Equal(t, types.CurrencyEUR, rates[0].Base)
		assert.Equal(t, day2, rates[1].AsOf)
		assert.InDelta(t, 4.32, rates[1].Rate, 1e-12)

		assert.Equal(t, "EUR", db.queryArgs[0])
		assert.Equal(t, "PLN", db.queryArgs[1])
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("relation does not exist")

		_, err := NewStorage(New(&fakeDB{queryErr: dbErr})).RatesInRange(
			context.Background(),
			types.Pair{Base: types.CurrencyEUR, Target: types.CurrencyPLN},
			day1,
			day2,
		)

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestStorage_List(t *testing.T) {
	t.Parallel()

	t.Run("sources", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{queryRows: [][]any{{"NBP"}}}

		sources, err := NewStorage(New(db)).ListSources(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []types.Source{types.SourceNBP}, sources)
	})

	t.Run("currencies", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{queryRows: [][]any{{"EUR"}, {"PLN"}}}

		currencies, err := NewStorage(New(db)).ListCurrencies(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []types.Currency{types.CurrencyEUR, types.CurrencyPLN}, currencies)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		currencies, err := NewStorage(New(&fakeDB{})).ListCurrencies(context.Background())
		require.NoError(t, err)

		assert.Nil(t, currencies)
	})
}

func TestNumericConversion(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name  string
		value float64
	}{
		{"four places", 3.9876},
		{"six places", 0.026776},
		{"integer", 100},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			n := floatToNumeric(testCase.value)

			assert.True(t, n.Valid)
			assert.EqualValues(t, -numericScale, n.Exp)
			assert.InDelta(t, testCase.value, numericToFloat(n), 1e-12)
		})
	}

	t.Run("positive exponent", func(t *testing.T) {
		t.Parallel()

		n := floatToNumeric(0)
		n.Int.SetInt64(12)
		n.Exp = 2

		assert.Equal(t, 1200.0, numericToFloat(n))
	})
}

func TestTimestampConversion(t *testing.T) {
	t.Parallel()

	warsaw := time.FixedZone("CET", 3600)
	ts := time.Date(2024, time.March, 1, 1, 0, 0, 0, warsaw)

	converted := timestampzToTime(timeToTimestampz(ts))

	assert.True(t, ts.Equal(converted))
	assert.Equal(t, time.UTC, converted.Location())
	assert.True(t, timestampzToTime(pgtype.Timestamptz{}).IsZero())
}
