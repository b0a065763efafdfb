package sql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgx.Conn, pgx.Tx and *pgxpool.Pool
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Queries runs the exchange rate statements against a Postgres handle
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// exchangeRateRow is a single exchange_rates row
type exchangeRateRow struct {
	Base      string
	Target    string
	Rate      pgtype.Numeric
	RateType  string
	Source    string
	AsOf      pgtype.Timestamptz
	FetchedAt pgtype.Timestamptz
}

const saveExchangeRate = `
INSERT INTO exchange_rates (base, target, rate, rate_type, source, as_of, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT ON CONSTRAINT exchange_rates_point_key
    DO UPDATE SET rate       = EXCLUDED.rate,
                  fetched_at = EXCLUDED.fetched_at
`

type saveExchangeRateParams struct {
	Base      string
	Target    string
	Rate      pgtype.Numeric
	RateType  string
	Source    string
	AsOf      pgtype.Timestamptz
	FetchedAt pgtype.Timestamptz
}

func (q *Queries) saveExchangeRate(ctx context.Context, arg saveExchangeRateParams) error {
	_, err := q.db.Exec(
		ctx,
		saveExchangeRate,
		arg.Base,
		arg.Target,
		arg.Rate,
		arg.RateType,
		arg.Source,
		arg.AsOf,
		arg.FetchedAt,
	)

	return err
}

const rateAsOf = `
WITH latest AS (
    SELECT DISTINCT ON (target, source, rate_type) base, target, rate, rate_type, source, as_of, fetched_at
    FROM exchange_rates
    WHERE base = $1
      AND ($2::text IS NULL OR target = $2)
      AND ($3::text IS NULL OR source = $3)
      AND ($4::text IS NULL OR rate_type = $4)
      AND as_of <= $5
    ORDER BY target, source, rate_type, as_of DESC, fetched_at DESC
)
SELECT base, target, rate, rate_type, source, as_of, fetched_at, COUNT(*) OVER () AS total
FROM latest
ORDER BY target, source, rate_type
LIMIT $6 OFFSET $7
`

type rateAsOfParams struct {
	Base     string
	Target   *string
	Source   *string
	RateType *string
	AsOf     pgtype.Timestamptz
	Limit    int32
	Offset   int64
}

type rateAsOfRow struct {
	exchangeRateRow
	Total int64
}

func (q *Queries) rateAsOf(ctx context.Context, arg rateAsOfParams) ([]rateAsOfRow, error) {
	rows, err := q.db.Query(
		ctx,
		rateAsOf,
		arg.Base,
		arg.Target,
		arg.Source,
		arg.RateType,
		arg.AsOf,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (rateAsOfRow, error) {
		var i rateAsOfRow

		err := row.Scan(
			&i.Base,
			&i.Target,
			&i.Rate,
			&i.RateType,
			&i.Source,
			&i.AsOf,
			&i.FetchedAt,
			&i.Total,
		)

		return i, err
	})
}

const countRatesAsOf = `
SELECT COUNT(*)
FROM (
    SELECT DISTINCT ON (target, source, rate_type) target
    FROM exchange_rates
    WHERE base = $1
      AND ($2::text IS NULL OR target = $2)
      AND ($3::text IS NULL OR source = $3)
      AND ($4::text IS NULL OR rate_type = $4)
      AND as_of <= $5
    ORDER BY target, source, rate_type
) latest
`

// countRatesAsOf counts the points rateAsOf pages over
func (q *Queries) countRatesAsOf(ctx context.Context, arg rateAsOfParams) (int64, error) {
	row := q.db.QueryRow(
		ctx,
		countRatesAsOf,
		arg.Base,
		arg.Target,
		arg.Source,
		arg.RateType,
		arg.AsOf,
	)

	var count int64
	err := row.Scan(&count)

	return count, err
}

const ratesInRange = `
SELECT base, target, rate, rate_type, source, as_of, fetched_at
FROM exchange_rates
WHERE base = $1
  AND target = $2
  AND as_of BETWEEN $3 AND $4
ORDER BY as_of, source
`

type ratesInRangeParams struct {
	Base   string
	Target string
	From   pgtype.Timestamptz
	To     pgtype.Timestamptz
}

func (q *Queries) ratesInRange(ctx context.Context, arg ratesInRangeParams) ([]exchangeRateRow, error) {
	rows, err := q.db.Query(ctx, ratesInRange, arg.Base, arg.Target, arg.From, arg.To)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanExchangeRate)
}

const listSources = `
SELECT DISTINCT source
FROM exchange_rates
ORDER BY source
`

func (q *Queries) listSources(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listSources)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

const listCurrencies = `
SELECT code
FROM (SELECT base AS code FROM exchange_rates
      UNION
      SELECT target FROM exchange_rates) AS codes
ORDER BY code
`

func (q *Queries) listCurrencies(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listCurrencies)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanExchangeRate(row pgx.CollectableRow) (exchangeRateRow, error) {
	var i exchangeRateRow

	err := row.Scan(
		&i.Base,
		&i.Target,
		&i.Rate,
		&i.RateType,
		&i.Source,
		&i.AsOf,
		&i.FetchedAt,
	)

	return i, err
}
