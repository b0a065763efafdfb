package query

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/nbprates/analysis"
	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
)

type fixtureRate struct {
	No            string  `json:"no"`
	EffectiveDate string  `json:"effectiveDate"`
	Mid           float64 `json:"mid"`
}

type fixtureSeries struct {
	Table string        `json:"table"`
	Code  string        `json:"code"`
	Rates []fixtureRate `json:"rates"`
}

// newNBPServer serves the given series for every range query of the currency.
// Single-day and latest queries return the last publication of the series
func newNBPServer(t *testing.T, series map[string][]fixtureRate) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /exchangerates/rates/{table}/{code}/[{from}/[{to}/]]
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 4 || parts[0] != "exchangerates" || parts[1] != "rates" {
			http.NotFound(w, r)

			return
		}

		rates, ok := series[parts[3]]
		if !ok || len(rates) == 0 {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 NotFound - Not Found - Brak danych"))

			return
		}

		if len(parts) != 6 {
			rates = rates[len(rates)-1:]
		}

		w.Header().Set("Content-Type", "application/json")

		_ = json.NewEncoder(w).Encode(fixtureSeries{
			Table: parts[2],
			Code:  parts[3],
			Rates: rates,
		})
	}))

	t.Cleanup(srv.Close)

	return srv
}

// runLine executes a single command line the way the shell does
func runLine(t *testing.T, line string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	err := (&replCfg{out: &out}).run(context.Background(), line)

	return out.String(), err
}

func TestAnalyzeCmd(t *testing.T) {
	t.Parallel()

	srv := newNBPServer(t, map[string][]fixtureRate{
		"USD": {
			{No: "002/A/NBP/2024", EffectiveDate: "2024-01-03", Mid: 4.0},
			{No: "003/A/NBP/2024", EffectiveDate: "2024-01-04", Mid: 4.1},
			{No: "004/A/NBP/2024", EffectiveDate: "2024-01-05", Mid: 4.1},
			{No: "005/A/NBP/2024", EffectiveDate: "2024-01-08", Mid: 4.2},
		},
	})

	t.Run("report", func(t *testing.T) {
		t.Parallel()

		out, err := runLine(t, "analyze usd --period 1-week --start 2024-01-10 --nbp-url "+srv.URL)
		require.NoError(t, err)

		assert.Contains(t, out, "Currency: USD\n")
		assert.Contains(t, out, "Period: 2024-01-03 - 2024-01-10\n")
		assert.Contains(t, out, "Median: 4.1\n")
		assert.Contains(t, out, "Mode: 4.1\n")
		assert.Contains(t, out, "Increased: 2\n")
		assert.Contains(t, out, "Decreased: 0\n")
		assert.Contains(t, out, "Unchanged: 1\n")
	})

	t.Run("flags before the currency", func(t *testing.T) {
		t.Parallel()

		out, err := runLine(t, "analyze --nbp-url "+srv.URL+" --period 1-week --start 2024-01-10 USD")
		require.NoError(t, err)

		assert.Contains(t, out, "Currency: USD\n")
	})

	t.Run("missing period", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "analyze USD --nbp-url "+srv.URL)

		assert.ErrorIs(t, err, errMissingPeriod)
	})

	t.Run("unsupported period", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "analyze USD --period 2-years --nbp-url "+srv.URL)

		assert.ErrorIs(t, err, period.ErrUnsupportedPeriod)
	})

	t.Run("invalid start date", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "analyze USD --period 1-week --start 10.01.2024 --nbp-url "+srv.URL)

		assert.ErrorIs(t, err, period.ErrInvalidDateFormat)
	})

	t.Run("start before the archive", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "analyze USD --period 1-week --start 2001-12-31 --nbp-url "+srv.URL)

		assert.ErrorIs(t, err, period.ErrBeforeArchive)
	})

	t.Run("invalid currency", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "analyze US1 --period 1-week --nbp-url "+srv.URL)

		assert.ErrorIs(t, err, nbp.ErrInvalidCurrency)
	})

	t.Run("no data published", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "analyze CHF --period 1-week --start 2024-01-10 --nbp-url "+srv.URL)

		assert.ErrorIs(t, err, analysis.ErrNotEnoughData)
	})
}

func TestDistributionCmd(t *testing.T) {
	t.Parallel()

	srv := newNBPServer(t, map[string][]fixtureRate{
		"USD": {
			{EffectiveDate: "2024-01-02", Mid: 4.0},
			{EffectiveDate: "2024-01-03", Mid: 4.1},
			{EffectiveDate: "2024-01-04", Mid: 4.1},
			{EffectiveDate: "2024-01-05", Mid: 4.2},
		},
		"EUR": {
			{EffectiveDate: "2024-01-02", Mid: 4.3},
			{EffectiveDate: "2024-01-03", Mid: 4.4},
			{EffectiveDate: "2024-01-04", Mid: 4.4},
			{EffectiveDate: "2024-01-05", Mid: 4.5},
		},
	})

	t.Run("histogram", func(t *testing.T) {
		t.Parallel()

		out, err := runLine(
			t,
			"change-distribution USD eur --period 1-month --start 2024-01-31 --nbp-url "+srv.URL,
		)
		require.NoError(t, err)

		assert.Contains(t, out, "Distribution for USD/EUR")
		assert.Contains(t, out, "Legend (Ranges in EUR)")
	})

	t.Run("periods", func(t *testing.T) {
		t.Parallel()

		testTable := []struct {
			name string
			raw  string
			err  error
		}{
			{"one month", "1-month", nil},
			{"one quarter", "1-quarter", nil},
			{"one week is too short", "1-week", period.ErrUnsupportedPeriod},
			{"one year is too long", "1-year", period.ErrUnsupportedPeriod},
			{"unknown", "fortnight", period.ErrUnsupportedPeriod},
			{"missing", "", errMissingPeriod},
		}

		for _, testCase := range testTable {
			t.Run(testCase.name, func(t *testing.T) {
				t.Parallel()

				p, err := parseDistributionPeriod(testCase.raw)
				if testCase.err != nil {
					assert.ErrorIs(t, err, testCase.err)

					return
				}

				require.NoError(t, err)
				assert.Equal(t, period.Period(testCase.raw), p)
			})
		}
	})

	t.Run("two currencies required", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "change-distribution USD --period 1-month --nbp-url "+srv.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2 argument(s)")
	})
}

func TestRateCmd(t *testing.T) {
	t.Parallel()

	srv := newNBPServer(t, map[string][]fixtureRate{
		"USD": {
			{EffectiveDate: "2024-01-04", Mid: 4.0123},
			{EffectiveDate: "2024-01-05", Mid: 3.95},
		},
	})

	t.Run("latest", func(t *testing.T) {
		t.Parallel()

		out, err := runLine(t, "rate usd --nbp-url "+srv.URL)
		require.NoError(t, err)

		assert.Equal(t, "USD/PLN: 3.95 (2024-01-05, table A)\n", out)
	})

	t.Run("on date", func(t *testing.T) {
		t.Parallel()

		out, err := runLine(t, "rate USD --date 2024-01-05 --nbp-url "+srv.URL)
		require.NoError(t, err)

		assert.Equal(t, "USD/PLN: 3.95 (2024-01-05, table A)\n", out)
	})

	t.Run("unknown currency", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "rate XYZ --nbp-url "+srv.URL)

		assert.ErrorIs(t, err, nbp.ErrCurrencyNotFound)
	})

	t.Run("invalid table", func(t *testing.T) {
		t.Parallel()

		_, err := runLine(t, "rate USD --table C --nbp-url "+srv.URL)

		assert.Error(t, err)
	})

	t.Run("formatting", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "4.1", formatRate(4.1))
		assert.Equal(t, "0.026776", formatRate(0.026776))
		assert.Equal(t, "100", formatRate(100))
	})
}

func TestParseInterspersed(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name       string
		args       []string
		positional []string
		period     string
	}{
		{"flags last", []string{"USD", "EUR", "--period", "1-month"}, []string{"USD", "EUR"}, "1-month"},
		{"flags first", []string{"--period", "1-month", "USD"}, []string{"USD"}, "1-month"},
		{"flags between", []string{"USD", "--period=1-month", "EUR"}, []string{"USD", "EUR"}, "1-month"},
		{"no flags", []string{"USD"}, []string{"USD"}, ""},
		{"nothing", nil, nil, ""},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var p string

			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.StringVar(&p, "period", "", "")

			// the leading flags are consumed before Exec, the way ffcli does it
			require.NoError(t, fs.Parse(testCase.args))

			positional, err := parseInterspersed(fs, fs.Args())
			require.NoError(t, err)

			assert.Equal(t, testCase.positional, positional)
			assert.Equal(t, testCase.period, p)
		})
	}
}
