package nbp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/storage/types"
)

const (
	DefaultBaseURL = "https://api.nbp.pl/api"
	DefaultTable   = "A"
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response is kept for the message
	maxErrorBody = 64 << 10
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Client is the NBP exchange rates API client
type Client struct {
	logger *slog.Logger
	client *http.Client

	timeout time.Duration
	baseURL string
	table   string
}

// New creates a new NBP API client
func New(opts ...Option) (*Client, error) {
	c := &Client{
		logger: noopLogger,
		client:  &http.Client{},
		timeout: DefaultTimeout,
		baseURL: DefaultBaseURL,
		table:   DefaultTable,
	}

	// Apply the options
	for _, opt := range opts {
		opt(c)
	}

	c.table = strings.ToUpper(strings.TrimSpace(c.table))
	if c.table != "A" && c.table != "B" {
		return nil, errInvalidTable
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	c.client.Timeout = c.timeout

	return c, nil
}

// Table returns the NBP table the client reads from
func (c *Client) Table() string {
	return c.table
}

// RatesInRange fetches the mid rates of the currency published within [from, to],
// sorted by effective date (oldest first)
func (c *Client) RatesInRange(
	ctx context.Context,
	currency types.Currency,
	from, to time.Time,
) ([]*types.ExchangeRate, error) {
	code, err := ParseCurrency(currency.String())
	if err != nil {
		return nil, err
	}

	from, to = period.Day(from), period.Day(to)

	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, fmtDate(from), fmtDate(to))
	}

	if from.Before(period.MinDate) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRange, period.ErrBeforeArchive)
	}

	if (period.Range{From: from, To: to}).Days() > period.MaxRangeDays {
		return nil, ErrRangeTooLong
	}

	path := fmt.Sprintf(
		"/exchangerates/rates/%s/%s/%s/%s/",
		c.table,
		code,
		fmtDate(from),
		fmtDate(to),
	)

	var series seriesResponse

	if err = c.get(ctx, path, ErrNoData, &series); err != nil {
		return nil, err
	}

	return series.toRates(code, time.Now().UTC())
}

// RateOn fetches the mid rate of the currency published on the given day
func (c *Client) RateOn(
	ctx context.Context,
	currency types.Currency,
	day time.Time,
) (*types.ExchangeRate, error) {
	code, err := ParseCurrency(currency.String())
	if err != nil {
		return nil, err
	}

	day = period.Day(day)
	if day.Before(period.MinDate) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRange, period.ErrBeforeArchive)
	}

	path := fmt.Sprintf("/exchangerates/rates/%s/%s/%s/", c.table, code, fmtDate(day))

	return c.single(ctx, code, path, ErrNoData)
}

// CurrentRate fetches the most recently published mid rate of the currency
func (c *Client) CurrentRate(ctx context.Context, currency types.Currency) (*types.ExchangeRate, error) {
	code, err := ParseCurrency(currency.String())
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/exchangerates/rates/%s/%s/", c.table, code)

	return c.single(ctx, code, path, ErrCurrencyNotFound)
}

// LatestTable fetches the most recently published table, for every listed currency
func (c *Client) LatestTable(ctx context.Context) ([]*types.ExchangeRate, error) {
	var tables []tableResponse

	if err := c.get(ctx, fmt.Sprintf("/exchangerates/tables/%s/", c.table), ErrNoData, &tables); err != nil {
		return nil, err
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: empty table list", ErrInvalidResponse)
	}

	return tables[0].toRates(time.Now().UTC())
}

// single fetches a series expected to hold exactly one publication
func (c *Client) single(
	ctx context.Context,
	code types.Currency,
	path string,
	notFound error,
) (*types.ExchangeRate, error) {
	var series seriesResponse

	if err := c.get(ctx, path, notFound, &series); err != nil {
		return nil, err
	}

	rates, err := series.toRates(code, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no rates in response", ErrInvalidResponse)
	}

	return rates[len(rates)-1], nil
}

// get executes the GET request and decodes the JSON response into v.
// A 404 response is classified as notFound
func (c *Client) get(ctx context.Context, path string, notFound error, v any) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("unable to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	c.logger.Debug(
		"querying NBP API",
		"url", url,
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp),
			kind:       ErrInvalidResponse,
		}

		if resp.StatusCode == http.StatusNotFound {
			apiErr.kind = notFound
		}

		return apiErr
	}

	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: unable to decode body: %w", ErrInvalidResponse, err)
	}

	return nil
}

// readErrorMessage extracts a single-line, human-readable message from an error body
func readErrorMessage(resp *http.Response) string {
	body := io.LimitReader(resp.Body, maxErrorBody)

	var text string

	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return ""
		}

		text = doc.Find("body").Text()
		if strings.TrimSpace(text) == "" {
			text = doc.Find("title").Text()
		}
	} else {
		raw, err := io.ReadAll(body)
		if err != nil {
			return ""
		}

		text = string(raw)
	}

	return strings.Join(strings.Fields(text), " ")
}

// ParseCurrency validates and normalizes a currency code
func ParseCurrency(v string) (types.Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", ErrInvalidCurrency
	}

	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", ErrInvalidCurrency
		}
	}

	return types.Currency(s), nil
}

// IsNotFound returns true if the error reports missing data, rather than a failure
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoData) || errors.Is(err, ErrCurrencyNotFound)
}

func fmtDate(t time.Time) string {
	return t.Format(period.DateLayout)
}

// sortByDate sorts the rates by effective date, oldest first
func sortByDate(rates []*types.ExchangeRate) {
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].AsOf.Before(rates[j].AsOf)
	})
}
