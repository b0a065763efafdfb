package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
	"github.com/sig-0/nbprates/storage"
	"github.com/sig-0/nbprates/storage/types"
)

// defaultHistoryDays is the history window served when from is omitted
const defaultHistoryDays = 30

var (
	errUnableToFetchRates      = errors.New("unable to fetch rates")
	errUnableToFetchCurrencies = errors.New("unable to fetch currencies")
	errUnableToFetchSources    = errors.New("unable to fetch sources")

	errInvalidLimit  = errors.New("invalid limit")
	errInvalidOffset = errors.New("invalid offset")
	errInvalidType   = errors.New("invalid type")
	errInvalidAsOf   = errors.New("invalid as_of (must be RFC3339 UTC)")
	errInvertedRange = errors.New("invalid range (from is after to)")
)

func (s *Server) RatesForPair(w http.ResponseWriter, r *http.Request) {
	target, err := parseCurrencySymbol(chi.URLParam(r, "target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	s.ratesAsOf(w, r, &target)
}

func (s *Server) RatesForBase(w http.ResponseWriter, r *http.Request) {
	s.ratesAsOf(w, r, nil)
}

// ratesAsOf serves the latest stored rates of the base currency,
// optionally narrowed down to a single target
func (s *Server) ratesAsOf(w http.ResponseWriter, r *http.Request, target *types.Currency) {
	var (
		query = r.URL.Query()

		asOfParam   = query.Get("as_of")
		limitParam  = query.Get("limit")
		offsetParam = query.Get("offset")

		sourceParam = query.Get("source")
		typeParam   = query.Get("type")
	)

	base, err := parseCurrencySymbol(chi.URLParam(r, "base"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the effective date (defaults to now)
	asOf, err := parseAsOf(asOfParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the source and rate type (optional)
	source, rateType, err := parseSourceAndType(sourceParam, typeParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.RateQuery{
		Base:     base,
		Target:   target,
		Source:   source,
		RateType: rateType,
		Limit:    limit,
		Offset:   offset,
	}

	page, err := s.storage.RateAsOf(r.Context(), q, asOf)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToFetchRates)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

// History serves the stored series of a pair, oldest first
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	base, err := parseCurrencySymbol(chi.URLParam(r, "base"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	target, err := parseCurrencySymbol(chi.URLParam(r, "target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	from, to, err := parseHistoryRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), period.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	pair := types.Pair{Base: base, Target: target}

	// The window is inclusive of the whole last day
	rates, err := s.storage.RatesInRange(r.Context(), pair, from, to.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		s.logger.Debug(
			"unable to fetch rate history",
			"base", base,
			"target", target,
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToFetchRates)

		return
	}

	if rates == nil {
		rates = []*types.ExchangeRate{}
	}

	writeJSON(w, http.StatusOK, &HistoryResponse{
		Pair:    pair,
		From:    from.Format(period.DateLayout),
		To:      to.Format(period.DateLayout),
		Results: rates,
	})
}

func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListSources(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch sources",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToFetchSources)

		return
	}

	writeJSON(w, http.StatusOK, &SourcesResponse{
		Results: items,
	})
}

func (s *Server) Currencies(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListCurrencies(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch currencies",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToFetchCurrencies)

		return
	}

	writeJSON(w, http.StatusOK, &CurrenciesResponse{
		Results: items,
	})
}

func parseAsOf(asOfRaw string) (time.Time, error) {
	v := strings.TrimSpace(asOfRaw)
	if v == "" {
		return time.Now().UTC(), nil // default is now
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errInvalidAsOf
	}

	return t.UTC(), nil
}

// parseHistoryRange parses the [from, to] dates of a history query.
// to defaults to today, from to 30 days before to
func parseHistoryRange(fromRaw, toRaw string, today time.Time) (time.Time, time.Time, error) {
	to, err := period.ParseAnchor(toRaw, today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	from := to.AddDate(0, 0, -defaultHistoryDays)

	if v := strings.TrimSpace(fromRaw); v != "" {
		if from, err = period.ParseAnchor(v, today); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, errInvertedRange
	}

	return from, to, nil
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	var limit int32

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return 0, 0, errInvalidLimit
		}

		limit = int32(n)
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return storage.NormalizeLimit(limit), offset, nil
}

func parseSourceAndType(sourceRaw, typeRaw string) (*types.Source, *types.RateType, error) {
	var src *types.Source

	if v := strings.TrimSpace(sourceRaw); v != "" {
		s := types.Source(strings.ToUpper(v))

		src = &s
	}

	var rt *types.RateType

	if v := strings.TrimSpace(typeRaw); v != "" {
		t := types.RateType(strings.ToUpper(v))

		switch t {
		case types.RateTypeMID, types.RateTypeBUY, types.RateTypeSELL:
			rt = &t
		default:
			return nil, nil, errInvalidType
		}
	}

	return src, rt, nil
}

// parseCurrencySymbol parses an ISO 4217 code, case-insensitively
func parseCurrencySymbol(v string) (types.Currency, error) {
	return nbp.ParseCurrency(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
