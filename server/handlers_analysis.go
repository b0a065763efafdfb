package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/nbprates/analysis"
	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
)

var errUnableToAnalyze = errors.New("unable to compute statistics")

// Analysis serves the statistical summary of a currency over a period
func (s *Server) Analysis(w http.ResponseWriter, r *http.Request) {
	req, err := parseAnalyzeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	report, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeAnalysisError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Distribution serves the daily changes of a currency pair, with histogram bins
func (s *Server) Distribution(w http.ResponseWriter, r *http.Request) {
	req, err := parseDistributionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	d, err := s.analyzer.Distribution(r.Context(), req)
	if err != nil {
		s.writeAnalysisError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, newDistributionResponse(d))
}

func parseAnalyzeRequest(r *http.Request) (analysis.AnalyzeRequest, error) {
	currency, err := parseCurrencySymbol(chi.URLParam(r, "currency"))
	if err != nil {
		return analysis.AnalyzeRequest{}, err
	}

	p, anchor, err := parsePeriodWindow(r)
	if err != nil {
		return analysis.AnalyzeRequest{}, err
	}

	return analysis.AnalyzeRequest{
		Anchor:   anchor,
		Currency: currency,
		Period:   p,
	}, nil
}

func parseDistributionRequest(r *http.Request) (analysis.DistributionRequest, error) {
	base, err := parseCurrencySymbol(chi.URLParam(r, "base"))
	if err != nil {
		return analysis.DistributionRequest{}, err
	}

	quote, err := parseCurrencySymbol(chi.URLParam(r, "quote"))
	if err != nil {
		return analysis.DistributionRequest{}, err
	}

	p, anchor, err := parsePeriodWindow(r)
	if err != nil {
		return analysis.DistributionRequest{}, err
	}

	return analysis.DistributionRequest{
		Anchor: anchor,
		Base:   base,
		Quote:  quote,
		Period: p,
	}, nil
}

// parsePeriodWindow parses the period and start (anchor) query params.
// The period is required, start defaults to today
func parsePeriodWindow(r *http.Request) (period.Period, time.Time, error) {
	p, err := period.Parse(r.URL.Query().Get("period"))
	if err != nil {
		return "", time.Time{}, err
	}

	anchor, err := period.ParseAnchor(r.URL.Query().Get("start"), period.Today())
	if err != nil {
		return "", time.Time{}, err
	}

	return p, anchor, nil
}

// writeAnalysisError maps analysis and upstream failures to API statuses
func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	status := analysisStatus(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error(
			"unable to compute statistics",
			"status", status,
			"err", err,
		)
	}

	if status == http.StatusInternalServerError {
		err = errUnableToAnalyze
	}

	writeError(w, status, err)
}

func analysisStatus(err error) int {
	switch {
	case errors.Is(err, analysis.ErrSameCurrency),
		errors.Is(err, nbp.ErrInvalidCurrency),
		errors.Is(err, nbp.ErrInvalidRange),
		errors.Is(err, nbp.ErrRangeTooLong),
		errors.Is(err, period.ErrUnsupportedPeriod),
		errors.Is(err, period.ErrInvalidDateFormat),
		errors.Is(err, period.ErrBeforeArchive),
		errors.Is(err, period.ErrFutureDate):
		return http.StatusBadRequest
	case errors.Is(err, nbp.ErrCurrencyNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrNotEnoughData),
		errors.Is(err, nbp.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, nbp.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
