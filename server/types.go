package server

import (
	"time"

	"github.com/sig-0/nbprates/analysis"
	"github.com/sig-0/nbprates/storage/types"
)

type SourcesResponse struct {
	Results []types.Source `json:"results"`
}

type CurrenciesResponse struct {
	Results []types.Currency `json:"results"`
}

type HistoryResponse struct {
	Pair    types.Pair            `json:"pair"`
	From    string                `json:"from"`
	To      string                `json:"to"`
	Results []*types.ExchangeRate `json:"results"`
}

type DistributionResponse struct {
	Pair    string         `json:"pair"`
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Changes []float64      `json:"changes"`
	Bins    []analysis.Bin `json:"bins"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func newDistributionResponse(d *analysis.Distribution) *DistributionResponse {
	return &DistributionResponse{
		Pair:    d.PairName(),
		Start:   d.Start.Format(time.DateOnly),
		End:     d.End.Format(time.DateOnly),
		Changes: d.Changes,
		Bins:    d.Histogram(),
	}
}
