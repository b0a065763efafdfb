package server

import (
	"context"

	"github.com/sig-0/nbprates/analysis"
)

type (
	analyzeDelegate      func(context.Context, analysis.AnalyzeRequest) (*analysis.Report, error)
	distributionDelegate func(context.Context, analysis.DistributionRequest) (*analysis.Distribution, error)
)

type mockAnalyzer struct {
	analyzeFn      analyzeDelegate
	distributionFn distributionDelegate
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, req)
	}

	return nil, nil
}

func (m *mockAnalyzer) Distribution(
	ctx context.Context,
	req analysis.DistributionRequest,
) (*analysis.Distribution, error) {
	if m.distributionFn != nil {
		return m.distributionFn(ctx, req)
	}

	return nil, nil
}
