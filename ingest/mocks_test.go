package ingest

import (
	"context"
	"time"

	"github.com/sig-0/nbprates/storage/types"
)

type (
	nameDelegate     func() string
	intervalDelegate func() time.Duration
	fetchDelegate    func(context.Context) ([]*types.ExchangeRate, error)
)

type mockProvider struct {
	nameFn     nameDelegate
	intervalFn intervalDelegate
	fetchFn    fetchDelegate
}

// newMockProvider creates a provider with a fixed name and interval
func newMockProvider(name string, interval time.Duration, fetch fetchDelegate) *mockProvider {
	return &mockProvider{
		nameFn: func() string {
			return name
		},
		intervalFn: func() time.Duration {
			return interval
		},
		fetchFn: fetch,
	}
}

func (m *mockProvider) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockProvider) Interval() time.Duration {
	if m.intervalFn != nil {
		return m.intervalFn()
	}

	return 0
}

func (m *mockProvider) Fetch(ctx context.Context) ([]*types.ExchangeRate, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}
