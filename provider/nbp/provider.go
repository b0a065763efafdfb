package nbp

import (
	"context"
	"fmt"
	"time"

	"github.com/sig-0/nbprates/storage/types"
)

// DefaultInterval is the default ingest interval. Table A is published once
// per business day, around noon Warsaw time
const DefaultInterval = time.Hour

// Provider ingests the latest NBP table
type Provider struct {
	client   *Client
	interval time.Duration
}

// NewProvider creates a new table ingest provider on top of the client
func NewProvider(client *Client, interval time.Duration) *Provider {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Provider{
		client:   client,
		interval: interval,
	}
}

func (p *Provider) Name() string {
	return fmt.Sprintf("NBP table %s", p.client.Table())
}

func (p *Provider) Interval() time.Duration {
	return p.interval
}

func (p *Provider) Fetch(ctx context.Context) ([]*types.ExchangeRate, error) {
	rates, err := p.client.LatestTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch table %s: %w", p.client.Table(), err)
	}

	return rates, nil
}
