package serve

import (
	"fmt"
	"log/slog"

	"github.com/sig-0/nbprates/ingest"
	"github.com/sig-0/nbprates/provider/nbp"
	"github.com/sig-0/nbprates/server/config"
)

// newClient creates the NBP client for the given table
func newClient(cfg *config.NBP, table string, logger *slog.Logger) (*nbp.Client, error) {
	client, err := nbp.New(
		nbp.WithBaseURL(cfg.BaseURL),
		nbp.WithTable(table),
		nbp.WithTimeout(cfg.TimeoutDuration()),
		nbp.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create NBP client for table %s: %w", table, err)
	}

	return client, nil
}

// defaultProviders returns one table ingestion provider per configured table
func defaultProviders(cfg *config.NBP, logger *slog.Logger) ([]ingest.Provider, error) {
	providers := make([]ingest.Provider, 0, len(cfg.Tables))

	for _, table := range cfg.Tables {
		client, err := newClient(cfg, table, logger)
		if err != nil {
			return nil, err
		}

		providers = append(providers, nbp.NewProvider(client, cfg.IngestIntervalDuration()))
	}

	return providers, nil
}
