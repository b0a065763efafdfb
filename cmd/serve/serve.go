package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/nbprates/analysis"
	"github.com/sig-0/nbprates/cmd/env"
	"github.com/sig-0/nbprates/ingest"
	"github.com/sig-0/nbprates/server"
	"github.com/sig-0/nbprates/server/config"
	"github.com/sig-0/nbprates/storage"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath string
	noIngest   bool
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve <subcommand> [flags]",
		ShortHelp:  "Serve the rates API",
		LongHelp:   "Serves the nbprates API, ingesting the latest NBP tables in the background",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newServeSQLCmd(cfg),
		newServeMemoryCmd(cfg),
	}

	return cmd
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.BoolVar(
		&c.noIngest,
		"no-ingest",
		false,
		"serve the stored rates without fetching new NBP tables",
	)
}

// loadConfig reads the server configuration file, if any.
// An explicit --listen flag wins over the file
func (c *serveCfg) loadConfig() error {
	if c.configPath == "" {
		return nil
	}

	listen := c.config.ListenAddress

	serverCfg, err := config.Read(c.configPath)
	if err != nil {
		return fmt.Errorf("unable to read server config, %w", err)
	}

	if listen != config.DefaultListenAddress {
		serverCfg.ListenAddress = listen
	}

	c.config = serverCfg

	return nil
}

// run serves the API on top of the store until interrupted
func (c *serveCfg) run(ctx context.Context, store storage.Storage, logger *slog.Logger) error {
	if err := config.ValidateConfig(c.config); err != nil {
		return fmt.Errorf("invalid configuration, %w", err)
	}

	nbpCfg := c.config.NBP
	if nbpCfg == nil {
		nbpCfg = config.DefaultNBPConfig()
	}

	// Live statistics always read table A
	analysisClient, err := newClient(nbpCfg, "A", logger)
	if err != nil {
		return err
	}

	s, err := server.New(
		store,
		server.WithLogger(logger),
		server.WithConfig(c.config),
		server.WithAnalyzer(analysis.New(analysisClient, analysis.WithLogger(logger))),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	var orchestrator *ingest.Orchestrator

	if !c.noIngest {
		if orchestrator, err = newOrchestrator(store, nbpCfg, logger); err != nil {
			return err
		}
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the ingestion service
	if orchestrator != nil {
		group.Go(func() error {
			return orchestrator.Start(gCtx)
		})
	}

	return group.Wait()
}

// newOrchestrator creates the table ingestion service
func newOrchestrator(
	store storage.Storage,
	nbpCfg *config.NBP,
	logger *slog.Logger,
) (*ingest.Orchestrator, error) {
	orchestrator := ingest.New(store, ingest.WithLogger(logger))

	providers, err := defaultProviders(nbpCfg, logger)
	if err != nil {
		return nil, err
	}

	for _, provider := range providers {
		if err = orchestrator.Register(provider); err != nil {
			return nil, fmt.Errorf("unable to register provider: %w", err)
		}
	}

	return orchestrator, nil
}
