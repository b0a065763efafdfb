// Package query holds the CLI commands that read straight from the NBP API
package query

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/nbprates/cmd/env"
	"github.com/sig-0/nbprates/provider/nbp"
)

var errMissingPeriod = errors.New("missing --period")

// clientCfg holds the NBP client flags shared by the query commands
type clientCfg struct {
	baseURL string
	table   string
	timeout time.Duration
	verbose bool
}

func (c *clientCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.baseURL,
		"nbp-url",
		nbp.DefaultBaseURL,
		"the NBP API base URL",
	)

	fs.StringVar(
		&c.table,
		"table",
		nbp.DefaultTable,
		"the NBP table to read (A or B)",
	)

	fs.DurationVar(
		&c.timeout,
		"timeout",
		nbp.DefaultTimeout,
		"the NBP request timeout",
	)

	fs.BoolVar(
		&c.verbose,
		"verbose",
		false,
		"log every NBP request to stderr",
	)
}

// logger returns the stderr logger, quiet unless verbose
func (c *clientCfg) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (c *clientCfg) newClient() (*nbp.Client, error) {
	client, err := nbp.New(
		nbp.WithBaseURL(c.baseURL),
		nbp.WithTable(c.table),
		nbp.WithTimeout(c.timeout),
		nbp.WithLogger(c.logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create NBP client: %w", err)
	}

	return client, nil
}

// Commands returns the query commands, writing their results to out
func Commands(out io.Writer, errorHandling flag.ErrorHandling) []*ffcli.Command {
	return []*ffcli.Command{
		newAnalyzeCmd(out, errorHandling),
		newDistributionCmd(out, errorHandling),
		newRateCmd(out, errorHandling),
	}
}

// newFlagSet creates a flag set printing its usage to out
func newFlagSet(name string, out io.Writer, errorHandling flag.ErrorHandling) *flag.FlagSet {
	fs := flag.NewFlagSet(name, errorHandling)
	fs.SetOutput(out)

	return fs
}

func envOptions() []ff.Option {
	return []ff.Option{
		// Allow using ENV variables
		ff.WithEnvVars(),
		ff.WithEnvVarPrefix(env.Prefix),
	}
}

// parseInterspersed parses the flags that follow positional arguments,
// so both "analyze USD --period 1-week" and "analyze --period 1-week USD" work.
// It returns the positional arguments only
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string

	for len(args) > 0 {
		positional = append(positional, args[0])

		if err := fs.Parse(args[1:]); err != nil {
			return nil, err
		}

		args = fs.Args()
	}

	return positional, nil
}

// expectArgs validates the positional argument count
func expectArgs(args []string, names ...string) error {
	if len(args) == len(names) {
		return nil
	}

	return fmt.Errorf("expected %d argument(s) %v, got %d", len(names), names, len(args))
}
