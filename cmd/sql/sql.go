package sql

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/nbprates/cmd/env"
)

// sqlCfg wraps the sql configuration
type sqlCfg struct {
	dsn string
}

// NewSQLCmd creates the sql subcommand
func NewSQLCmd() *ffcli.Command {
	cfg := &sqlCfg{}

	fs := flag.NewFlagSet("sql", flag.ExitOnError)
	cfg.RegisterFlags(fs)

	cmd := &ffcli.Command{
		Name:       "sql",
		ShortUsage: "sql <subcommand> [flags] [<arg>...]",
		ShortHelp:  "Manage the Postgres datastore",
		LongHelp:   "Runs the nbprates SQL suite",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
	}

	// Add the subcommands
	cmd.Subcommands = []*ffcli.Command{
		newMigrateCmd(cfg),
	}

	return cmd
}

func (c *sqlCfg) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.dsn,
		"db-url",
		"",
		"the Postgres connection string, defaults to $"+env.Prefix+env.DBURLSuffix,
	)
}
