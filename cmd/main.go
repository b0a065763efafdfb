package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/nbprates/cmd/query"
	"github.com/sig-0/nbprates/cmd/serve"
	"github.com/sig-0/nbprates/cmd/sql"
)

func main() {
	cmd := newRootCmd()

	if err := cmd.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}

// newRootCmd creates the nbprates root command, with every subcommand attached
func newRootCmd() *ffcli.Command {
	fs := flag.NewFlagSet("nbprates", flag.ExitOnError)

	cmd := &ffcli.Command{
		Name:       "nbprates",
		ShortUsage: "nbprates <sub-command> [flags] [<arg>...]",
		LongHelp:   "Analyzes and serves the exchange rates published by the National Bank of Poland",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
	}

	cmd.Subcommands = append(
		query.Commands(os.Stdout, flag.ExitOnError),
		query.NewREPLCmd(os.Stdin, os.Stdout),
		serve.NewServeCmd(),
		sql.NewSQLCmd(),
		newVersionCmd(os.Stdout),
	)

	return cmd
}
