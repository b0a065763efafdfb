package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"github.com/peterbourgon/ff/v3/ffcli"
)

// version is injected at build time:
// -ldflags "-X main.version=v1.2.3"
var version = "dev"

func newVersionCmd(out io.Writer) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "version",
		ShortHelp:  "Print the build version",
		FlagSet:    flag.NewFlagSet("version", flag.ExitOnError),
		Exec: func(_ context.Context, _ []string) error {
			_, err := fmt.Fprintf(out, "nbprates %s (%s)\n", version, runtime.Version())

			return err
		},
	}
}
