package query

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/shlex"
	"github.com/peterbourgon/ff/v3/ffcli"
)

const prompt = "NBP_APP> "

var (
	errUnknownCommand = errors.New("unknown command")
	errMissingCommand = errors.New("missing command")
)

type replCfg struct {
	in  io.Reader
	out io.Writer
}

// NewREPLCmd creates the interactive shell command
func NewREPLCmd(in io.Reader, out io.Writer) *ffcli.Command {
	cfg := &replCfg{
		in:  in,
		out: out,
	}

	return &ffcli.Command{
		Name:       "repl",
		ShortUsage: "repl",
		ShortHelp:  "Start the interactive shell",
		LongHelp:   "Reads query commands line by line until 'exit' or end of input",
		FlagSet:    flag.NewFlagSet("repl", flag.ExitOnError),
		Exec:       cfg.exec,
	}
}

func (c *replCfg) exec(ctx context.Context, _ []string) error {
	c.println("Welcome to Currency Exchange Rate Statistical Analysis System")
	c.println("Type 'help' for available commands or 'exit' to quit.")

	scanner := bufio.NewScanner(c.in)

	for ctx.Err() == nil {
		c.printf("\n%s", prompt)

		if !scanner.Scan() {
			c.println()

			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit":
			c.println("Exiting application...")

			return nil
		case "help":
			c.printHelp()

			continue
		}

		if err := c.run(ctx, line); err != nil {
			c.printf("Error: %s\n", err)
		}
	}

	return nil
}

// run parses and executes a single command line
func (c *replCfg) run(ctx context.Context, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("unable to parse command: %w", err)
	}

	if len(args) == 0 {
		return nil // the line held only a comment
	}

	root := &ffcli.Command{
		FlagSet:     newFlagSet("repl", c.out, flag.ContinueOnError),
		Subcommands: Commands(c.out, flag.ContinueOnError),
		Exec: func(_ context.Context, args []string) error {
			if len(args) == 0 {
				// a bare "--" leaves nothing to dispatch
				return fmt.Errorf("%w, type 'help' for available commands", errMissingCommand)
			}

			return fmt.Errorf("%w %q, type 'help' for available commands", errUnknownCommand, args[0])
		},
	}

	err = root.ParseAndRun(ctx, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil // usage is already printed
	}

	return err
}

func (c *replCfg) printHelp() {
	c.println("Available commands:")

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)

	for _, cmd := range Commands(c.out, flag.ContinueOnError) {
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", cmd.ShortUsage, cmd.ShortHelp)
	}

	_, _ = fmt.Fprintf(w, "  %s\t%s\n", "help", "Show this list")
	_, _ = fmt.Fprintf(w, "  %s\t%s\n", "exit", "Quit the shell")

	_ = w.Flush()
}

func (c *replCfg) println(a ...any) {
	_, _ = fmt.Fprintln(c.out, a...)
}

func (c *replCfg) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}
