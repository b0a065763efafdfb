package query

import (
	"context"
	"flag"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/nbprates/analysis"
	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
)

type analyzeCfg struct {
	client clientCfg
	fs     *flag.FlagSet
	out    io.Writer

	period string
	start  string
}

func newAnalyzeCmd(out io.Writer, errorHandling flag.ErrorHandling) *ffcli.Command {
	cfg := &analyzeCfg{
		fs:  newFlagSet("analyze", out, errorHandling),
		out: out,
	}

	cfg.registerFlags(cfg.fs)

	return &ffcli.Command{
		Name:       "analyze",
		ShortUsage: "analyze <currency> --period <period> [--start YYYY-MM-DD]",
		ShortHelp:  "Analyze currency statistics",
		LongHelp: "Computes the median, mode, standard deviation, coefficient of variation " +
			"and session counts of the currency's PLN mid rate over the period ending at --start",
		FlagSet: cfg.fs,
		Exec:    cfg.exec,
		Options: envOptions(),
	}
}

func (c *analyzeCfg) registerFlags(fs *flag.FlagSet) {
	c.client.registerFlags(fs)

	fs.StringVar(
		&c.period,
		"period",
		"",
		"the analysis period ("+period.Names(period.All)+")",
	)

	fs.StringVar(
		&c.start,
		"start",
		"",
		"the last day of the period (YYYY-MM-DD), defaults to today",
	)
}

func (c *analyzeCfg) exec(ctx context.Context, args []string) error {
	positional, err := parseInterspersed(c.fs, args)
	if err != nil {
		return err
	}

	if err = expectArgs(positional, "currency"); err != nil {
		return err
	}

	currency, err := nbp.ParseCurrency(positional[0])
	if err != nil {
		return err
	}

	if c.period == "" {
		return errMissingPeriod
	}

	p, err := period.Parse(c.period)
	if err != nil {
		return err
	}

	anchor, err := period.ParseAnchor(c.start, period.Today())
	if err != nil {
		return err
	}

	client, err := c.client.newClient()
	if err != nil {
		return err
	}

	service := analysis.New(client, analysis.WithLogger(c.client.logger()))

	report, err := service.Analyze(ctx, analysis.AnalyzeRequest{
		Anchor:   anchor,
		Currency: currency,
		Period:   p,
	})
	if err != nil {
		return err
	}

	return analysis.WriteReport(c.out, report)
}
