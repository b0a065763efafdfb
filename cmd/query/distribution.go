package query

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/nbprates/analysis"
	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
)

// distributionPeriods are the windows a change histogram stays readable for
var distributionPeriods = []period.Period{period.OneMonth, period.OneQuarter}

type distributionCfg struct {
	client clientCfg
	fs     *flag.FlagSet
	out    io.Writer

	period string
	start  string
}

func newDistributionCmd(out io.Writer, errorHandling flag.ErrorHandling) *ffcli.Command {
	cfg := &distributionCfg{
		fs:  newFlagSet("change-distribution", out, errorHandling),
		out: out,
	}

	cfg.registerFlags(cfg.fs)

	return &ffcli.Command{
		Name:       "change-distribution",
		ShortUsage: "change-distribution <currency1> <currency2> --period <period> [--start YYYY-MM-DD]",
		ShortHelp:  "Calculate distribution of changes",
		LongHelp: "Prints the histogram of daily changes of the currency1/currency2 cross rate " +
			"over the period ending at --start",
		FlagSet: cfg.fs,
		Exec:    cfg.exec,
		Options: envOptions(),
	}
}

func (c *distributionCfg) registerFlags(fs *flag.FlagSet) {
	c.client.registerFlags(fs)

	fs.StringVar(
		&c.period,
		"period",
		"",
		"the analysis period ("+period.Names(distributionPeriods)+")",
	)

	fs.StringVar(
		&c.start,
		"start",
		"",
		"the last day of the period (YYYY-MM-DD), defaults to today",
	)
}

func (c *distributionCfg) exec(ctx context.Context, args []string) error {
	positional, err := parseInterspersed(c.fs, args)
	if err != nil {
		return err
	}

	if err = expectArgs(positional, "currency1", "currency2"); err != nil {
		return err
	}

	base, err := nbp.ParseCurrency(positional[0])
	if err != nil {
		return err
	}

	quote, err := nbp.ParseCurrency(positional[1])
	if err != nil {
		return err
	}

	p, err := parseDistributionPeriod(c.period)
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

	d, err := service.Distribution(ctx, analysis.DistributionRequest{
		Anchor: anchor,
		Base:   base,
		Quote:  quote,
		Period: p,
	})
	if err != nil {
		return err
	}

	return analysis.WriteHistogram(c.out, d)
}

func parseDistributionPeriod(raw string) (period.Period, error) {
	if raw == "" {
		return "", errMissingPeriod
	}

	p, err := period.Parse(raw)
	if err != nil {
		return "", err
	}

	for _, allowed := range distributionPeriods {
		if p == allowed {
			return p, nil
		}
	}

	return "", fmt.Errorf(
		"%w: %q (choose from %s)",
		period.ErrUnsupportedPeriod,
		raw,
		period.Names(distributionPeriods),
	)
}
