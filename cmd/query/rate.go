package query

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/nbprates/period"
	"github.com/sig-0/nbprates/provider/nbp"
	"github.com/sig-0/nbprates/storage/types"
)

type rateCfg struct {
	client clientCfg
	fs     *flag.FlagSet
	out    io.Writer

	date string
}

func newRateCmd(out io.Writer, errorHandling flag.ErrorHandling) *ffcli.Command {
	cfg := &rateCfg{
		fs:  newFlagSet("rate", out, errorHandling),
		out: out,
	}

	cfg.registerFlags(cfg.fs)

	return &ffcli.Command{
		Name:       "rate",
		ShortUsage: "rate <currency> [--date YYYY-MM-DD]",
		ShortHelp:  "Show the PLN mid rate of a currency",
		LongHelp:   "Prints the latest published mid rate, or the one published on --date",
		FlagSet:    cfg.fs,
		Exec:       cfg.exec,
		Options:    envOptions(),
	}
}

func (c *rateCfg) registerFlags(fs *flag.FlagSet) {
	c.client.registerFlags(fs)

	fs.StringVar(
		&c.date,
		"date",
		"",
		"the publication day (YYYY-MM-DD), defaults to the latest table",
	)
}

func (c *rateCfg) exec(ctx context.Context, args []string) error {
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

	client, err := c.client.newClient()
	if err != nil {
		return err
	}

	var rate *types.ExchangeRate

	if strings.TrimSpace(c.date) == "" {
		rate, err = client.CurrentRate(ctx, currency)
	} else {
		day, parseErr := period.ParseAnchor(c.date, period.Today())
		if parseErr != nil {
			return parseErr
		}

		rate, err = client.RateOn(ctx, currency, day)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(
		c.out,
		"%s/%s: %s (%s, table %s)\n",
		rate.Base,
		rate.Target,
		formatRate(rate.Rate),
		rate.AsOf.Format(period.DateLayout),
		client.Table(),
	)

	return err
}

func formatRate(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")

	return strings.TrimSuffix(s, ".")
}
