package analysis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sig-0/nbprates/period"
)

// WriteReport renders the report as plain text
func WriteReport(w io.Writer, r *Report) error {
	mode := "No dominant value"

	if len(r.Modes) > 0 {
		values := make([]string, 0, len(r.Modes))
		for _, m := range r.Modes {
			values = append(values, formatFloat(m))
		}

		mode = strings.Join(values, ", ")
	}

	_, err := fmt.Fprintf(
		w,
		"Currency: %s\n"+
			"Period: %s\n"+
			"Median: %s\n"+
			"Mode: %s\n"+
			"Standard deviation: %s\n"+
			"Coefficient of variation: %s\n"+
			"Increased: %d\n"+
			"Decreased: %d\n"+
			"Unchanged: %d\n",
		r.Currency,
		formatWindow(r.Start, r.End),
		formatFloat(r.Median),
		mode,
		formatFloat(r.StdDev),
		formatFloat(r.CoefficientOfVariation),
		r.Sessions.Increased,
		r.Sessions.Decreased,
		r.Sessions.Unchanged,
	)

	return err
}

func formatWindow(start, end time.Time) string {
	return start.Format(period.DateLayout) + " - " + end.Format(period.DateLayout)
}

// formatFloat prints the shortest representation, capped at 6 decimals
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")

	return strings.TrimSuffix(s, ".")
}
