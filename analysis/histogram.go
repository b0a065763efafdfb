package analysis

import (
	"fmt"
	"io"
	"strings"
)

// ruleWidth is the width of the horizontal separators in text output
const ruleWidth = 70

// Bin is a single histogram bucket covering [Low, High)
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram buckets the changes into equal-width bins.
// The bin count grows with the window: 7 bins for about a month,
// 12 for about a quarter, 18 for anything longer
func (d *Distribution) Histogram() []Bin {
	if len(d.Changes) == 0 {
		return nil
	}

	var (
		n      = binCount(int(d.End.Sub(d.Start).Hours() / 24))
		lo, hi = d.Changes[0], d.Changes[0]
	)

	for _, c := range d.Changes[1:] {
		lo = min(lo, c)
		hi = max(hi, c)
	}

	width := (hi - lo) / float64(n)
	if hi == lo {
		width = 1
	}

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{
			Low:  lo + float64(i)*width,
			High: lo + float64(i+1)*width,
		}
	}

	for _, c := range d.Changes {
		idx := n - 1 // the maximum closes the last bin

		if c != hi {
			idx = min(max(int((c-lo)/width), 0), n-1)
		}

		bins[idx].Count++
	}

	return bins
}

func binCount(spanDays int) int {
	switch {
	case spanDays < 45:
		return 7
	case spanDays < 100:
		return 12
	default:
		return 18
	}
}

// WriteHistogram renders the distribution as a vertical ASCII histogram,
// followed by a legend of the bin ranges
func WriteHistogram(w io.Writer, d *Distribution) error {
	bins := d.Histogram()
	if len(bins) == 0 {
		_, err := fmt.Fprintln(w, "No data to display.")

		return err
	}

	var b strings.Builder

	fmt.Fprintf(
		&b,
		"\nDistribution for %s (%s)\n",
		d.PairName(),
		formatWindow(d.Start, d.End),
	)
	b.WriteString("Y-axis: Frequency (days) | X-axis: Change bins\n")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	highest := 0
	for _, bin := range bins {
		highest = max(highest, bin.Count)
	}

	for row := highest; row > 0; row-- {
		fmt.Fprintf(&b, "%3d | ", row)

		for _, bin := range bins {
			if bin.Count >= row {
				b.WriteString(" #### ")
			} else {
				b.WriteString("      ")
			}
		}

		b.WriteString("\n")
	}

	// X-axis, the leading padding aligns '+' with the '|' above
	b.WriteString("    " + strings.Repeat("+-----", len(bins)) + "+\n")

	b.WriteString("     ")

	for i := range bins {
		fmt.Fprintf(&b, " (%-2d) ", i+1)
	}

	b.WriteString("\n" + strings.Repeat("-", ruleWidth) + "\n")

	// Two-column legend
	fmt.Fprintf(&b, "Legend (Ranges in %s):\n", d.Pair.Target)

	half := (len(bins) + 1) / 2

	for i := 0; i < half; i++ {
		left := legendEntry(i, bins[i])

		if j := i + half; j < len(bins) {
			fmt.Fprintf(&b, "%-35s | %s\n", left, legendEntry(j, bins[j]))

			continue
		}

		b.WriteString(left + "\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func legendEntry(i int, bin Bin) string {
	return fmt.Sprintf("(%-2d): [%+.4f, %+.4f)", i+1, bin.Low, bin.High)
}
