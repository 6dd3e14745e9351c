package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/taxlots"
)

// GainsMarkdown renders a capital gains report: one row per realized gain,
// the wash sales, and the totals per term.
func GainsMarkdown(r *taxlots.GainsReport) string {
	var b strings.Builder

	if r.Year == 0 {
		fmt.Fprint(&b, "# Capital Gains Report\n\n")
	} else {
		fmt.Fprintf(&b, "# Capital Gains Report for %d\n\n", r.Year)
	}
	if len(r.Gains) == 0 {
		fmt.Fprint(&b, "No realized gain.\n")
		return b.String()
	}

	fmt.Fprint(&b, "## Realized Gains\n\n")
	fmt.Fprintln(&b, "| Symbol | Acquired | Sold | Quantity | Cost Basis | Proceeds | Gain / Loss | Term | Wash Sale |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|:---|:---:|")
	for _, g := range r.Gains {
		wash := ""
		if g.WashSale {
			wash = "W"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			g.Symbol,
			g.Acquired,
			g.Sold,
			g.Quantity,
			g.CostBasis.String(),
			g.Proceeds.String(),
			g.Gain.SignedString(),
			g.Term,
			wash,
		)
	}
	fmt.Fprintln(&b)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Wash Sales\n\n")
		fmt.Fprintln(w, "| Symbol | Sold | Loss | Disallowed |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|")
		for _, g := range r.Gains {
			if g.WashSale {
				fmt.Fprintf(w, "| %s | %s | %s | %s |\n", g.Symbol, g.Sold, g.Gain.SignedString(), g.Disallowed.String())
			}
		}
		fmt.Fprintln(w)
		return r.WashSales > 0
	})

	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Realized | %s |\n", r.Realized.SignedString())
	fmt.Fprintf(&b, "| Disallowed Loss | %s |\n", r.Disallowed.SignedString())
	fmt.Fprintf(&b, "| Short-Term | %s |\n", r.ShortTerm.SignedString())
	fmt.Fprintf(&b, "| Long-Term | %s |\n", r.LongTerm.SignedString())
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", r.Recognized().SignedString())

	return b.String()
}
