package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxlots"
	md "github.com/nao1215/markdown"
)

// HoldingMarkdown renders the valuation of a portfolio and the weight of each
// position.
func HoldingMarkdown(s *taxlots.Summary, on taxlots.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holding on %s", on))

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total Value"),
			md.Bold(s.TotalValue.String()),
		},
		Rows: [][]string{
			{"Cost Basis", s.TotalCost.String()},
			{"Unrealized Gain", s.TotalReturn.SignedString()},
			{"Return", s.ReturnPercent.SignedString()},
		},
	})

	if len(s.Positions) == 0 {
		return doc.String()
	}

	doc.H2("Positions")
	weights := taxlots.Allocation(s)
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Symbol", "Quantity", "Avg. Cost", "Price", "Market Value", "Gain / Loss", "Weight"},
	}
	for _, p := range s.Positions {
		table.Rows = append(table.Rows, []string{
			p.Symbol,
			p.Quantity.String(),
			p.AverageCost.String(),
			p.Price.String(),
			p.MarketValue.String(),
			fmt.Sprintf("%s (%s)", p.Return.SignedString(), p.ReturnPercent.SignedString()),
			weights[p.Symbol].String(),
		})
	}
	doc.Table(table)
	return doc.String()
}
