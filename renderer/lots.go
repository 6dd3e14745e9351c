package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/taxlots"
	md "github.com/nao1215/markdown"
)

// LotsMarkdown renders the open lots of a tracker, oldest first within each
// symbol.
func LotsMarkdown(t *taxlots.Tracker, on taxlots.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Open Lots on %s", on))

	symbols := t.Symbols()
	if len(symbols) == 0 {
		doc.PlainText("No open lot.")
		return doc.String()
	}

	for _, symbol := range symbols {
		doc.H2(symbol)
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft,
				md.AlignRight,
				md.AlignRight,
				md.AlignRight,
				md.AlignLeft,
			},
			Header: []string{"Acquired", "Quantity", "Unit Cost", "Cost", "Term"},
		}
		var quantity taxlots.Quantity
		var cost taxlots.Money
		for _, l := range t.OpenLots(symbol) {
			table.Rows = append(table.Rows, []string{
				l.Acquired.String(),
				l.Quantity.String(),
				l.UnitCost.String(),
				l.Cost().String(),
				termOn(l, on).String(),
			})
			quantity = quantity.Add(l.Quantity)
			cost = cost.Add(l.Cost())
		}
		table.Rows = append(table.Rows, []string{
			md.Bold("Total"),
			md.Bold(quantity.String()),
			"",
			md.Bold(cost.String()),
			"",
		})
		doc.Table(table)
	}
	return doc.String()
}

// termOn returns the term a lot would have if sold on day.
func termOn(l taxlots.Lot, on taxlots.Date) taxlots.Term {
	return taxlots.ClassifyTerm(taxlots.RealizedGain{Acquired: l.Acquired, Sold: on})
}
