package taxlots

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Percent float64

// percentOf returns part/whole as a percentage, 0 when whole is zero.
func percentOf(part, whole decimal.Decimal) Percent {
	if whole.IsZero() {
		return 0
	}
	return Percent(part.Mul(decimal.NewFromInt(100)).Div(whole).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
