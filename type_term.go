package taxlots

import "fmt"

// Term is the capital gains classification of a realized gain.
type Term int

const (
	// ShortTerm applies to lots held 365 days or less.
	ShortTerm Term = iota
	// LongTerm applies to lots held more than 365 days.
	LongTerm
)

func (t Term) String() string {
	switch t {
	case ShortTerm:
		return "short"
	case LongTerm:
		return "long"
	default:
		return "unknown"
	}
}

// ParseTerm parses a string into a Term.
func ParseTerm(s string) (Term, error) {
	switch s {
	case "short":
		return ShortTerm, nil
	case "long":
		return LongTerm, nil
	default:
		return 0, fmt.Errorf("unknown term: %q", s)
	}
}
