package browse

import (
	"time"

	"github.com/elisa-rivadeneira/gestor-documentario/model"
)

// Term is a contract's derived execution window. Both endpoints are civil
// dates at midnight UTC.
type Term struct {
	Start time.Time
	End   time.Time
}

// ContractTerm derives the execution window from the signing date and the
// agreed term. Execution starts the day after signing and runs for
// termDays+extraDays calendar days inclusive, so a 30-day contract signed on
// the 10th starts the 11th and ends the 9th of the next month. The second
// return is false when the signing date is absent or the term is not positive.
func ContractTerm(signed *time.Time, termDays, extraDays int) (Term, bool) {
	if signed == nil || termDays <= 0 {
		return Term{}, false
	}
	if extraDays < 0 {
		extraDays = 0
	}
	start := civilDate(*signed).AddDate(0, 0, 1)
	end := start.AddDate(0, 0, termDays+extraDays-1)
	return Term{Start: start, End: end}, true
}

// TermOf derives the execution window of a contract record.
func TermOf(c *model.ContractRecord) (Term, bool) {
	return ContractTerm(c.Date, c.TermDays, c.ExtraDays)
}

// ParentNumber resolves the display number of the oficio a reply letter
// addresses, or "" when the letter has no parent or the parent is not in the
// lookup table.
func ParentNumber(d *model.DocumentRecord, numbers map[int64]string) string {
	if d.ParentID == nil {
		return ""
	}
	return numbers[*d.ParentID]
}

// civilDate drops the time-of-day and zone so calendar arithmetic and
// comparisons never shift across a day boundary.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
