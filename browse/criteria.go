package browse

import (
	"strings"
	"time"
)

// RangeOp is the direction of a one-sided range filter.
type RangeOp string

const (
	OpNone       RangeOp = ""
	OpAtOrAfter  RangeOp = "at-or-after"
	OpAtOrBefore RangeOp = "at-or-before"
)

// DateFilter is a one-sided bound over a derived civil date. The zero value
// is inactive and matches everything.
type DateFilter struct {
	Op    RangeOp
	Bound time.Time
}

func (f DateFilter) active() bool {
	return f.Op != OpNone && !f.Bound.IsZero()
}

// matches compares calendar dates only. Records whose derived date is absent
// never match an active bound.
func (f DateFilter) matches(t time.Time) bool {
	if !f.active() {
		return true
	}
	v, b := civilDate(t), civilDate(f.Bound)
	switch f.Op {
	case OpAtOrAfter:
		return !v.Before(b)
	case OpAtOrBefore:
		return !v.After(b)
	}
	return true
}

// AmountFilter is a one-sided inclusive bound over a contract's derived total.
type AmountFilter struct {
	Op    RangeOp
	Bound float64
}

func (f AmountFilter) active() bool {
	return f.Op != OpNone
}

func (f AmountFilter) matches(total float64) bool {
	if !f.active() {
		return true
	}
	switch f.Op {
	case OpAtOrAfter:
		return total >= f.Bound
	case OpAtOrBefore:
		return total <= f.Bound
	}
	return true
}

// ReferenceMatcher decides whether a reply letter whose parent carries
// parentNumber answers a reference query. Pluggable so the lookup heuristic
// can tighten or loosen without touching the filter engine.
type ReferenceMatcher func(parentNumber, query string) bool

// MatchSubstring is the default matcher: case-insensitive containment of the
// query in the parent's number.
func MatchSubstring(parentNumber, query string) bool {
	return strings.Contains(strings.ToLower(parentNumber), strings.ToLower(query))
}

// MatchCorrelativeFallback first tries substring containment, then falls back
// to comparing bare correlatives so "123" still finds "00123-2024" typed as
// "123-2023" by someone misremembering the year.
func MatchCorrelativeFallback(parentNumber, query string) bool {
	if MatchSubstring(parentNumber, query) {
		return true
	}
	pc, pok := correlativeOf(parentNumber)
	qc, qok := correlativeOf(query)
	return pok && qok && pc == qc
}

// correlativeOf extracts the first 3 to 6 digit run as an integer, mirroring
// the number decomposition the server uses for ordering.
func correlativeOf(s string) (int, bool) {
	runStart, n := -1, 0
	flush := func(end int) (int, bool) {
		if n < 3 || n > 6 {
			return 0, false
		}
		v := 0
		for _, r := range s[runStart:end] {
			v = v*10 + int(r-'0')
		}
		return v, true
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if runStart < 0 {
				runStart = i
			}
			n++
			continue
		}
		if runStart >= 0 {
			if v, ok := flush(i); ok {
				return v, true
			}
			runStart, n = -1, 0
		}
	}
	if runStart >= 0 {
		return flush(len(s))
	}
	return 0, false
}

// Criteria is the conjunction of the active refinements over the current
// category's snapshot. Inactive members are identity filters, so the zero
// Criteria passes every well-formed record of the category through.
type Criteria struct {
	// Reference narrows sent letters to replies whose parent oficio's
	// number matches. Ignored for every other category.
	Reference string
	// Matcher overrides the reference heuristic. Nil means MatchSubstring.
	Matcher ReferenceMatcher

	// Equipment and Maintenance toggle contract types. Selecting both or
	// neither is the identity.
	Equipment   bool
	Maintenance bool

	// Counterparty narrows contracts to an exact counterparty name,
	// compared case-insensitively.
	Counterparty string

	// StartDate and EndDate bound the derived execution window endpoints.
	StartDate DateFilter
	EndDate   DateFilter

	// Amount bounds the derived contract total.
	Amount AmountFilter
}

func (c Criteria) matcher() ReferenceMatcher {
	if c.Matcher != nil {
		return c.Matcher
	}
	return MatchSubstring
}

// typeActive reports whether the contract-type toggles actually narrow
// anything.
func (c Criteria) typeActive() bool {
	return c.Equipment != c.Maintenance
}
