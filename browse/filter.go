package browse

import (
	"strings"

	"github.com/elisa-rivadeneira/gestor-documentario/model"
)

// Snapshot is the last-fetched record store for one category. It is replaced
// wholesale on every category switch or search and never mutated in place;
// edits go through the backend and the snapshot is refetched.
type Snapshot struct {
	Category  Category
	Documents []model.DocumentRecord
	Contracts []model.ContractRecord
	// Numbers is the side-loaded id to display-number lookup used by the
	// reference filter and the reference column.
	Numbers map[int64]string
}

// Len is the number of records held, whichever kind the category carries.
func (s Snapshot) Len() int {
	if s.Category.IsContracts() {
		return len(s.Contracts)
	}
	return len(s.Documents)
}

// View is an ordered filtered projection of a Snapshot. Input order is
// preserved; ordering itself is a server-side concern.
type View struct {
	Category  Category
	Documents []model.DocumentRecord
	Contracts []model.ContractRecord
}

// Len is the number of records in the view.
func (v View) Len() int {
	if v.Category.IsContracts() {
		return len(v.Contracts)
	}
	return len(v.Documents)
}

// Filter applies the conjunction of the active criteria to the snapshot.
// Records that violate the category's composite key or carry impossible
// field combinations are excluded rather than aborting the pass, preferring
// partial results over a dead table.
func Filter(snap *Snapshot, crit Criteria) View {
	view := View{Category: snap.Category}
	if snap.Category.IsContracts() {
		view.Contracts = make([]model.ContractRecord, 0, len(snap.Contracts))
		for _, rec := range snap.Contracts {
			if contractMatches(&rec, crit) {
				view.Contracts = append(view.Contracts, rec)
			}
		}
		return view
	}
	view.Documents = make([]model.DocumentRecord, 0, len(snap.Documents))
	for _, rec := range snap.Documents {
		if documentMatches(&rec, snap.Category, crit, snap.Numbers) {
			view.Documents = append(view.Documents, rec)
		}
	}
	return view
}

func documentMatches(d *model.DocumentRecord, cat Category, crit Criteria, numbers map[int64]string) bool {
	kind, direction, ok := cat.DocumentKey()
	if !ok || d.Kind != kind || d.Direction != direction {
		return false
	}
	if crit.Reference != "" && cat == CategorySentLetters {
		if d.ParentID == nil {
			return false
		}
		if !crit.matcher()(numbers[*d.ParentID], crit.Reference) {
			return false
		}
	}
	return true
}

func contractMatches(c *model.ContractRecord, crit Criteria) bool {
	switch c.ContractType {
	case model.ContractEquipment, model.ContractMaintenance:
	default:
		return false
	}
	if crit.typeActive() {
		want := model.ContractEquipment
		if crit.Maintenance {
			want = model.ContractMaintenance
		}
		if c.ContractType != want {
			return false
		}
	}
	if crit.Counterparty != "" && !strings.EqualFold(c.CounterpartyName, crit.Counterparty) {
		return false
	}
	if crit.StartDate.active() || crit.EndDate.active() {
		term, ok := TermOf(c)
		if !ok {
			return false
		}
		if !crit.StartDate.matches(term.Start) || !crit.EndDate.matches(term.End) {
			return false
		}
	}
	if crit.Amount.active() {
		total, ok := c.TotalAmount()
		if !ok {
			return false
		}
		if !crit.Amount.matches(total) {
			return false
		}
	}
	return true
}

// Counterparties lists the distinct counterparty names present in the
// snapshot, in first-seen order, for populating the selector.
func Counterparties(snap *Snapshot) []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range snap.Contracts {
		if c.CounterpartyName == "" || seen[strings.ToLower(c.CounterpartyName)] {
			continue
		}
		seen[strings.ToLower(c.CounterpartyName)] = true
		names = append(names, c.CounterpartyName)
	}
	return names
}
