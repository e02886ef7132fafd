// Package browse implements the client-side engine behind the tabular
// document and contract browser: an in-memory record snapshot, composable
// filters, derived contract terms, a pure pager and a renderer that projects
// rows for any presentation layer to bind.
package browse

import (
	"github.com/elisa-rivadeneira/gestor-documentario/model"
)

// Category identifies one tab of the browser. Document categories pin a
// (kind, direction) pair as a single composite key: the UI taxonomy fixes
// oficios as received and splits letters by direction, so the two fields are
// never filtered independently. Contracts share one tab and are narrowed by
// the type toggles in Criteria.
type Category string

const (
	CategoryOficios         Category = "oficios"
	CategorySentLetters     Category = "cartas-enviadas"
	CategoryReceivedLetters Category = "cartas-recibidas"
	CategoryContracts       Category = "contratos"
)

// Categories in tab order.
var Categories = []Category{
	CategoryOficios,
	CategorySentLetters,
	CategoryReceivedLetters,
	CategoryContracts,
}

// IsContracts reports whether the category browses contracts rather than
// documents.
func (c Category) IsContracts() bool {
	return c == CategoryContracts
}

// DocumentKey returns the composite (kind, direction) filter key for a
// document category.
func (c Category) DocumentKey() (kind, direction string, ok bool) {
	switch c {
	case CategoryOficios:
		return model.KindOficio, model.DirectionReceived, true
	case CategorySentLetters:
		return model.KindCarta, model.DirectionSent, true
	case CategoryReceivedLetters:
		return model.KindCarta, model.DirectionReceived, true
	}
	return "", "", false
}

// SortBy is the server-side ordering signal sent with the fetch: registry
// ledgers are read by number, contract books by date.
func (c Category) SortBy() string {
	if c.IsContracts() {
		return "fecha"
	}
	return "numero"
}

// Label is the category's display title.
func (c Category) Label() string {
	switch c {
	case CategoryOficios:
		return "Oficios recibidos"
	case CategorySentLetters:
		return "Cartas enviadas"
	case CategoryReceivedLetters:
		return "Cartas recibidas"
	case CategoryContracts:
		return "Contratos"
	}
	return string(c)
}
