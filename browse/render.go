package browse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/elisa-rivadeneira/gestor-documentario/model"
)

// Column describes one table column of a category.
type Column struct {
	Key   string
	Title string
}

// Row is a display-ready record projection. Values aligns with the
// category's Columns.
type Row struct {
	ID             int64
	Seq            int
	Values         []string
	ActionsVisible bool
}

// Columns returns the column set for a category. Sent letters carry an extra
// reference column pointing at the oficio they answer.
func Columns(cat Category) []Column {
	if cat.IsContracts() {
		return []Column{
			{Key: "seq", Title: "#"},
			{Key: "number", Title: "N° Contrato"},
			{Key: "type", Title: "Tipo"},
			{Key: "counterparty", Title: "Contratista"},
			{Key: "item", Title: "Objeto"},
			{Key: "total", Title: "Monto"},
			{Key: "start", Title: "Inicio"},
			{Key: "end", Title: "Fin"},
		}
	}
	cols := []Column{
		{Key: "seq", Title: "#"},
		{Key: "number", Title: "Número"},
	}
	if cat == CategorySentLetters {
		cols = append(cols, Column{Key: "reference", Title: "Referencia"})
	}
	return append(cols,
		Column{Key: "date", Title: "Fecha"},
		Column{Key: "party", Title: partyTitle(cat)},
		Column{Key: "subject", Title: "Asunto"},
		Column{Key: "summary", Title: "Resumen"},
	)
}

func partyTitle(cat Category) string {
	if cat == CategorySentLetters {
		return "Destinatario"
	}
	return "Remitente"
}

// Render projects an already-paged view into row descriptors. offset is the
// pager's record offset so sequence numbers stay 1-based and continuous
// across pages. authorized gates the visibility of destructive actions; it
// is display policy only, enforcement lives server-side.
func Render(page *View, offset int, authorized bool, numbers map[int64]string) []Row {
	if page.Category.IsContracts() {
		rows := make([]Row, 0, len(page.Contracts))
		for i, c := range page.Contracts {
			rows = append(rows, contractRow(&c, offset+i+1, authorized))
		}
		return rows
	}
	rows := make([]Row, 0, len(page.Documents))
	for i, d := range page.Documents {
		rows = append(rows, documentRow(&d, page.Category, offset+i+1, authorized, numbers))
	}
	return rows
}

func documentRow(d *model.DocumentRecord, cat Category, seq int, authorized bool, numbers map[int64]string) Row {
	values := []string{strconv.Itoa(seq), orDash(d.Number)}
	if cat == CategorySentLetters {
		values = append(values, orDash(ParentNumber(d, numbers)))
	}
	party := d.Sender
	if cat == CategorySentLetters {
		party = d.Recipient
	}
	values = append(values,
		FormatDate(d.Date),
		Capitalize(orDash(party)),
		orDash(d.Subject),
		truncate(d.Summary, 100),
	)
	return Row{ID: d.ID, Seq: seq, Values: values, ActionsVisible: authorized}
}

func contractRow(c *model.ContractRecord, seq int, authorized bool) Row {
	total := "-"
	if v, ok := c.TotalAmount(); ok {
		total = FormatMoney(v)
	}
	start, end := "-", "-"
	if term, ok := TermOf(c); ok {
		start, end = FormatDate(&term.Start), FormatDate(&term.End)
	}
	return Row{
		ID:  c.ID,
		Seq: seq,
		Values: []string{
			strconv.Itoa(seq),
			orDash(c.Number),
			typeLabel(c.ContractType),
			Capitalize(orDash(c.CounterpartyName)),
			truncate(c.ContractedItem, 60),
			total,
			start,
			end,
		},
		ActionsVisible: authorized,
	}
}

func typeLabel(contractType string) string {
	switch contractType {
	case model.ContractEquipment:
		return "Equipamiento"
	case model.ContractMaintenance:
		return "Mantenimiento"
	}
	return "-"
}

var spanishMonths = [12]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

// FormatDate renders a civil date as "02 ene 2024", or "-" when absent.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// FormatMoney renders an amount in soles with thousands separators,
// e.g. "S/ 1,234.56".
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return "S/ " + sign + b.String() + "." + frac
}

// Capitalize upper-cases the first letter, leaving the rest as typed.
func Capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
