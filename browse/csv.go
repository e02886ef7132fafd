package browse

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportCSV writes the whole filtered view as CSV, one header row of column
// titles followed by every record regardless of the current page. Action
// flags are display state and are not exported.
func ExportCSV(w io.Writer, view *View, numbers map[int64]string) error {
	cw := csv.NewWriter(w)
	cols := Columns(view.Category)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Title
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Render(view, 0, false, numbers) {
		if err := cw.Write(row.Values); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
