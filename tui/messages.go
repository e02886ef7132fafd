package tui

import (
	"github.com/elisa-rivadeneira/gestor-documentario/browse"
)

// SnapshotMsg carries a finished fetch back to the update loop, where the
// controller decides whether it is still current.
type SnapshotMsg struct {
	Result *browse.FetchResult
}

// UserMsg indicates the viewer's identity was refreshed.
type UserMsg struct{}

// ExportedMsg indicates a CSV export finished.
type ExportedMsg struct {
	Path string
	Rows int
}

// ErrorMsg represents a failed command.
type ErrorMsg struct {
	Err error
}
