// Package tui is the terminal presentation layer for the registry browser.
// It binds the row descriptors the browse engine renders to a tabbed table
// and never reaches into the snapshot directly: all state changes flow
// through the controller inside the update loop.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/elisa-rivadeneira/gestor-documentario/browse"
)

// Model is the bubbletea application state. The browse controller is owned
// by the update loop; commands only execute fetches and hand results back as
// messages.
type Model struct {
	ctrl *browse.Controller

	search    textinput.Model
	searching bool

	width  int
	height int
	cursor int

	status string
	err    error
}

// NewModel wires the browser around a controller.
func NewModel(ctrl *browse.Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "Buscar..."
	ti.CharLimit = 120
	return Model{ctrl: ctrl, search: ti}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshUser(), m.fetch())
}

// fetch snapshots the controller's current fetch parameters inside the
// update loop and performs the network round trip in a command.
func (m Model) fetch() tea.Cmd {
	f := m.ctrl.BeginFetch()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := m.ctrl.Execute(ctx, f)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return SnapshotMsg{Result: result}
	}
}

func (m Model) refreshUser() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.ctrl.RefreshUser(ctx); err != nil {
			return ErrorMsg{Err: err}
		}
		return UserMsg{}
	}
}

func (m Model) export() tea.Cmd {
	view := m.ctrl.View()
	numbers := m.ctrl.Snapshot().Numbers
	name := fmt.Sprintf("export_%s_%s.csv", m.ctrl.Category(), time.Now().Format("20060102_150405"))
	return func() tea.Msg {
		f, err := os.Create(name)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("create export file: %w", err)}
		}
		defer f.Close()
		if err := browse.ExportCSV(f, &view, numbers); err != nil {
			return ErrorMsg{Err: err}
		}
		return ExportedMsg{Path: name, Rows: view.Len()}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = msg.Width - 10

	case SnapshotMsg:
		if m.ctrl.Apply(msg.Result) {
			m.cursor = 0
			m.status = fmt.Sprintf("%d registros", m.ctrl.View().Len())
			m.err = nil
		}

	case UserMsg:
		if u := m.ctrl.User(); u != nil {
			m.status = "Sesión de " + u.Name
		}

	case ExportedMsg:
		m.status = fmt.Sprintf("Exportado %d filas a %s", msg.Rows, msg.Path)

	case ErrorMsg:
		m.err = msg.Err
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter:
			m.searching = false
			m.search.Blur()
			m.ctrl.SetSearch(strings.TrimSpace(m.search.Value()))
			return m, m.fetch()
		case tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		if idx < len(browse.Categories) {
			m.ctrl.SetCategory(browse.Categories[idx])
			m.search.SetValue("")
			m.cursor = 0
			return m, m.fetch()
		}

	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink

	case "left", "h":
		m.ctrl.PrevPage()
		m.cursor = 0

	case "right", "l":
		m.ctrl.NextPage()
		m.cursor = 0

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.ctrl.Rows())-1 {
			m.cursor++
		}

	case "r":
		return m, m.fetch()

	case "e":
		return m, m.export()
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Gestor Documentario"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.search.View())
	} else if m.ctrl.Search() != "" {
		b.WriteString(StatusStyle.Render("Búsqueda: " + m.ctrl.Search()))
	}
	b.WriteString("\n")

	b.WriteString(TableStyle.Render(m.renderTable()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(browse.Categories))
	for i, cat := range browse.Categories {
		label := fmt.Sprintf("%d %s", i+1, cat.Label())
		if cat == m.ctrl.Category() {
			tabs = append(tabs, ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderTable() string {
	cols := browse.Columns(m.ctrl.Category())
	widths := columnWidths(m.ctrl.Category(), m.width)

	var b strings.Builder
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = pad(c.Title, widths[i])
	}
	b.WriteString(HeaderRowStyle.Render(strings.Join(cells, " ")))
	b.WriteString("\n")

	rows := m.ctrl.Rows()
	if len(rows) == 0 {
		b.WriteString(StatusStyle.Render("Sin registros"))
		return b.String()
	}
	for i, row := range rows {
		rowCells := make([]string, len(row.Values))
		for j, v := range row.Values {
			w := 20
			if j < len(widths) {
				w = widths[j]
			}
			rowCells[j] = pad(v, w)
		}
		line := strings.Join(rowCells, " ")
		if i == m.cursor {
			b.WriteString(SelectedRowStyle.Render(line))
		} else {
			b.WriteString(RowStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderFooter() string {
	total := m.ctrl.TotalPages()
	page := fmt.Sprintf("Página %d/%d", m.ctrl.Page(), max(total, 1))
	help := "1-4 pestaña  / buscar  ←/→ página  r recargar  e exportar  q salir"
	footer := StatusStyle.Render(page + "  " + help)
	if m.status != "" {
		footer += "\n" + StatusStyle.Render(m.status)
	}
	if m.err != nil {
		footer += "\n" + ErrorStyle.Render("Error: "+m.err.Error())
	}
	return footer
}

// columnWidths spreads the terminal width across the category's columns,
// giving text-heavy columns the spare room.
func columnWidths(cat browse.Category, total int) []int {
	cols := browse.Columns(cat)
	widths := make([]int, len(cols))
	used := 0
	for i, c := range cols {
		switch c.Key {
		case "seq":
			widths[i] = 4
		case "number", "reference":
			widths[i] = 14
		case "date", "start", "end":
			widths[i] = 12
		case "total":
			widths[i] = 14
		case "type":
			widths[i] = 14
		default:
			widths[i] = 20
		}
		used += widths[i] + 1
	}
	if total > used {
		spare := total - used - 4
		for i, c := range cols {
			if c.Key == "subject" || c.Key == "summary" || c.Key == "item" {
				widths[i] += spare / 2
			}
		}
	}
	return widths
}

func pad(s string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}
