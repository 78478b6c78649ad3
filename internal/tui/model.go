// Package tui provides the terminal presentation layer over a grid
// session: the artwork table, pagination keys, manual row toggling, and
// the bulk-select input. It consumes only the Session surface and never
// reaches into the page cache.
package tui

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/articgrid/articgrid/pkg/catalog"
	"github.com/articgrid/articgrid/pkg/grid"
)

// pageTimeout bounds a single interactive page load.
const pageTimeout = 30 * time.Second

// bulkTimeout bounds a whole bulk selection.
const bulkTimeout = 2 * time.Minute

// PageLoadedMsg is sent when a page fetch completes.
type PageLoadedMsg struct {
	Page   catalog.Page
	Cursor grid.Cursor
}

// BulkDoneMsg is sent when a bulk selection completes.
type BulkDoneMsg struct {
	Selected int
	Partial  bool
	Rejected bool
}

// Model is the Bubble Tea model for the artwork grid.
type Model struct {
	session *grid.Session

	table table.Model
	input textinput.Model

	page      catalog.Page
	cursor    grid.Cursor
	selected  map[string]bool
	inputOpen bool
	loading   bool
	status    string

	width  int
	height int
}

// New creates a Model over the given session.
func New(session *grid.Session) Model {
	input := textinput.New()
	input.Placeholder = "rows to select"
	input.CharLimit = 7
	input.Width = 16

	return Model{
		session:  session,
		table:    newArtworkTable(nil),
		input:    input,
		selected: make(map[string]bool),
		loading:  true,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.loadPage(1)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case PageLoadedMsg:
		m.loading = false
		m.page = msg.Page
		m.cursor = msg.Cursor
		m.refreshRows()
		return m, nil

	case BulkDoneMsg:
		m.loading = false
		m.syncSelected()
		m.refreshRows()
		switch {
		case msg.Rejected:
			m.status = "a bulk selection is already running"
		case msg.Partial:
			m.status = "selected " + strconv.Itoa(msg.Selected) + " rows (some pages failed)"
		default:
			m.status = "selected " + strconv.Itoa(msg.Selected) + " rows"
		}
		return m, nil

	case tea.KeyMsg:
		if m.inputOpen {
			return m.updateInput(msg)
		}
		return m.updateTable(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateInput handles keys while the bulk-count input is open.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputOpen = false
		m.input.Reset()
		return m, nil

	case "enter":
		count, err := strconv.Atoi(m.input.Value())
		m.inputOpen = false
		m.input.Reset()
		if err != nil || count <= 0 {
			m.status = "enter a positive row count"
			return m, nil
		}
		m.loading = true
		m.status = ""
		return m, m.runBulkSelect(count)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateTable handles navigation and selection keys.
func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "left", "h":
		if m.cursor.CurrentPage > 1 && !m.loading {
			m.loading = true
			return m, m.loadPage(m.cursor.CurrentPage - 1)
		}
		return m, nil

	case "right", "l":
		if !m.loading {
			m.loading = true
			return m, m.loadPage(m.cursor.CurrentPage + 1)
		}
		return m, nil

	case " ", "space":
		m.toggleRow()
		m.refreshRows()
		return m, nil

	case "s":
		if m.session.Busy() {
			m.status = "a bulk selection is already running"
			return m, nil
		}
		m.inputOpen = true
		m.status = ""
		return m, m.input.Focus()

	case "c":
		m.session.SetSelection(nil)
		m.syncSelected()
		m.refreshRows()
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// loadPage returns a command that navigates the session to a page.
func (m Model) loadPage(page int) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		// A fetch failure degrades to an empty page; the grid stays usable.
		p, _ := session.SetPage(ctx, page)
		return PageLoadedMsg{Page: p, Cursor: session.Cursor()}
	}
}

// runBulkSelect returns a command that performs a bulk selection from the
// current page.
func (m Model) runBulkSelect(count int) tea.Cmd {
	session := m.session
	fromPage := m.cursor.CurrentPage
	if fromPage < 1 {
		fromPage = 1
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), bulkTimeout)
		defer cancel()

		selected, err := session.BulkSelect(ctx, count, fromPage)
		msg := BulkDoneMsg{Selected: len(selected)}
		switch {
		case errors.Is(err, grid.ErrBusy):
			msg.Rejected = true
		case errors.Is(err, grid.ErrPartialSelection):
			msg.Partial = true
		}
		return msg
	}
}

// toggleRow flips the highlighted row in the selection.
func (m *Model) toggleRow() {
	row := m.table.Cursor()
	if row < 0 || row >= m.page.Len() {
		return
	}
	record := m.page.Records[row]

	selection := m.session.Selection()
	if m.selected[record.ID] {
		kept := selection[:0]
		for _, r := range selection {
			if r.ID != record.ID {
				kept = append(kept, r)
			}
		}
		selection = kept
	} else {
		selection = append(selection, record)
	}
	m.session.SetSelection(selection)
	m.syncSelected()
}

// syncSelected rebuilds the ID lookup from the session selection.
func (m *Model) syncSelected() {
	m.selected = make(map[string]bool)
	for _, r := range m.session.Selection() {
		m.selected[r.ID] = true
	}
}

// refreshRows rebuilds the table rows for the current page.
func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, m.page.Len())
	for _, r := range m.page.Records {
		mark := " "
		if m.selected[r.ID] {
			mark = "x"
		}
		rows = append(rows, table.Row{
			mark,
			r.ID,
			truncate(r.Title, titleWidth),
			truncate(r.Artist, artistWidth),
			truncate(r.Origin, originWidth),
			yearRange(r),
		})
	}
	m.table.SetRows(rows)
}

// yearRange renders the optional production year range.
func yearRange(r catalog.Record) string {
	if r.DateStart == nil && r.DateEnd == nil {
		return "-"
	}
	start, end := "?", "?"
	if r.DateStart != nil {
		start = strconv.Itoa(*r.DateStart)
	}
	if r.DateEnd != nil {
		end = strconv.Itoa(*r.DateEnd)
	}
	if start == end {
		return start
	}
	return start + "-" + end
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}
