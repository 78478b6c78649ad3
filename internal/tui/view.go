package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Column widths for the artwork table.
const (
	titleWidth  = 38
	artistWidth = 28
	originWidth = 16
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// newArtworkTable builds the bubbles table with the artwork columns.
func newArtworkTable(rows []table.Row) table.Model {
	columns := []table.Column{
		{Title: " ", Width: 1},
		{Title: "ID", Width: 7},
		{Title: "Title", Width: titleWidth},
		{Title: "Artist", Width: artistWidth},
		{Title: "Origin", Width: originWidth},
		{Title: "Date", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return t
}

// tableHeight fits the table under the chrome.
func (m Model) tableHeight() int {
	h := m.height - 8
	if h < 4 {
		h = 4
	}
	return h
}

// View renders the grid.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("articgrid"))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.inputOpen {
		b.WriteString(inputStyle.Render("select rows: " + m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.banner())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→ page · space toggle · s bulk select · c clear · q quit"))
	b.WriteString("\n")

	return b.String()
}

// banner renders selection and pagination status.
func (m Model) banner() string {
	var parts []string

	totalPages := 0
	if m.cursor.PageSize > 0 {
		totalPages = (m.cursor.Total + m.cursor.PageSize - 1) / m.cursor.PageSize
	}
	parts = append(parts, fmt.Sprintf("page %d/%d · %d artworks",
		m.cursor.CurrentPage, totalPages, m.cursor.Total))

	if n := len(m.session.Selection()); n > 0 {
		parts = append(parts, bannerStyle.Render(fmt.Sprintf("%d selected", n)))
	}
	if m.loading {
		parts = append(parts, warnStyle.Render("loading…"))
	}
	if m.status != "" {
		parts = append(parts, warnStyle.Render(m.status))
	}

	return strings.Join(parts, "  ·  ")
}
