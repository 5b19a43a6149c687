package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...)

	for _, row := range rows {
		t.Row(row...)
	}

	return t.String()
}

// ResultColumnStatus is the column RenderResultTable colours by value.
const ResultColumnStatus = 2

// RenderResultTable renders one line per script row: index, row, status
// and detail.
func RenderResultTable(rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("#", "ROW", "STATUS", "DETAIL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(Primary)
			}
			if col == ResultColumnStatus && row >= 0 && row < len(rows) {
				return StatusStyle(rows[row][col])
			}
			return lipgloss.Style{}
		})

	for _, row := range rows {
		t.Row(row...)
	}

	return fmt.Sprintf("\n%s\n", t.String())
}
