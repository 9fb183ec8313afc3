package main

import (
	"fmt"
	"io"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const dateLayout = "2006-01-02"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(nothing to show)"))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.String())
}

func transactionRows(txns []models.Transaction) [][]string {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			t.ID.String(),
			t.Date.Format(dateLayout),
			string(t.Type),
			t.Amount.StringFixed(2),
			t.Category,
			t.Description,
		})
	}
	return rows
}

func inputRows(inputs []models.TransactionInput) [][]string {
	rows := make([][]string, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, []string{
			deref(in.Date),
			deref(in.Type),
			in.Amount.StringFixed(2),
			deref(in.Category),
			deref(in.Description),
		})
	}
	return rows
}

func assetRows(assets []models.Asset) [][]string {
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{a.ID.String(), a.Value.StringFixed(2), a.Description, a.CreatedAt.Format(dateLayout)})
	}
	return rows
}

func liabilityRows(liabilities []models.Liability) [][]string {
	rows := make([][]string, 0, len(liabilities))
	for _, l := range liabilities {
		rows = append(rows, []string{l.ID.String(), l.Amount.StringFixed(2), l.Description, l.CreatedAt.Format(dateLayout)})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
