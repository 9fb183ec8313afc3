package main

import (
	"fmt"
	"io"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))

func summaryCmd(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals and net worth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			s := a.client.Summary(cmd.Context(), month)
			if s == nil {
				return fmt.Errorf("failed to load summary")
			}
			renderSummary(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "limit income and expenses to one month (YYYY-MM)")

	return cmd
}

func renderSummary(w io.Writer, s *models.Summary) {
	period := "All time"
	if s.Month != "" {
		period = s.Month
	}
	fmt.Fprintln(w, titleStyle.Render(period))

	renderTable(w, []string{"", "Total"}, [][]string{
		{"Income", s.TotalIncome.StringFixed(2)},
		{"Expenses", s.TotalExpenses.StringFixed(2)},
		{"Assets", s.TotalAssets.StringFixed(2)},
		{"Liabilities", s.TotalLiabilities.StringFixed(2)},
		{"Net worth", s.NetWorth.StringFixed(2)},
	})

	if len(s.ExpensesByCategory) > 0 {
		fmt.Fprintln(w, titleStyle.Render("Expenses by category"))
		rows := make([][]string, 0, len(s.ExpensesByCategory))
		for _, c := range s.ExpensesByCategory {
			rows = append(rows, []string{c.Category, c.Total.StringFixed(2)})
		}
		renderTable(w, []string{"Category", "Total"}, rows)
	}

	if len(s.Monthly) > 0 {
		fmt.Fprintln(w, titleStyle.Render("By month"))
		rows := make([][]string, 0, len(s.Monthly))
		for _, m := range s.Monthly {
			rows = append(rows, []string{m.Month, m.Income.StringFixed(2), m.Expenses.StringFixed(2)})
		}
		renderTable(w, []string{"Month", "Income", "Expenses"}, rows)
	}
}
