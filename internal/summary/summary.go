// Package summary computes the dashboard figures from a user's records.
package summary

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain"
	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

// ParseMonth validates a YYYY-MM filter. An empty month means all time.
func ParseMonth(month string) (string, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return "", nil
	}
	if _, err := time.Parse(monthLayout, month); err != nil {
		return "", fmt.Errorf("%w: invalid month %q, expected YYYY-MM", domain.ErrInvalidRequest, month)
	}
	return month, nil
}

// Compute totals income and expenses of the transactions dated in month
// (all of them when month is empty) and nets assets against liabilities.
// The monthly series always covers every transaction.
func Compute(txns []models.Transaction, assets []models.Asset, liabilities []models.Liability, month string) (*models.Summary, error) {
	month, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}

	s := &models.Summary{
		Month:            month,
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
	}

	expenses := make(map[string]decimal.Decimal)
	income := make(map[string]decimal.Decimal)
	monthly := make(map[string]*models.MonthlyTotal)

	for _, t := range txns {
		m := t.Date.UTC().Format(monthLayout)
		mt, ok := monthly[m]
		if !ok {
			mt = &models.MonthlyTotal{Month: m, Income: decimal.Zero, Expenses: decimal.Zero}
			monthly[m] = mt
		}

		switch t.Type {
		case models.TransactionIncome:
			mt.Income = mt.Income.Add(t.Amount)
		case models.TransactionExpense:
			mt.Expenses = mt.Expenses.Add(t.Amount)
		}

		if month != "" && m != month {
			continue
		}

		switch t.Type {
		case models.TransactionIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			income[t.Category] = income[t.Category].Add(t.Amount)
		case models.TransactionExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			expenses[t.Category] = expenses[t.Category].Add(t.Amount)
		}
	}

	for _, a := range assets {
		s.TotalAssets = s.TotalAssets.Add(a.Value)
	}
	for _, l := range liabilities {
		s.TotalLiabilities = s.TotalLiabilities.Add(l.Amount)
	}
	s.NetWorth = s.TotalAssets.Sub(s.TotalLiabilities)

	s.ExpensesByCategory = byCategory(expenses)
	s.IncomeByCategory = byCategory(income)

	s.Monthly = make([]models.MonthlyTotal, 0, len(monthly))
	for _, mt := range monthly {
		s.Monthly = append(s.Monthly, *mt)
	}
	slices.SortFunc(s.Monthly, func(a, b models.MonthlyTotal) int {
		return strings.Compare(a.Month, b.Month)
	})

	return s, nil
}

func byCategory(totals map[string]decimal.Decimal) []models.CategoryTotal {
	out := make([]models.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, models.CategoryTotal{Category: category, Total: total})
	}
	slices.SortFunc(out, func(a, b models.CategoryTotal) int {
		return strings.Compare(a.Category, b.Category)
	})
	return out
}
