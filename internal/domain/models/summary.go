package models

import "github.com/shopspring/decimal"

// Summary is the dashboard view of a user's finances.
type Summary struct {
	Month              string          `json:"month,omitempty"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	TotalAssets        decimal.Decimal `json:"total_assets"`
	TotalLiabilities   decimal.Decimal `json:"total_liabilities"`
	NetWorth           decimal.Decimal `json:"net_worth"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
	IncomeByCategory   []CategoryTotal `json:"income_by_category"`
	Monthly            []MonthlyTotal  `json:"monthly"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type MonthlyTotal struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}
