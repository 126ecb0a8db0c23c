package model

import "github.com/shopspring/decimal"

// RiskLevel is the coarse spending risk derived from total spend.
type RiskLevel string

// Risk level constants.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Insights is the behavioural summary of one transaction batch.
// It is recomputed on every call and carries no state between calls.
type Insights struct {
	CategoryCounts     map[Category]int `json:"category_counts,omitempty" yaml:"category_counts,omitempty"`
	TotalSpend         decimal.Decimal  `json:"total_spend" yaml:"total_spend"`
	AvgTransaction     decimal.Decimal  `json:"avg_transaction" yaml:"avg_transaction"`
	SalaryInflow       decimal.Decimal  `json:"salary_inflow" yaml:"salary_inflow"`
	RiskLevel          RiskLevel        `json:"risk_level" yaml:"risk_level"`
	StabilityScore     float64          `json:"stability_score" yaml:"stability_score"`
	TravelFrequency    int              `json:"travel_frequency" yaml:"travel_frequency"`
	SalaryDetected     bool             `json:"salary_detected" yaml:"salary_detected"`
	InvestmentInterest bool             `json:"investment_interest" yaml:"investment_interest"`
	HighSpender        bool             `json:"high_spender" yaml:"high_spender"`
	Saver              bool             `json:"saver" yaml:"saver"`
}

// Count returns how many transactions fell into category c.
func (i Insights) Count(c Category) int {
	return i.CategoryCounts[c]
}

// Outflow is everything that was not salary.
func (i Insights) Outflow() decimal.Decimal {
	return i.TotalSpend.Sub(i.SalaryInflow)
}

// Balance is the salary inflow left after every other outflow.
// It is negative for customers with spending but no salary.
func (i Insights) Balance() decimal.Decimal {
	return i.SalaryInflow.Sub(i.Outflow())
}

// LowBalance reports whether Balance falls below floor.
func (i Insights) LowBalance(floor decimal.Decimal) bool {
	return i.Balance().LessThan(floor)
}
