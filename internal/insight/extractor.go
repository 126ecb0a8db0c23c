// Package insight reduces a customer's transaction history into behavioural insights.
package insight

import (
	"math"

	"github.com/Veraticus/finpulse/internal/config"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
)

// Stability score terms.
const (
	maxIncomeTerm   = 0.5
	salaryTerm      = 0.3
	consistencyTerm = 0.2
)

// Extractor derives Insights from transactions using a fixed policy.
type Extractor struct {
	highSpend  decimal.Decimal
	saver      decimal.Decimal
	avgCeiling decimal.Decimal
	normalizer float64
	monthly    bool
}

// NewExtractor creates an extractor for the given policy.
func NewExtractor(policy config.Policy) *Extractor {
	return &Extractor{
		highSpend:  decimal.NewFromFloat(policy.HighSpendThreshold),
		saver:      decimal.NewFromFloat(policy.SaverThreshold),
		avgCeiling: decimal.NewFromFloat(policy.AvgTransactionCeiling),
		normalizer: policy.IncomeNormalizer,
		monthly:    policy.IncomeUnit == model.IncomeMonthly,
	}
}

// Extract computes the insights for one transaction batch.
// Inputs are assumed to have passed Validate.
func (e *Extractor) Extract(transactions []model.Transaction, profile model.Profile) model.Insights {
	insights := model.Insights{
		TotalSpend:     decimal.Zero,
		AvgTransaction: decimal.Zero,
		SalaryInflow:   decimal.Zero,
		RiskLevel:      model.RiskLow,
	}

	if len(transactions) == 0 {
		insights.StabilityScore = clamp01(e.incomeTerm(profile.Income))
		return insights
	}

	insights.CategoryCounts = make(map[model.Category]int)
	for _, txn := range transactions {
		insights.TotalSpend = insights.TotalSpend.Add(txn.Amount)
		category := txn.Category
		if category == "" {
			category = model.CategoryOther
		}
		insights.CategoryCounts[category]++

		switch category {
		case model.CategorySalary:
			insights.SalaryDetected = true
			insights.SalaryInflow = insights.SalaryInflow.Add(txn.Amount)
		case model.CategoryTravel:
			insights.TravelFrequency++
		case model.CategoryInvestment:
			insights.InvestmentInterest = true
		}
	}

	insights.AvgTransaction = insights.TotalSpend.Div(decimal.NewFromInt(int64(len(transactions))))

	// The saver check runs second and wins if tuned thresholds ever overlap.
	if insights.TotalSpend.GreaterThan(e.highSpend) {
		insights.HighSpender = true
		insights.RiskLevel = model.RiskMedium
	}
	if insights.TotalSpend.LessThan(e.saver) {
		insights.Saver = true
		insights.RiskLevel = model.RiskLow
	}

	stability := e.incomeTerm(profile.Income)
	if insights.SalaryDetected {
		stability += salaryTerm
	}
	if insights.AvgTransaction.IsPositive() && insights.AvgTransaction.LessThan(e.avgCeiling) {
		stability += consistencyTerm
	}
	insights.StabilityScore = clamp01(stability)

	return insights
}

func (e *Extractor) incomeTerm(income decimal.Decimal) float64 {
	annual, _ := income.Float64()
	if e.monthly {
		annual *= 12
	}
	if annual <= 0 || e.normalizer <= 0 {
		return 0
	}
	return math.Min(annual/e.normalizer, maxIncomeTerm)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, 1))
}
