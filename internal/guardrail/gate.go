// Package guardrail implements the debt-to-income compliance gate.
package guardrail

import (
	"math"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
)

// Gate decides whether an offer may be dispatched.
// The threshold is fixed at construction so every call site shares one value.
type Gate struct {
	threshold float64
}

// NewGate creates a gate for the deployment threshold.
func NewGate(threshold float64) *Gate {
	return &Gate{threshold: threshold}
}

// Threshold returns the configured DTI threshold.
func (g *Gate) Threshold() float64 {
	return g.threshold
}

// Evaluate gates the ratio against the configured threshold.
func (g *Gate) Evaluate(ratio float64) (model.GuardrailVerdict, error) {
	return Evaluate(ratio, g.threshold)
}

// Evaluate returns PASS when ratio is strictly below threshold, ALERT otherwise.
// A negative or NaN ratio is a caller bug and is rejected.
func Evaluate(ratio, threshold float64) (model.GuardrailVerdict, error) {
	if math.IsNaN(ratio) || ratio < 0 {
		return model.GuardrailVerdict{}, common.GuardrailPreconditionf("DTI ratio %v must be a non-negative number", ratio)
	}

	status := model.GuardrailAlert
	if ratio < threshold {
		status = model.GuardrailPass
	}

	return model.GuardrailVerdict{
		Status:    status,
		Ratio:     ratio,
		Threshold: threshold,
	}, nil
}

// Ratio derives a DTI ratio from a proposed obligation and the customer's income.
func Ratio(obligation, income decimal.Decimal) (float64, error) {
	if obligation.IsNegative() {
		return 0, common.InvalidInputf("obligation %s is negative", obligation)
	}
	if !income.IsPositive() {
		return 0, common.InvalidInputf("income %s must be positive to derive a DTI ratio", income)
	}

	ratio, _ := obligation.Div(income).Float64()
	return ratio, nil
}
