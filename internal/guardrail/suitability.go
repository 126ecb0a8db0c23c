package guardrail

import (
	"fmt"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
)

// Suitability replaces products that do not fit a customer's balance.
// A low balance rules out loans and investment plans. When the customer is paid
// but still spends past the floor, revolving credit is ruled out as well.
type Suitability struct {
	floor       decimal.Decimal
	safeProduct string
}

// NewSuitability creates a suitability check. safeProduct must not be gated.
func NewSuitability(floor decimal.Decimal, safeProduct string) *Suitability {
	return &Suitability{floor: floor, safeProduct: safeProduct}
}

// Check returns the recommendation to compose with. An unsuitable top recommendation
// is replaced by the safe product at the same confidence, and the substitution is returned.
func (s *Suitability) Check(in model.Insights, top *model.Recommendation) (*model.Recommendation, *model.Substitution) {
	if top == nil {
		return nil, nil
	}

	reason, unsuitable := s.unsuitable(in, top.ID)
	if !unsuitable {
		return top, nil
	}

	replacement := &model.Recommendation{
		ID:         s.safeProduct,
		Name:       model.ProductName(s.safeProduct),
		Reason:     fmt.Sprintf("A safer alternative to the %s while your balance recovers.", model.ProductName(top.ID)),
		Confidence: top.Confidence,
	}
	return replacement, &model.Substitution{From: top.ID, To: s.safeProduct, Reason: reason}
}

func (s *Suitability) unsuitable(in model.Insights, product string) (string, bool) {
	if !in.LowBalance(s.floor) {
		return "", false
	}

	switch product {
	case model.ProductPersonalLoan, model.ProductInvestmentGrowth:
		return "low balance", true
	case model.ProductPremiumCreditCard:
		if in.SalaryDetected {
			return "salary does not cover spending", true
		}
	}
	return "", false
}
