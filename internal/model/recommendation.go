package model

// Product identifiers.
const (
	ProductPremiumCreditCard = "credit_card_premium"
	ProductInvestmentGrowth  = "investment_growth"
	ProductPersonalLoan      = "personal_loan"
	ProductSmartSavingsSIP   = "smart_savings_sip"
)

// MaxRecommendationConfidence caps every generated confidence score.
const MaxRecommendationConfidence = 95

// Recommendation is a ranked product proposal.
type Recommendation struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Reason     string `json:"reason" yaml:"reason"`
	Confidence int    `json:"confidence" yaml:"confidence"`
}

// Recommendations is an ordered sequence of proposals, best first.
type Recommendations []Recommendation

// Top returns the highest-ranked recommendation, or nil if there are none.
func (r Recommendations) Top() *Recommendation {
	if len(r) == 0 {
		return nil
	}
	return &r[0]
}

var productNames = map[string]string{
	ProductPremiumCreditCard: "Premium Rewards Credit Card",
	ProductInvestmentGrowth:  "Growth Investment Plan",
	ProductPersonalLoan:      "Instant Personal Loan",
	ProductSmartSavingsSIP:   "Smart Savings SIP",
}

// ProductName returns the display name of a product, or the id itself if it is not catalogued.
func ProductName(id string) string {
	if name, ok := productNames[id]; ok {
		return name
	}
	return id
}

// IsGatedProduct reports whether id is a product the guardrail must be able to suppress.
func IsGatedProduct(id string) bool {
	switch id {
	case ProductPremiumCreditCard, ProductInvestmentGrowth, ProductPersonalLoan:
		return true
	default:
		return false
	}
}
