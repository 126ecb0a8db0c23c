// Package recommend proposes ranked cross-sell products from behavioural insights.
package recommend

import (
	"sort"

	"github.com/Veraticus/finpulse/internal/model"
)

const baseConfidence = 50

// bonus adds points to a candidate when its predicate holds.
type bonus struct {
	when   func(in model.Insights) bool
	points int
}

// rule emits one product when its predicate holds.
type rule struct {
	eligible func(in model.Insights) bool
	id       string
	name     string
	reason   string
	bonuses  []bonus
}

func travels(in model.Insights) bool { return in.TravelFrequency > 2 }

func stableAbove(limit float64) func(model.Insights) bool {
	return func(in model.Insights) bool { return in.StabilityScore > limit }
}

// rules are evaluated in order; the order breaks confidence ties.
var rules = []rule{
	{
		id:       model.ProductPremiumCreditCard,
		name:     "Premium Rewards Credit Card",
		reason:   "Your spending and travel pattern qualifies you.",
		eligible: func(in model.Insights) bool { return in.HighSpender || travels(in) },
		bonuses: []bonus{
			{points: 25, when: func(in model.Insights) bool { return in.HighSpender }},
			{points: 15, when: travels},
			{points: 10, when: stableAbove(0.7)},
		},
	},
	{
		id:       model.ProductInvestmentGrowth,
		name:     "Growth Investment Plan",
		reason:   "Your salary and saving behavior indicate investment readiness.",
		eligible: func(in model.Insights) bool { return in.SalaryDetected && in.Saver },
		bonuses: []bonus{
			{points: 20, when: func(in model.Insights) bool { return in.SalaryDetected }},
			{points: 20, when: func(in model.Insights) bool { return in.Saver }},
			{points: 10, when: stableAbove(0.6)},
		},
	},
	{
		id:       model.ProductPersonalLoan,
		name:     "Instant Personal Loan",
		reason:   "Your income and spending profile qualifies for instant loan.",
		eligible: func(in model.Insights) bool { return in.SalaryDetected && in.HighSpender },
		bonuses: []bonus{
			{points: 20, when: func(in model.Insights) bool { return in.SalaryDetected }},
			{points: 20, when: func(in model.Insights) bool { return in.HighSpender }},
			{points: 10, when: stableAbove(0.65)},
		},
	},
}

// personaNotes tailor the reason text to the detected persona.
var personaNotes = map[model.Persona]string{
	model.PersonaStudent:         "Chosen with your studies in mind.",
	model.PersonaSpender:         "Built around how actively you spend.",
	model.PersonaSaver:           "Suited to a steady saver.",
	model.PersonaCreditDependent: "Review your repayments before applying.",
}

// Generator evaluates the product rules.
type Generator struct{}

// NewGenerator creates a recommendation generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns zero to three recommendations ordered by confidence descending.
// Exact ties keep rule order. The rules do not read the profile yet.
func (g *Generator) Generate(in model.Insights, _ model.Profile, persona model.Persona) model.Recommendations {
	recs := model.Recommendations{}
	for _, r := range rules {
		if !r.eligible(in) {
			continue
		}
		recs = append(recs, model.Recommendation{
			ID:         r.id,
			Name:       r.name,
			Reason:     withPersona(r.reason, persona),
			Confidence: score(r, in),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})

	return recs
}

// score sums the bonuses and clamps once.
func score(r rule, in model.Insights) int {
	total := baseConfidence
	for _, b := range r.bonuses {
		if b.when(in) {
			total += b.points
		}
	}
	return max(0, min(total, model.MaxRecommendationConfidence))
}

func withPersona(reason string, persona model.Persona) string {
	if note, ok := personaNotes[persona]; ok {
		return reason + " " + note
	}
	return reason
}
