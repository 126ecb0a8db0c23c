package persona

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/finpulse/internal/config"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
)

// RulesConfig holds the thresholds of the rules-based classifier.
type RulesConfig struct {
	LowBalanceFloor decimal.Decimal
	EducationMin    int
	RentMin         int
	TravelOver      int
	FoodOver        int
	FoodHeavyOver   int
	ShoppingOver    int
}

// DefaultRulesConfig returns the standard thresholds.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		LowBalanceFloor: decimal.NewFromInt(config.DefaultLowBalanceFloor),
		EducationMin:    2,
		RentMin:         2,
		TravelOver:      3,
		FoodOver:        5,
		FoodHeavyOver:   10,
		ShoppingOver:    5,
	}
}

// RulesConfigFromPolicy returns the standard thresholds with the policy's low balance floor.
func RulesConfigFromPolicy(p config.Policy) RulesConfig {
	cfg := DefaultRulesConfig()
	cfg.LowBalanceFloor = decimal.NewFromFloat(p.LowBalanceFloor)
	return cfg
}

// educationText matches descriptions that announce study costs.
var educationText = regexp.MustCompile(`(?i)\b(universit(y|ies)|tuition|college|semester|school\s*fees?)\b`)

// behaviour is the view of the insights the rules reason about.
type behaviour struct {
	food, travel, education, rent, shopping int
	salary, lowBalance, highSpender         bool
}

// RulesClassifier classifies customers with a fixed rules table.
// It is a pure function of its request.
type RulesClassifier struct {
	cfg RulesConfig
}

// NewRulesClassifier creates a rules classifier with the given thresholds.
func NewRulesClassifier(cfg RulesConfig) *RulesClassifier {
	return &RulesClassifier{cfg: cfg}
}

// Classify never fails.
func (c *RulesClassifier) Classify(_ context.Context, req Request) (model.ClassifierResult, error) {
	b := c.observe(req.Insights)
	event := c.lifeEvent(b, req.Description)
	p := c.persona(b, event)

	return model.ClassifierResult{
		Persona:    p,
		LifeEvent:  event,
		Confidence: c.confidence(b, p, event),
		Reason:     c.reason(b, p),
		Source:     model.SourceRules,
	}, nil
}

func (c *RulesClassifier) observe(in model.Insights) behaviour {
	return behaviour{
		food:        in.Count(model.CategoryFood),
		travel:      in.Count(model.CategoryTravel),
		education:   in.Count(model.CategoryEducation),
		rent:        in.Count(model.CategoryRent),
		shopping:    in.Count(model.CategoryShopping),
		salary:      in.SalaryDetected,
		lowBalance:  in.LowBalance(c.cfg.LowBalanceFloor),
		highSpender: in.HighSpender,
	}
}

func (c *RulesClassifier) traveler(b behaviour) bool {
	return b.travel > c.cfg.TravelOver
}

// lifeEvent returns the first matching event.
func (c *RulesClassifier) lifeEvent(b behaviour, description string) model.LifeEvent {
	switch {
	case b.education >= c.cfg.EducationMin, educationText.MatchString(description):
		return model.LifeEventHigherEducation
	case c.traveler(b):
		return model.LifeEventFrequentTraveler
	case b.rent >= c.cfg.RentMin:
		return model.LifeEventRenter
	case b.salary:
		return model.LifeEventEmployed
	case b.food > c.cfg.FoodOver:
		return model.LifeEventDiningOut
	case b.shopping > c.cfg.ShoppingOver:
		return model.LifeEventShopping
	default:
		return model.LifeEventUnknown
	}
}

func (c *RulesClassifier) persona(b behaviour, event model.LifeEvent) model.Persona {
	switch {
	case event == model.LifeEventHigherEducation:
		return model.PersonaStudent
	case b.lowBalance && b.salary:
		return model.PersonaCreditDependent
	case b.food > c.cfg.FoodOver, c.traveler(b), b.shopping > c.cfg.ShoppingOver, b.highSpender:
		return model.PersonaSpender
	case b.salary && !b.lowBalance:
		return model.PersonaSaver
	default:
		return model.PersonaGeneral
	}
}

func (c *RulesClassifier) confidence(b behaviour, p model.Persona, event model.LifeEvent) int {
	score := 0
	if b.salary {
		score += 30
	}
	switch {
	case b.food > c.cfg.FoodHeavyOver:
		score += 40
	case b.food > c.cfg.FoodOver:
		score += 20
	}
	if c.traveler(b) {
		score += 20
	}
	if b.education >= c.cfg.EducationMin {
		score += 30
	}
	if b.rent >= c.cfg.RentMin {
		score += 20
	}
	if b.shopping > c.cfg.ShoppingOver {
		score += 15
	}
	if event != model.LifeEventUnknown {
		score += 20
	}
	if p != model.PersonaGeneral {
		score += 10
	}
	return min(score, MaxConfidence)
}

func (c *RulesClassifier) reason(b behaviour, p model.Persona) string {
	var parts []string
	if b.food > c.cfg.FoodOver {
		parts = append(parts, fmt.Sprintf("frequent food transactions (%d times)", b.food))
	}
	if c.traveler(b) {
		parts = append(parts, fmt.Sprintf("travel spending detected (%d trips)", b.travel))
	}
	if b.education >= c.cfg.EducationMin {
		parts = append(parts, fmt.Sprintf("education payments found (%d times)", b.education))
	}
	if b.lowBalance {
		parts = append(parts, "low balance detected")
	}
	if b.salary {
		parts = append(parts, "regular salary income confirmed")
	}
	if b.shopping > c.cfg.ShoppingOver {
		parts = append(parts, fmt.Sprintf("high shopping activity (%d transactions)", b.shopping))
	}
	if b.rent >= c.cfg.RentMin {
		parts = append(parts, fmt.Sprintf("regular rent payments (%d times)", b.rent))
	}
	if b.highSpender {
		parts = append(parts, "high total spend")
	}

	detail := "general spending pattern observed"
	if len(parts) > 0 {
		detail = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("Customer identified as %s due to: %s.", p, detail)
}
