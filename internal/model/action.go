package model

// GuardrailStatus is the outcome of the debt-to-income gate.
type GuardrailStatus string

// Guardrail status constants.
const (
	GuardrailPass  GuardrailStatus = "PASS"
	GuardrailAlert GuardrailStatus = "ALERT"
)

// GuardrailVerdict is the gate decision together with the ratio it was made on.
type GuardrailVerdict struct {
	Status    GuardrailStatus `json:"status" yaml:"status"`
	Ratio     float64         `json:"ratio" yaml:"ratio"`
	Threshold float64         `json:"threshold" yaml:"threshold"`
}

// Blocked reports whether the verdict forbids dispatching an offer.
func (v GuardrailVerdict) Blocked() bool {
	return v.Status != GuardrailPass
}

// ActionType is the kind of outcome returned to the caller.
type ActionType string

// Action type constants.
const (
	ActionProactiveOffer ActionType = "PROACTIVE_OFFER"
	ActionSafetyAdvice   ActionType = "SAFETY_ADVICE"
	ActionNeutral        ActionType = "NEUTRAL"
)

// Action is the single outcome of an analysis.
type Action struct {
	Type        ActionType `json:"type" yaml:"type"`
	TemplateKey string     `json:"template_key" yaml:"template_key"`
	Message     string     `json:"message" yaml:"message"`
	Product     string     `json:"product,omitempty" yaml:"product,omitempty"` // Empty when absent
}

// HasProduct reports whether the action targets a product.
func (a Action) HasProduct() bool {
	return a.Product != ""
}

// Substitution records a recommendation the suitability check replaced.
type Substitution struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Reason string `json:"reason" yaml:"reason"`
}

// Analysis is the full trace of one analysis call.
// Recommendations is the generator's ranking; Substitution is set when its top entry was unsuitable.
type Analysis struct {
	Substitution    *Substitution    `json:"substitution,omitempty" yaml:"substitution,omitempty"`
	Profile         Profile          `json:"-" yaml:"-"`
	Action          Action           `json:"action" yaml:"action"`
	Classification  ClassifierResult `json:"classification" yaml:"classification"`
	Verdict         GuardrailVerdict `json:"guardrail" yaml:"guardrail"`
	Recommendations Recommendations  `json:"recommendations" yaml:"recommendations"`
	Insights        Insights         `json:"insights" yaml:"insights"`
}
