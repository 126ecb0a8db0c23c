package action

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/stretchr/testify/assert"
)

type stubRenderer struct {
	err   error
	text  string
	calls []RenderRequest
}

func (s *stubRenderer) Render(_ context.Context, req RenderRequest) (string, error) {
	s.calls = append(s.calls, req)
	return s.text, s.err
}

var (
	pass  = model.GuardrailVerdict{Status: model.GuardrailPass, Ratio: 0.30, Threshold: 0.45}
	alert = model.GuardrailVerdict{Status: model.GuardrailAlert, Ratio: 0.50, Threshold: 0.45}
	card  = &model.Recommendation{ID: model.ProductPremiumCreditCard, Name: "Premium Rewards Credit Card", Confidence: 95}
)

func classified(p model.Persona, e model.LifeEvent) model.ClassifierResult {
	return model.ClassifierResult{Persona: p, LifeEvent: e, Confidence: 60, Reason: "because", Source: model.SourceRules}
}

func TestComposer_Compose(t *testing.T) {
	composer := NewComposer(model.ProductSmartSavingsSIP, nil, nil)

	tests := []struct {
		top         *model.Recommendation
		name        string
		wantKey     string
		wantProduct string
		wantType    model.ActionType
		result      model.ClassifierResult
		verdict     model.GuardrailVerdict
	}{
		{
			name:        "qualifying spender gets an offer",
			result:      classified(model.PersonaSpender, model.LifeEventUnknown),
			top:         card,
			verdict:     pass,
			wantType:    model.ActionProactiveOffer,
			wantKey:     "offer.spender",
			wantProduct: model.ProductPremiumCreditCard,
		},
		{
			name:        "known life event qualifies a general persona",
			result:      classified(model.PersonaGeneral, model.LifeEventRenter),
			top:         card,
			verdict:     pass,
			wantType:    model.ActionProactiveOffer,
			wantKey:     "offer.general",
			wantProduct: model.ProductPremiumCreditCard,
		},
		{
			name:        "alert overrides a maximum confidence offer",
			result:      classified(model.PersonaSpender, model.LifeEventShopping),
			top:         card,
			verdict:     alert,
			wantType:    model.ActionSafetyAdvice,
			wantKey:     KeySafetyCounseling,
			wantProduct: model.ProductSmartSavingsSIP,
		},
		{
			name:        "alert without any recommendation still counsels",
			result:      classified(model.PersonaGeneral, model.LifeEventUnknown),
			verdict:     alert,
			wantType:    model.ActionSafetyAdvice,
			wantKey:     KeySafetyCounseling,
			wantProduct: model.ProductSmartSavingsSIP,
		},
		{
			name:     "no recommendation is neutral",
			result:   classified(model.PersonaSaver, model.LifeEventEmployed),
			verdict:  pass,
			wantType: model.ActionNeutral,
			wantKey:  KeyNeutralAcknowledgment,
		},
		{
			name:     "no qualifying pattern is neutral",
			result:   classified(model.PersonaGeneral, model.LifeEventUnknown),
			top:      card,
			verdict:  pass,
			wantType: model.ActionNeutral,
			wantKey:  KeyNeutralAcknowledgment,
		},
		{
			name:        "unknown persona tag falls back to the general template",
			result:      model.ClassifierResult{Persona: "whale", LifeEvent: model.LifeEventEmployed},
			top:         card,
			verdict:     pass,
			wantType:    model.ActionProactiveOffer,
			wantKey:     "offer.general",
			wantProduct: model.ProductPremiumCreditCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composer.Compose(context.Background(), tt.result, tt.top, tt.verdict)

			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantKey, got.TemplateKey)
			assert.Equal(t, tt.wantProduct, got.Product)
			assert.NotEmpty(t, got.Message)
			if tt.top != nil && tt.verdict.Blocked() {
				assert.NotEqual(t, tt.top.ID, got.Product)
			}
		})
	}
}

func TestComposer_SafeProductIsNeverTheGatedOne(t *testing.T) {
	composer := NewComposer(model.ProductPersonalLoan, nil, nil)
	loan := &model.Recommendation{ID: model.ProductPersonalLoan, Confidence: 90}

	got := composer.Compose(context.Background(), classified(model.PersonaSpender, model.LifeEventEmployed), loan, alert)

	assert.Equal(t, model.ActionSafetyAdvice, got.Type)
	assert.NotEqual(t, model.ProductPersonalLoan, got.Product)
}

func TestComposer_Renderer(t *testing.T) {
	tests := []struct {
		name         string
		renderer     *stubRenderer
		wantTemplate bool
	}{
		{name: "rendered text is used", renderer: &stubRenderer{text: "  Hi there, try our card.  "}},
		{name: "renderer error falls back", renderer: &stubRenderer{err: errors.New("boom")}, wantTemplate: true},
		{name: "blank text falls back", renderer: &stubRenderer{text: "   "}, wantTemplate: true},
	}

	plain := NewComposer(model.ProductSmartSavingsSIP, nil, nil).
		Compose(context.Background(), classified(model.PersonaSaver, model.LifeEventEmployed), card, pass)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := NewComposer(model.ProductSmartSavingsSIP, tt.renderer, nil)
			got := composer.Compose(context.Background(), classified(model.PersonaSaver, model.LifeEventEmployed), card, pass)

			assert.Len(t, tt.renderer.calls, 1)
			assert.Equal(t, "offer.saver", tt.renderer.calls[0].TemplateKey)
			assert.Equal(t, plain.Message, tt.renderer.calls[0].Template)
			assert.Equal(t, model.ActionProactiveOffer, got.Type)
			assert.Equal(t, model.ProductPremiumCreditCard, got.Product)
			if tt.wantTemplate {
				assert.Equal(t, plain.Message, got.Message)
			} else {
				assert.Equal(t, "Hi there, try our card.", got.Message)
			}
		})
	}
}

func TestOfferKey(t *testing.T) {
	assert.Equal(t, "offer.student", OfferKey(model.PersonaStudent))
	assert.Equal(t, "offer.credit_dependent", OfferKey(model.PersonaCreditDependent))
	assert.Equal(t, "offer.general", OfferKey("unexpected"))
}
