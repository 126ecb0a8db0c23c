// Package action composes the single outcome of an analysis.
package action

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
)

// RenderRequest is what a message renderer is given.
type RenderRequest struct {
	Persona     model.Persona
	LifeEvent   model.LifeEvent
	Type        model.ActionType
	TemplateKey string
	Product     string
	Reason      string
	// Template is the fallback text. A renderer may rephrase it but must keep its intent.
	Template string
}

// Renderer turns a template into customer-facing text.
// Implementations may personalise the wording; they must not change the action type or product.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// Composer combines classification, the top recommendation and the guardrail verdict into one Action.
type Composer struct {
	renderer    Renderer
	logger      *slog.Logger
	safeProduct string
}

// NewComposer creates a composer. renderer may be nil, in which case templates are used verbatim.
func NewComposer(safeProduct string, renderer Renderer, logger *slog.Logger) *Composer {
	return &Composer{
		safeProduct: safeProduct,
		renderer:    renderer,
		logger:      common.LoggerOrDefault(logger),
	}
}

// Compose returns exactly one of SAFETY_ADVICE, PROACTIVE_OFFER or NEUTRAL.
// An ALERT verdict always yields SAFETY_ADVICE, whatever the recommendation.
func (c *Composer) Compose(ctx context.Context, result model.ClassifierResult, top *model.Recommendation, verdict model.GuardrailVerdict) model.Action {
	var act model.Action

	switch {
	case verdict.Blocked():
		act = model.Action{
			Type:        model.ActionSafetyAdvice,
			TemplateKey: KeySafetyCounseling,
			Product:     c.safeProductFor(top),
		}
		act.Message = counselingTemplate(act.Product)
	case top != nil && result.Qualifies():
		act = model.Action{
			Type:        model.ActionProactiveOffer,
			TemplateKey: OfferKey(result.Persona),
			Product:     top.ID,
		}
		act.Message = offerTemplate(result.Persona, top.ID)
	default:
		act = model.Action{
			Type:        model.ActionNeutral,
			TemplateKey: KeyNeutralAcknowledgment,
			Message:     acknowledgmentTemplate,
		}
	}

	act.Message = c.render(ctx, result, act)
	return act
}

// safeProductFor never returns the product being gated.
func (c *Composer) safeProductFor(top *model.Recommendation) string {
	if top != nil && top.ID == c.safeProduct {
		return model.ProductSmartSavingsSIP
	}
	return c.safeProduct
}

func (c *Composer) render(ctx context.Context, result model.ClassifierResult, act model.Action) string {
	if c.renderer == nil {
		return act.Message
	}

	text, err := c.renderer.Render(ctx, RenderRequest{
		Persona:     result.Persona,
		LifeEvent:   result.LifeEvent,
		Type:        act.Type,
		TemplateKey: act.TemplateKey,
		Product:     act.Product,
		Reason:      result.Reason,
		Template:    act.Message,
	})
	if err != nil {
		c.logger.Warn("message renderer failed, using template",
			"template_key", act.TemplateKey,
			"error", err)
		return act.Message
	}
	if strings.TrimSpace(text) == "" {
		c.logger.Warn("message renderer returned empty text, using template",
			"template_key", act.TemplateKey)
		return act.Message
	}

	return strings.TrimSpace(text)
}
