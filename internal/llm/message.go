package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/finpulse/internal/action"
	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
)

const messageSystemPrompt = "You write short, friendly messages from a bank to its customer. " +
	"Reply with the message text only, at most two sentences, no greeting line and no markdown."

// maxMessageLength bounds what a model may put in front of a customer.
const maxMessageLength = 400

// MessageRenderer rewrites action templates with a language model.
// It makes a single attempt per message; the composer falls back to the template on any error.
type MessageRenderer struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
}

var _ action.Renderer = (*MessageRenderer)(nil)

// NewMessageRenderer wraps client.
func NewMessageRenderer(client Client, cfg Config, logger *slog.Logger) *MessageRenderer {
	return &MessageRenderer{
		client:      client,
		logger:      common.LoggerOrDefault(logger),
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Render returns the model's rewording of req.Template.
func (r *MessageRenderer) Render(ctx context.Context, req action.RenderRequest) (string, error) {
	if err := r.rateLimiter.wait(ctx); err != nil {
		return "", err
	}

	content, err := r.client.Complete(ctx, messageSystemPrompt, buildMessagePrompt(req))
	if err != nil {
		return "", fmt.Errorf("message generation failed: %w", err)
	}

	text := stripFences(content)
	text = strings.Trim(text, `"`)
	if text == "" {
		return "", errors.New("message generation returned no text")
	}
	if len(text) > maxMessageLength {
		return "", fmt.Errorf("message generation returned %d characters, limit is %d", len(text), maxMessageLength)
	}
	// A safety message that names the gated product would undo the guardrail.
	if req.Type != model.ActionProactiveOffer && mentionsGatedProduct(text) {
		return "", fmt.Errorf("generated %s message mentions a gated product", req.Type)
	}

	r.logger.Debug("message rendered", "template_key", req.TemplateKey)
	return text, nil
}

// Close releases the rate limiter.
func (r *MessageRenderer) Close() error {
	r.rateLimiter.Close()
	return nil
}

func buildMessagePrompt(req action.RenderRequest) string {
	var sb strings.Builder

	sb.WriteString("Rewrite this message for the customer, keeping its meaning.\n\n")
	fmt.Fprintf(&sb, "Message: %s\n", req.Template)
	fmt.Fprintf(&sb, "Customer persona: %s\n", req.Persona)
	if req.LifeEvent != model.LifeEventUnknown && req.LifeEvent != "" {
		fmt.Fprintf(&sb, "Life event: %s\n", req.LifeEvent)
	}

	switch req.Type {
	case model.ActionProactiveOffer:
		fmt.Fprintf(&sb, "Product offered: %s\n", model.ProductName(req.Product))
	case model.ActionSafetyAdvice:
		sb.WriteString("The customer is over-extended. Do not offer credit of any kind.\n")
		if req.Product != "" {
			fmt.Fprintf(&sb, "You may mention: %s\n", model.ProductName(req.Product))
		}
	default:
		sb.WriteString("Do not mention any product.\n")
	}

	return sb.String()
}

func mentionsGatedProduct(text string) bool {
	lower := strings.ToLower(text)
	for _, id := range []string{model.ProductPremiumCreditCard, model.ProductInvestmentGrowth, model.ProductPersonalLoan} {
		if strings.Contains(lower, strings.ToLower(model.ProductName(id))) {
			return true
		}
	}
	return false
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
