// Package engine runs the customer risk and cross-sell pipeline:
// extract, classify, generate, gate and compose.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finpulse/internal/action"
	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/config"
	"github.com/Veraticus/finpulse/internal/guardrail"
	"github.com/Veraticus/finpulse/internal/insight"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/persona"
	"github.com/Veraticus/finpulse/internal/recommend"
	"github.com/shopspring/decimal"
)

// Request is one customer and one transaction batch.
type Request struct {
	// DTIRatio is used as-is when set.
	DTIRatio *float64
	// ProposedObligation is divided by the profile income when DTIRatio is not set.
	// Both are converted to monthly amounts when their periods differ.
	ProposedObligation *decimal.Decimal
	// ObligationUnit is the period of ProposedObligation; empty means the policy income unit.
	ObligationUnit     model.IncomeUnit
	Description        string
	Transactions       []model.Transaction
	Profile            model.Profile
}

// Engine is stateless between calls and safe for concurrent use.
type Engine struct {
	classifier persona.Classifier
	extractor  *insight.Extractor
	generator  *recommend.Generator
	gate       *guardrail.Gate
	suitable   *guardrail.Suitability
	composer   *action.Composer
	logger     *slog.Logger
	policy     config.Policy
}

type options struct {
	renderer action.Renderer
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRenderer sets the message renderer used by the action composer.
func WithRenderer(renderer action.Renderer) Option {
	return func(o *options) {
		o.renderer = renderer
	}
}

// New creates an engine for the given policy.
// A nil classifier selects the rules-based classifier.
func New(policy config.Policy, classifier persona.Classifier, opts ...Option) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := common.LoggerOrDefault(o.logger)

	if classifier == nil {
		classifier = persona.NewRulesClassifier(persona.RulesConfigFromPolicy(policy))
	}

	return &Engine{
		policy:     policy,
		classifier: classifier,
		extractor:  insight.NewExtractor(policy),
		generator:  recommend.NewGenerator(),
		gate:       guardrail.NewGate(policy.DTIThreshold),
		suitable:   guardrail.NewSuitability(decimal.NewFromFloat(policy.LowBalanceFloor), policy.SafeProduct),
		composer:   action.NewComposer(policy.SafeProduct, o.renderer, logger),
		logger:     logger,
	}, nil
}

// Policy returns the policy the engine was built with.
func (e *Engine) Policy() config.Policy {
	return e.policy
}

// Analyze returns the single action for a request.
func (e *Engine) Analyze(ctx context.Context, req Request) (model.Action, error) {
	analysis, err := e.Evaluate(ctx, req)
	if err != nil {
		return model.Action{}, err
	}
	return analysis.Action, nil
}

// Evaluate runs the full pipeline and returns every intermediate result.
// It returns ErrInvalidInput or ErrGuardrailPrecondition; classifier failures degrade
// to a neutral classification instead of failing the request.
func (e *Engine) Evaluate(ctx context.Context, req Request) (*model.Analysis, error) {
	if err := insight.Validate(req.Transactions, req.Profile); err != nil {
		return nil, err
	}

	ratio, err := e.ratio(req)
	if err != nil {
		return nil, err
	}
	// Checked before the classifier is called so a bad ratio costs nothing.
	verdict, err := e.gate.Evaluate(ratio)
	if err != nil {
		return nil, err
	}

	log := e.logger.With("customer_id", req.Profile.CustomerID)

	insights := e.extractor.Extract(req.Transactions, req.Profile)
	log.Debug("extracted insights",
		"total_spend", insights.TotalSpend.String(),
		"risk_level", insights.RiskLevel,
		"stability_score", insights.StabilityScore)

	result := e.classify(ctx, log, persona.Request{
		Insights:    insights,
		Description: req.Description,
		Profile:     &req.Profile,
	})

	recs := e.generator.Generate(insights, req.Profile, result.Persona)
	log.Debug("generated recommendations", "count", len(recs))

	if verdict.Blocked() {
		log.Info("guardrail alert, offers suppressed",
			"verdict", verdict.Status,
			"ratio", verdict.Ratio,
			"threshold", verdict.Threshold)
	}

	top, sub := e.suitable.Check(insights, recs.Top())
	if sub != nil {
		log.Info("unsuitable recommendation replaced",
			"from", sub.From,
			"to", sub.To,
			"reason", sub.Reason)
	}

	act := e.composer.Compose(ctx, result, top, verdict)
	log.Debug("composed action",
		"action", act.Type,
		"product", act.Product,
		"persona", result.Persona,
		"life_event", result.LifeEvent)

	return &model.Analysis{
		Substitution:    sub,
		Profile:         req.Profile,
		Insights:        insights,
		Classification:  result,
		Recommendations: recs,
		Verdict:         verdict,
		Action:          act,
	}, nil
}

// classify never fails; errors and timeouts become the fallback result.
func (e *Engine) classify(ctx context.Context, log *slog.Logger, req persona.Request) model.ClassifierResult {
	if e.policy.ClassifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.policy.ClassifierTimeout)
		defer cancel()
	}

	result, err := e.classifier.Classify(ctx, req)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if !errors.Is(err, common.ErrClassifierUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrClassifierUnavailable, err)
		}
		log.Warn("classifier failed, using fallback", "error", err)
		return persona.Fallback(err)
	}

	return persona.Normalize(result)
}

// ratio resolves the DTI ratio for a request.
// Without a ratio or an obligation there is nothing under review and the ratio is zero.
func (e *Engine) ratio(req Request) (float64, error) {
	switch {
	case req.DTIRatio != nil:
		return *req.DTIRatio, nil
	case req.ProposedObligation != nil:
		unit := req.ObligationUnit
		if unit == "" {
			unit = e.policy.IncomeUnit
		}
		if !unit.Valid() {
			return 0, common.InvalidInputf("unknown obligation period %q", unit)
		}
		if unit == e.policy.IncomeUnit {
			return guardrail.Ratio(*req.ProposedObligation, req.Profile.Income)
		}
		return guardrail.Ratio(unit.Monthly(*req.ProposedObligation), e.policy.IncomeUnit.Monthly(req.Profile.Income))
	default:
		return 0, nil
	}
}
