// Package persona maps behavioural insights to a customer persona and life event.
package persona

import (
	"context"
	"strings"

	"github.com/Veraticus/finpulse/internal/model"
)

// MaxConfidence caps classifier confidence.
const MaxConfidence = 100

// FallbackReasonPrefix starts the reason of every degraded classification.
const FallbackReasonPrefix = "classifier unavailable, using neutral defaults"

// Request is everything a classifier may look at.
type Request struct {
	Profile     *model.Profile
	Description string
	Insights    model.Insights
}

// Classifier defines the contract for persona and life-event detection.
// Rules-backed implementations must be pure functions of the request.
type Classifier interface {
	Classify(ctx context.Context, req Request) (model.ClassifierResult, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, req Request) (model.ClassifierResult, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, req Request) (model.ClassifierResult, error) {
	return f(ctx, req)
}

// Normalize treats a classifier result as untrusted input.
// Unknown personas become general, unknown life events become unknown,
// and confidence is clamped to [0, MaxConfidence].
func Normalize(result model.ClassifierResult) model.ClassifierResult {
	result.Persona = model.ParsePersona(string(result.Persona))
	result.LifeEvent = model.ParseLifeEvent(string(result.LifeEvent))

	switch {
	case result.Confidence < 0:
		result.Confidence = 0
	case result.Confidence > MaxConfidence:
		result.Confidence = MaxConfidence
	}

	result.Reason = strings.TrimSpace(result.Reason)
	if result.Reason == "" {
		result.Reason = "no reason given"
	}

	return result
}

// Fallback is the degraded classification used when a classifier fails.
func Fallback(cause error) model.ClassifierResult {
	reason := FallbackReasonPrefix
	if cause != nil {
		reason += ": " + cause.Error()
	}

	return model.ClassifierResult{
		Persona:    model.PersonaGeneral,
		LifeEvent:  model.LifeEventUnknown,
		Confidence: 0,
		Reason:     reason,
		Source:     model.SourceFallback,
	}
}
