// Package storage persists the analysis audit log in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finpulse/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidAnalysis = errors.New("invalid analysis")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAnalysis checks the fields the audit row cannot do without.
func validateAnalysis(analysis *model.Analysis) error {
	if analysis == nil {
		return fmt.Errorf("%w: analysis", ErrNilParameter)
	}
	if strings.TrimSpace(analysis.Profile.CustomerID) == "" {
		return fmt.Errorf("%w: missing customer ID", ErrInvalidAnalysis)
	}
	switch analysis.Action.Type {
	case model.ActionProactiveOffer, model.ActionSafetyAdvice, model.ActionNeutral:
	default:
		return fmt.Errorf("%w: action type %q", ErrInvalidAnalysis, analysis.Action.Type)
	}
	if analysis.Action.Message == "" {
		return fmt.Errorf("%w: empty message", ErrInvalidAnalysis)
	}
	if analysis.Verdict.Status == model.GuardrailAlert && analysis.Action.Type == model.ActionProactiveOffer {
		return fmt.Errorf("%w: offer recorded under guardrail alert", ErrInvalidAnalysis)
	}
	return nil
}
