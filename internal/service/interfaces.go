// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
)

// AnalysisFilter defines filtering options for audit log queries.
type AnalysisFilter struct {
	CustomerID string
	Limit      int
}

// AnalysisRecord is one persisted analysis outcome.
type AnalysisRecord struct {
	CreatedAt       time.Time                  `json:"created_at" yaml:"created_at"`
	ID              string                     `json:"id" yaml:"id"`
	CustomerID      string                     `json:"customer_id" yaml:"customer_id"`
	AnalystID       string                     `json:"analyst_id,omitempty" yaml:"analyst_id,omitempty"`
	Persona         model.Persona              `json:"persona" yaml:"persona"`
	LifeEvent       model.LifeEvent            `json:"life_event" yaml:"life_event"`
	Source          model.ClassificationSource `json:"source" yaml:"source"`
	Product         string                     `json:"product,omitempty" yaml:"product,omitempty"`
	Reason          string                     `json:"reason" yaml:"reason"`
	Message         string                     `json:"message" yaml:"message"`
	ActionType      model.ActionType           `json:"action_type" yaml:"action_type"`
	GuardrailStatus model.GuardrailStatus      `json:"guardrail_status" yaml:"guardrail_status"`
	DTIRatio        float64                    `json:"dti_ratio" yaml:"dti_ratio"`
	Confidence      int                        `json:"confidence" yaml:"confidence"`
}

// AuditStats aggregates the audit log for reporting.
type AuditStats struct {
	PersonaDistribution map[model.Persona]int    `json:"persona_distribution" yaml:"persona_distribution"`
	ProductDistribution map[string]int           `json:"product_distribution" yaml:"product_distribution"`
	ActionDistribution  map[model.ActionType]int `json:"action_distribution" yaml:"action_distribution"`
	TotalAnalyses       int                      `json:"total_analyses" yaml:"total_analyses"`
	UniqueCustomers     int                      `json:"unique_customers" yaml:"unique_customers"`
	GuardrailAlerts     int                      `json:"guardrail_alerts" yaml:"guardrail_alerts"`
	AverageConfidence   float64                  `json:"average_confidence" yaml:"average_confidence"`
}

// AuditStore defines the contract for the persistence of analysis outcomes.
type AuditStore interface {
	SaveAnalysis(ctx context.Context, analystID string, analysis *model.Analysis) (*AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]AnalysisRecord, error)
	DistinctCustomers(ctx context.Context) ([]string, error)
	GetStats(ctx context.Context) (*AuditStats, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
