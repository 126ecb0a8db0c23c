package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/service"
	"github.com/google/uuid"
)

const analysisColumns = `id, customer_id, analyst_id, persona, life_event, source, product, confidence,
	action_type, guardrail_status, dti_ratio, reason, message, created_at`

// SaveAnalysis appends one analysis outcome to the audit log.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, analystID string, analysis *model.Analysis) (*service.AnalysisRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateAnalysis(analysis); err != nil {
		return nil, err
	}

	record := recordFromAnalysis(analystID, analysis)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (`+analysisColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CustomerID, record.AnalystID,
		record.Persona, record.LifeEvent, record.Source,
		record.Product, record.Confidence,
		record.ActionType, record.GuardrailStatus, record.DTIRatio,
		record.Reason, record.Message, record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	return record, nil
}

func recordFromAnalysis(analystID string, analysis *model.Analysis) *service.AnalysisRecord {
	return &service.AnalysisRecord{
		ID:              uuid.NewString(),
		CustomerID:      strings.TrimSpace(analysis.Profile.CustomerID),
		AnalystID:       strings.TrimSpace(analystID),
		Persona:         analysis.Classification.Persona,
		LifeEvent:       analysis.Classification.LifeEvent,
		Source:          analysis.Classification.Source,
		Product:         analysis.Action.Product,
		Confidence:      analysis.Classification.Confidence,
		ActionType:      analysis.Action.Type,
		GuardrailStatus: analysis.Verdict.Status,
		DTIRatio:        analysis.Verdict.Ratio,
		Reason:          analysis.Classification.Reason,
		Message:         analysis.Action.Message,
		CreatedAt:       time.Now().UTC(),
	}
}

// GetAnalysis returns one audit record by id.
func (s *SQLiteStorage) GetAnalysis(ctx context.Context, id string) (*service.AnalysisRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	record, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return record, nil
}

// ListAnalyses returns audit records, newest first.
func (s *SQLiteStorage) ListAnalyses(ctx context.Context, filter service.AnalysisFilter) ([]service.AnalysisRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + analysisColumns + ` FROM analyses`
	var args []any
	if filter.CustomerID != "" {
		query += ` WHERE customer_id = ?`
		args = append(args, filter.CustomerID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []service.AnalysisRecord
	for rows.Next() {
		record, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return records, nil
}

// DistinctCustomers returns every customer with at least one analysis, sorted.
func (s *SQLiteStorage) DistinctCustomers(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT customer_id FROM analyses ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, id)
	}
	return customers, rows.Err()
}

// GetStats aggregates the audit log.
func (s *SQLiteStorage) GetStats(ctx context.Context) (*service.AuditStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	stats := &service.AuditStats{
		PersonaDistribution: make(map[model.Persona]int),
		ProductDistribution: make(map[string]int),
		ActionDistribution:  make(map[model.ActionType]int),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT customer_id),
		       COALESCE(SUM(CASE WHEN guardrail_status = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(confidence), 0)
		FROM analyses`, model.GuardrailAlert,
	).Scan(&stats.TotalAnalyses, &stats.UniqueCustomers, &stats.GuardrailAlerts, &stats.AverageConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analyses: %w", err)
	}

	if err := s.countBy(ctx, "persona", func(k string, n int) { stats.PersonaDistribution[model.Persona(k)] = n }); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "product", func(k string, n int) {
		if k != "" {
			stats.ProductDistribution[k] = n
		}
	}); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "action_type", func(k string, n int) { stats.ActionDistribution[model.ActionType(k)] = n }); err != nil {
		return nil, err
	}

	return stats, nil
}

// countBy runs a GROUP BY on a fixed, trusted column name.
func (s *SQLiteStorage) countBy(ctx context.Context, column string, add func(key string, n int)) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM analyses GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("failed to group analyses by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan %s counts: %w", column, err)
		}
		add(key, n)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*service.AnalysisRecord, error) {
	var r service.AnalysisRecord
	err := row.Scan(
		&r.ID, &r.CustomerID, &r.AnalystID,
		&r.Persona, &r.LifeEvent, &r.Source,
		&r.Product, &r.Confidence,
		&r.ActionType, &r.GuardrailStatus, &r.DTIRatio,
		&r.Reason, &r.Message, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
