// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/service"
	"github.com/Veraticus/finpulse/internal/storage"
)

// TestDB is a migrated audit database living in the test's temp dir.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Path    string
}

// SetupTestDB creates a migrated database file and closes it when the test ends.
// A file is used instead of :memory: so other handles, such as a CLI command, can open it.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audit.db")
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return &TestDB{Storage: store, Path: path, t: t}
}

// SeedAnalyses records analyses under analystID and returns the stored records.
func (db *TestDB) SeedAnalyses(analystID string, analyses ...*model.Analysis) []service.AnalysisRecord {
	db.t.Helper()

	records := make([]service.AnalysisRecord, 0, len(analyses))
	for _, a := range analyses {
		record, err := db.Storage.SaveAnalysis(context.Background(), analystID, a)
		if err != nil {
			db.t.Fatalf("failed to seed analysis for %q: %v", a.Profile.CustomerID, err)
		}
		records = append(records, *record)
	}
	return records
}

// OfferAnalysis is a minimal passing analysis that offers product to customerID.
func OfferAnalysis(customerID, product string) *model.Analysis {
	return &model.Analysis{
		Profile: model.Profile{CustomerID: customerID},
		Classification: model.ClassifierResult{
			Persona:    model.PersonaSaver,
			LifeEvent:  model.LifeEventEmployed,
			Confidence: 60,
			Reason:     "Customer identified as saver due to: regular salary income confirmed.",
			Source:     model.SourceRules,
		},
		Verdict: model.GuardrailVerdict{Status: model.GuardrailPass, Ratio: 0.2, Threshold: 0.45},
		Action: model.Action{
			Type:        model.ActionProactiveOffer,
			TemplateKey: "offer.saver",
			Message:     "You might like the " + model.ProductName(product) + ".",
			Product:     product,
		},
	}
}
