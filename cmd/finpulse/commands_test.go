package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/service"
	"github.com/Veraticus/finpulse/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func useDatabase(t *testing.T, db *testutil.TestDB) {
	t.Helper()
	viper.Reset()
	viper.Set("database.path", db.Path)
	t.Cleanup(viper.Reset)
}

func TestHistoryCmd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	useDatabase(t, db)
	db.SeedAnalyses("analyst-1",
		testutil.OfferAnalysis("alice", model.ProductInvestmentGrowth),
		testutil.OfferAnalysis("bob", model.ProductPremiumCreditCard),
	)

	out := runCommand(t, historyCmd(), "--output", "json", "--customer", "bob")

	var records []service.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "bob", records[0].CustomerID)
	assert.Equal(t, "analyst-1", records[0].AnalystID)
	assert.Equal(t, model.ProductPremiumCreditCard, records[0].Product)

	customers := runCommand(t, historyCmd(), "--customers")
	assert.Equal(t, "alice\nbob\n", customers)
}

func TestStatsCmd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	useDatabase(t, db)
	db.SeedAnalyses("analyst-1",
		testutil.OfferAnalysis("alice", model.ProductInvestmentGrowth),
		testutil.OfferAnalysis("alice", model.ProductInvestmentGrowth),
	)

	out := runCommand(t, statsCmd(), "-o", "json")

	var stats service.AuditStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.TotalAnalyses)
	assert.Equal(t, 1, stats.UniqueCustomers)
	assert.Equal(t, 2, stats.ProductDistribution[model.ProductInvestmentGrowth])
}

func TestAnalyzeCmd_RecordsOffer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	useDatabase(t, db)

	statement := filepath.Join(t.TempDir(), "carol.csv")
	require.NoError(t, os.WriteFile(statement, []byte(
		"Date,Description,Amount,Category,Transaction Type,Account Name\n"+
			"1/05/2024,Big Purchase,60000,,debit,Checking\n"), 0o600))

	out := runCommand(t, analyzeCmd(), statement,
		"--income", "1000000", "--dti", "0.3", "--output", "json", "--record", "--analyst", "tester")

	var analysis model.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, model.ActionProactiveOffer, analysis.Action.Type)
	assert.Equal(t, model.ProductPremiumCreditCard, analysis.Action.Product)

	records, err := db.Storage.ListAnalyses(context.Background(), service.AnalysisFilter{CustomerID: "carol"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tester", records[0].AnalystID)
}

func TestAnalyzeCmd_ObligationPeriod(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	statement := filepath.Join(t.TempDir(), "erin.csv")
	require.NoError(t, os.WriteFile(statement, []byte(
		"Date,Description,Amount\n1/05/2024,Big Purchase,60000\n"), 0o600))

	tests := []struct {
		period     string
		wantRatio  float64
		wantAction model.ActionType
	}{
		{period: "annual", wantRatio: 50_000.0 / 1_200_000, wantAction: model.ActionProactiveOffer},
		{period: "monthly", wantRatio: 0.5, wantAction: model.ActionSafetyAdvice},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			out := runCommand(t, analyzeCmd(), statement, "--income", "1200000",
				"--obligation", "50000", "--obligation-period", tt.period, "--output", "json")

			var analysis model.Analysis
			require.NoError(t, json.Unmarshal([]byte(out), &analysis))
			assert.InDelta(t, tt.wantRatio, analysis.Verdict.Ratio, 1e-9)
			assert.Equal(t, tt.wantAction, analysis.Action.Type)
		})
	}
}

func TestAnalyzeCmd_InvalidRatio(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	statement := filepath.Join(t.TempDir(), "dave.csv")
	require.NoError(t, os.WriteFile(statement, []byte("Date,Description,Amount\n1/05/2024,Coffee,4\n"), 0o600))

	cmd := analyzeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{statement, "--dti=-1"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot analyze dave")
}
