package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		Insights: model.Insights{
			TotalSpend:     decimal.NewFromInt(60_000),
			AvgTransaction: decimal.NewFromInt(60_000),
			RiskLevel:      model.RiskMedium,
			StabilityScore: 0.5,
			HighSpender:    true,
		},
		Classification: model.ClassifierResult{
			Persona:    model.PersonaSpender,
			LifeEvent:  model.LifeEventUnknown,
			Confidence: 10,
			Reason:     "Customer identified as spender due to: high total spend.",
			Source:     model.SourceRules,
		},
		Recommendations: model.Recommendations{
			{ID: model.ProductPremiumCreditCard, Name: "Premium Rewards Credit Card", Confidence: 75, Reason: "High spending"},
		},
		Verdict: model.GuardrailVerdict{Status: model.GuardrailAlert, Ratio: 0.55, Threshold: 0.45},
		Action: model.Action{
			Type:        model.ActionSafetyAdvice,
			TemplateKey: "safety.counseling",
			Message:     "Consider the Smart Savings SIP before taking on new credit.",
			Product:     model.ProductSmartSavingsSIP,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		raw     string
		want    Format
		wantErr bool
	}{
		{raw: "", want: FormatText},
		{raw: "text", want: FormatText},
		{raw: "JSON", want: FormatJSON},
		{raw: " yaml ", want: FormatYAML},
		{raw: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseFormat(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderAnalysis(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderAnalysis(&buf, "cust-1", sampleAnalysis(), FormatJSON))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "SAFETY_ADVICE", decoded["action"].(map[string]any)["type"])
		assert.Equal(t, "ALERT", decoded["guardrail"].(map[string]any)["status"])
		assert.Equal(t, "60000", decoded["insights"].(map[string]any)["total_spend"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderAnalysis(&buf, "cust-1", sampleAnalysis(), FormatYAML))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "spender", decoded["classification"].(map[string]any)["persona"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderAnalysis(&buf, "cust-1", sampleAnalysis(), FormatText))

		out := buf.String()
		assert.Contains(t, out, "cust-1")
		assert.Contains(t, out, "SAFETY_ADVICE")
		assert.Contains(t, out, "ALERT")
		assert.Contains(t, out, "Premium Rewards Credit Card")
		assert.Contains(t, out, "Smart Savings SIP")
		assert.NotContains(t, out, "replaced by")
	})

	t.Run("substitution", func(t *testing.T) {
		a := sampleAnalysis()
		a.Substitution = &model.Substitution{
			From:   model.ProductPersonalLoan,
			To:     model.ProductSmartSavingsSIP,
			Reason: "low balance",
		}

		var text bytes.Buffer
		require.NoError(t, RenderAnalysis(&text, "cust-1", a, FormatText))
		assert.Contains(t, text.String(), "Instant Personal Loan replaced by Smart Savings SIP (low balance)")

		var encoded bytes.Buffer
		require.NoError(t, RenderAnalysis(&encoded, "cust-1", a, FormatJSON))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(encoded.Bytes(), &decoded))
		assert.Equal(t, "personal_loan", decoded["substitution"].(map[string]any)["from"])
	})
}

func TestRenderHistory(t *testing.T) {
	var empty bytes.Buffer
	require.NoError(t, RenderHistory(&empty, nil, FormatText))
	assert.Contains(t, empty.String(), "No analyses recorded yet")

	records := []service.AnalysisRecord{{
		CreatedAt:       time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		ID:              "a1",
		CustomerID:      "cust-42",
		Persona:         model.PersonaSaver,
		ActionType:      model.ActionProactiveOffer,
		Product:         model.ProductInvestmentGrowth,
		GuardrailStatus: model.GuardrailPass,
		DTIRatio:        0.2,
	}}

	var table bytes.Buffer
	require.NoError(t, RenderHistory(&table, records, FormatText))
	assert.Contains(t, table.String(), "cust-42")
	assert.Contains(t, table.String(), "investment_growth")
	assert.Contains(t, table.String(), "0.20")

	var js bytes.Buffer
	require.NoError(t, RenderHistory(&js, records, FormatJSON))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "cust-42", decoded[0]["customer_id"])
}

func TestRenderStats(t *testing.T) {
	stats := &service.AuditStats{
		TotalAnalyses:       3,
		UniqueCustomers:     2,
		GuardrailAlerts:     1,
		AverageConfidence:   42.5,
		ActionDistribution:  map[model.ActionType]int{model.ActionProactiveOffer: 2, model.ActionSafetyAdvice: 1},
		PersonaDistribution: map[model.Persona]int{model.PersonaSaver: 3},
		ProductDistribution: map[string]int{model.ProductInvestmentGrowth: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderStats(&buf, stats, FormatText))
	out := buf.String()
	assert.Contains(t, out, "Analyses: 3")
	assert.Contains(t, out, "Guardrail alerts: 1")
	assert.Contains(t, out, "PROACTIVE_OFFER")
	assert.Contains(t, out, "investment_growth")
}

func TestRenderBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	counts := map[model.ActionType]int{model.ActionProactiveOffer: 15, model.ActionSafetyAdvice: 4}
	require.NoError(t, RenderBatchSummary(&buf, 20, 1, counts))

	out := buf.String()
	assert.Contains(t, out, "Analyzed 19 customers")
	assert.Contains(t, out, "PROACTIVE_OFFER=15")
	assert.Contains(t, out, "NEUTRAL=0")
	assert.Contains(t, out, "1 statements failed")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2, "Analyzing")
	p.Step()
	p.Step()
	p.Finish()
	assert.NotEmpty(t, buf.String())
}
