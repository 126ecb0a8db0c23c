package guardrail

import (
	"errors"
	"math"
	"testing"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		ratio     float64
		threshold float64
		want      model.GuardrailStatus
		wantErr   error
	}{
		{name: "no obligation passes", ratio: 0, threshold: 0.45, want: model.GuardrailPass},
		{name: "below threshold passes", ratio: 0.30, threshold: 0.45, want: model.GuardrailPass},
		{name: "at threshold alerts", ratio: 0.45, threshold: 0.45, want: model.GuardrailAlert},
		{name: "above threshold alerts", ratio: 0.50, threshold: 0.45, want: model.GuardrailAlert},
		{name: "huge ratio alerts", ratio: math.Inf(1), threshold: 0.45, want: model.GuardrailAlert},
		{name: "negative ratio is rejected", ratio: -0.01, threshold: 0.45, wantErr: common.ErrGuardrailPrecondition},
		{name: "NaN ratio is rejected", ratio: math.NaN(), threshold: 0.45, wantErr: common.ErrGuardrailPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.ratio, tt.threshold)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.threshold, got.Threshold)
			assert.Equal(t, tt.want == model.GuardrailAlert, got.Blocked())
		})
	}
}

func TestGate_UsesConfiguredThreshold(t *testing.T) {
	gate := NewGate(0.60)

	got, err := gate.Evaluate(0.50)
	require.NoError(t, err)

	assert.Equal(t, model.GuardrailPass, got.Status)
	assert.InDelta(t, 0.60, gate.Threshold(), 1e-12)
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name       string
		obligation decimal.Decimal
		income     decimal.Decimal
		want       float64
		wantErr    bool
	}{
		{name: "simple ratio", obligation: decimal.NewFromInt(300_000), income: decimal.NewFromInt(1_000_000), want: 0.3},
		{name: "zero obligation", obligation: decimal.Zero, income: decimal.NewFromInt(10), want: 0},
		{name: "zero income", obligation: decimal.NewFromInt(1), income: decimal.Zero, wantErr: true},
		{name: "negative obligation", obligation: decimal.NewFromInt(-1), income: decimal.NewFromInt(10), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ratio(tt.obligation, tt.income)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
