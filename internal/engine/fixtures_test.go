package engine

import (
	"context"
	"testing"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/testutil/statements"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Fixtures(t *testing.T) {
	e := newRulesEngine(t)

	for _, f := range statements.AllFixtures() {
		t.Run(f.Name, func(t *testing.T) {
			req := Request{
				Transactions: f.Transactions(),
				Profile:      model.Profile{CustomerID: f.Name, Income: decimal.NewFromInt(1_200_000)},
			}

			req.DTIRatio = ratio(0.1)
			low, err := e.Evaluate(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, f.Persona, low.Classification.Persona)
			assert.Equal(t, f.LifeEvent, low.Classification.LifeEvent)
			assert.Equal(t, model.GuardrailPass, low.Verdict.Status)

			req.DTIRatio = ratio(0.9)
			high, err := e.Evaluate(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, model.ActionSafetyAdvice, high.Action.Type)
			assert.False(t, model.IsGatedProduct(high.Action.Product))
		})
	}
}
