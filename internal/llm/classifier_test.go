package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/persona"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient replays responses in order, repeating the last one.
type scriptedClient struct {
	errs      []error
	responses []string
	prompts   []string
	mu        sync.Mutex
}

func (s *scriptedClient) Complete(_ context.Context, _, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func (s *scriptedClient) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func testConfig() Config {
	return Config{Provider: "test", MaxRetries: 3, RetryDelay: time.Millisecond, RateLimit: 600}
}

func testRequest() persona.Request {
	return persona.Request{
		Insights: model.Insights{
			TotalSpend:     decimal.NewFromInt(8_000),
			SalaryDetected: true,
			CategoryCounts: map[model.Category]int{model.CategorySalary: 1, model.CategoryInvestment: 1},
		},
		Description: "asked about retirement savings",
		Profile:     &model.Profile{Age: 41},
	}
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name      string
		client    *scriptedClient
		want      model.ClassifierResult
		wantCalls int
		wantErr   bool
	}{
		{
			name:   "plain JSON",
			client: &scriptedClient{responses: []string{`{"persona":"saver","life_event":"employed","confidence":82,"reason":"steady salary"}`}},
			want: model.ClassifierResult{
				Persona: model.PersonaSaver, LifeEvent: model.LifeEventEmployed,
				Confidence: 82, Reason: "steady salary", Source: model.SourceModel,
			},
			wantCalls: 1,
		},
		{
			name:   "fenced JSON with fractional confidence",
			client: &scriptedClient{responses: []string{"```json\n{\"persona\":\"Spender\",\"life_event\":\"shopping\",\"confidence\":0.7,\"reason\":\"r\"}\n```"}},
			want: model.ClassifierResult{
				Persona: model.PersonaSpender, LifeEvent: model.LifeEventShopping,
				Confidence: 70, Reason: "r", Source: model.SourceModel,
			},
			wantCalls: 1,
		},
		{
			name:   "hallucinated enums are normalized",
			client: &scriptedClient{responses: []string{`{"persona":"millionaire","life_event":"wedding","confidence":180,"reason":"r"}`}},
			want: model.ClassifierResult{
				Persona: model.PersonaGeneral, LifeEvent: model.LifeEventUnknown,
				Confidence: persona.MaxConfidence, Reason: "r", Source: model.SourceModel,
			},
			wantCalls: 1,
		},
		{
			name: "malformed reply is resampled",
			client: &scriptedClient{responses: []string{
				"I think this customer is a saver.",
				`{"persona":"saver","life_event":"unknown","confidence":55,"reason":"r"}`,
			}},
			want: model.ClassifierResult{
				Persona: model.PersonaSaver, LifeEvent: model.LifeEventUnknown,
				Confidence: 55, Reason: "r", Source: model.SourceModel,
			},
			wantCalls: 2,
		},
		{
			name: "transient errors are retried",
			client: &scriptedClient{
				errs:      []error{common.Transient(errors.New("502")), nil},
				responses: []string{"", `{"persona":"student","life_event":"higher_education","confidence":90,"reason":"tuition"}`},
			},
			want: model.ClassifierResult{
				Persona: model.PersonaStudent, LifeEvent: model.LifeEventHigherEducation,
				Confidence: 90, Reason: "tuition", Source: model.SourceModel,
			},
			wantCalls: 2,
		},
		{
			name:      "permanent errors stop immediately",
			client:    &scriptedClient{errs: []error{common.Permanent(errors.New("401 unauthorized"))}, responses: []string{""}},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:      "retries are bounded",
			client:    &scriptedClient{responses: []string{"not json"}},
			wantCalls: 3,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewClassifierWithClient(tt.client, testConfig(), nil)
			defer func() { _ = classifier.Close() }()

			got, err := classifier.Classify(context.Background(), testRequest())
			assert.Equal(t, tt.wantCalls, tt.client.calls())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrClassifierUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_CachesByRequest(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"persona":"saver","life_event":"employed","confidence":60,"reason":"r"}`}}
	classifier := NewClassifierWithClient(client, testConfig(), nil)
	defer func() { _ = classifier.Close() }()

	req := testRequest()
	first, err := classifier.Classify(context.Background(), req)
	require.NoError(t, err)
	second, err := classifier.Classify(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls())

	req.Description = "paying college tuition"
	_, err = classifier.Classify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls())
}

func TestClassifier_RespectsContext(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("connection reset")}, responses: []string{"x"}}
	cfg := testConfig()
	cfg.RetryDelay = time.Second
	classifier := NewClassifierWithClient(client, cfg, nil)
	defer func() { _ = classifier.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := classifier.Classify(ctx, testRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrClassifierUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
