package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/persona"
	"github.com/Veraticus/finpulse/internal/service"
)

// Classifier implements persona.Classifier with a language model.
// Its output is untrusted: every result passes through persona.Normalize.
type Classifier struct {
	client      Client
	cache       *resultCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	cacheScope  string
	retryOpts   service.RetryOptions
}

var _ persona.Classifier = (*Classifier)(nil)

// NewClassifier creates a classifier for the configured provider.
func NewClassifier(ctx context.Context, cfg Config, logger *slog.Logger) (*Classifier, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewClassifierWithClient(client, cfg, logger), nil
}

// NewClassifierWithClient wraps an existing client.
func NewClassifierWithClient(client Client, cfg Config, logger *slog.Logger) *Classifier {
	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Classifier{
		client:      client,
		cache:       newResultCache(cfg.CacheTTL),
		logger:      common.LoggerOrDefault(logger),
		rateLimiter: newRateLimiter(cfg.RateLimit),
		cacheScope:  cfg.Provider + "/" + cfg.Model,
		retryOpts:   retryOpts,
	}
}

// Classify asks the model for a persona and life event.
// Failures are wrapped in common.ErrClassifierUnavailable.
func (c *Classifier) Classify(ctx context.Context, req persona.Request) (model.ClassifierResult, error) {
	prompt := buildPrompt(req)
	key := cacheKey(c.cacheScope, prompt)

	if result, found := c.cache.get(key); found {
		c.logger.Debug("cache hit for classification", "persona", result.Persona)
		return result, nil
	}

	var result model.ClassifierResult
	err := common.WithRetry(ctx, func() error {
		if err := c.rateLimiter.wait(ctx); err != nil {
			return common.Permanent(err)
		}

		content, err := c.client.Complete(ctx, systemPrompt, prompt)
		if err != nil {
			return err
		}

		parsed, err := parseClassification(content)
		if err != nil {
			// A malformed reply is worth another sample.
			return common.Transient(err)
		}
		result = persona.Normalize(parsed)
		return nil
	}, c.retryOpts)
	if err != nil {
		return model.ClassifierResult{}, fmt.Errorf("%w: %w", common.ErrClassifierUnavailable, err)
	}

	c.cache.set(key, result)

	c.logger.Info("customer classified",
		"persona", result.Persona,
		"life_event", result.LifeEvent,
		"confidence", result.Confidence)

	return result, nil
}

// Close releases background resources.
func (c *Classifier) Close() error {
	c.cache.Close()
	c.rateLimiter.Close()
	return nil
}
