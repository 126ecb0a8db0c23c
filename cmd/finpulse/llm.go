package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/finpulse/internal/llm"
	"github.com/Veraticus/finpulse/internal/persona"
	"github.com/spf13/viper"
)

// apiKeyEnv names the conventional environment variable of each provider.
var apiKeyEnv = map[string]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderGemini:    "GEMINI_API_KEY",
}

// llmConfigFromViper reads the llm.* keys. An empty provider means rules only.
func llmConfigFromViper() (llm.Config, error) {
	provider := strings.ToLower(viper.GetString("llm.provider"))

	cfg := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}
	if provider == "" {
		return cfg, nil
	}

	envName, ok := apiKeyEnv[provider]
	if !ok {
		return llm.Config{}, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	cfg.APIKey = viper.GetString("llm." + provider + "_api_key")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(envName)
	}
	if cfg.APIKey == "" {
		return llm.Config{}, fmt.Errorf("%s API key not found in config or %s environment variable", provider, envName)
	}

	return cfg, nil
}

// createClassifier returns a model-backed classifier when a provider is configured.
// Without one both return values are nil and the engine uses the rules classifier for its policy.
func createClassifier(ctx context.Context) (persona.Classifier, closer, error) {
	cfg, err := llmConfigFromViper()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Provider == "" {
		return nil, nil, nil
	}

	classifier, err := llm.NewClassifier(ctx, cfg, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s classifier: %w", cfg.Provider, err)
	}
	slog.Debug("Using model-backed classifier", "provider", cfg.Provider, "model", cfg.Model)

	return classifier, classifier, nil
}

// createRenderer returns a model-backed message renderer when llm.personalize_messages is set
// and a provider is configured. Both return values are nil otherwise.
func createRenderer(ctx context.Context) (*llm.MessageRenderer, error) {
	if !viper.GetBool("llm.personalize_messages") {
		return nil, nil
	}

	cfg, err := llmConfigFromViper()
	if err != nil {
		return nil, err
	}
	if cfg.Provider == "" {
		slog.Warn("llm.personalize_messages is set but no provider is configured, using templates")
		return nil, nil
	}

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s message renderer: %w", cfg.Provider, err)
	}
	return llm.NewMessageRenderer(client, cfg, slog.Default()), nil
}
