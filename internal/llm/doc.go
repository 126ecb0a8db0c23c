// Package llm provides a model-backed persona classifier and message renderer.
// Providers are OpenAI, Anthropic and Gemini. Classification calls are retried,
// rate limited and cached.
package llm
