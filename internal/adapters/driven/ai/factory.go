// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminiembed "github.com/pilah-labs/pilah/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/pilah-labs/pilah/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/pilah-labs/pilah/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/pilah-labs/pilah/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/pilah-labs/pilah/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/pilah-labs/pilah/internal/adapters/driven/llm/ollama"
	openaillm "github.com/pilah-labs/pilah/internal/adapters/driven/llm/openai"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "Run 'pilah config set' to fix"

// InitResult holds the AI services for the chatbot. Either service may be nil
// when its provider is unconfigured or unreachable; Warnings says why.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init creates and validates both services. Failures become warnings so the
// chatbot can still start and report errors per question.
func Init(settings *domain.Settings) *InitResult {
	result := &InitResult{}

	emb, err := CreateAndValidateEmbeddingService(&settings.Embedding, settings.LLM.RequestsPerMinute)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case emb == nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedding provider %q is not configured", settings.Embedding.Provider))
	default:
		result.EmbeddingService = emb
	}

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case llm == nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("LLM provider %q is not configured", settings.LLM.Provider))
	default:
		result.LLMService = llm
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings, rpm int) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings, rpm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates an embedding service, pings it and closes it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings, 0)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc.Ping)
}

// ValidateLLMConfig creates an LLM service, pings it and closes it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc.Ping)
}

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil when the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, rpm int) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderGemini:
		svc, err := geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey:            settings.APIKey,
			Model:             settings.Model,
			Dimensions:        dimensions,
			RequestsPerMinute: rpm,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		return nil, errors.New("anthropic does not support embeddings, use gemini, ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service named by settings.
// Returns nil when the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		svc, err := geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:            settings.APIKey,
			Model:             settings.Model,
			RequestsPerMinute: settings.RequestsPerMinute,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func ping(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return fn(ctx)
}
