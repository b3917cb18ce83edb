// Package gemini provides an LLM service adapter for the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pilah-labs/pilah/internal/adapters/driven/ratelimit"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gemini-1.5-flash"
	maxAttempts    = 3
	defaultBackoff = 300 * time.Millisecond
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
}

type generateFunc func(ctx context.Context, cfg genai.GenerationConfig, prompt string) (*genai.GenerateContentResponse, error)

// LLMService generates answers with a Gemini model.
type LLMService struct {
	client   *genai.Client
	model    string
	limiter  *ratelimit.Limiter
	generate generateFunc
	backoff  time.Duration
}

// NewLLMService creates a Gemini client. An API key is required.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrInvalidInput)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	s := &LLMService{
		client:  client,
		model:   model,
		limiter: ratelimit.PerMinute(cfg.RequestsPerMinute),
		backoff: defaultBackoff,
	}
	s.generate = s.callModel
	return s, nil
}

func (s *LLMService) callModel(ctx context.Context, cfg genai.GenerationConfig, prompt string) (*genai.GenerateContentResponse, error) {
	m := s.client.GenerativeModel(s.model)
	m.GenerationConfig = cfg
	return m.GenerateContent(ctx, genai.Text(prompt))
}

// Generate asks the model, retrying transient failures with a growing pause.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	cfg := genai.GenerationConfig{
		Temperature:   ptrFloat32(float32(opts.Temperature)),
		StopSequences: opts.StopWords,
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = ptrInt32(int32(opts.MaxTokens))
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := s.generate(ctx, cfg, prompt)
		if err == nil {
			txt := strings.TrimSpace(firstText(resp))
			if txt == "" {
				return "", errors.New("gemini: empty response")
			}
			return txt, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		if IsQuotaError(err) {
			s.limiter.Backoff(0)
		}
		logger.Debug("gemini attempt %d/%d failed: %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			if err := sleep(ctx, time.Duration(attempt)*s.backoff); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("gemini: %w", lastErr)
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches model metadata, which validates the key without generating.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// IsQuotaError reports whether err looks like a quota or rate rejection.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "quota")
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func ptrFloat32(v float32) *float32 { return &v }

func ptrInt32(v int32) *int32 { return &v }
