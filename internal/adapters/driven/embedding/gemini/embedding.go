// Package gemini provides an embedding service adapter for the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pilah-labs/pilah/internal/adapters/driven/ratelimit"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// maxBatch is the largest batch the API accepts in one call.
	maxBatch = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	APIKey            string
	Model             string
	Dimensions        int
	RequestsPerMinute int
}

type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// EmbeddingService embeds text with a Gemini embedding model.
type EmbeddingService struct {
	client     *genai.Client
	model      string
	dimensions int
	limiter    *ratelimit.Limiter
	batch      batchFunc
}

// NewEmbeddingService creates a Gemini embedding client. An API key is required.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	s := &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		limiter:    ratelimit.PerMinute(cfg.RequestsPerMinute),
	}
	s.batch = s.callBatch
	return s, nil
}

func (s *EmbeddingService) callBatch(ctx context.Context, texts []string) ([][]float32, error) {
	em := s.client.EmbeddingModel(s.model)
	b := em.NewBatch()
	for _, t := range texts {
		b.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, b)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, e.Values)
	}
	return out, nil
}

// Embed generates one embedding.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds texts in chunks the API accepts, preserving order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		chunk, err := s.batch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("gemini: batch embed: %w", err)
		}
		if len(chunk) != end-start {
			return nil, fmt.Errorf("gemini: got %d embeddings for %d texts", len(chunk), end-start)
		}
		for i, v := range chunk {
			if len(v) == 0 {
				return nil, fmt.Errorf("gemini: no embedding returned for input %d", start+i)
			}
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// Dimensions returns the configured vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches model metadata.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.EmbeddingModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
