package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultTopK is the number of documents retrieved per question.
const DefaultTopK = 5

// ChatConfig tunes retrieval and generation.
type ChatConfig struct {
	// TopK is the number of documents retrieved. Defaults to DefaultTopK.
	TopK int

	// MinSimilarity drops hits below it. Zero keeps every hit.
	MinSimilarity float64

	// Generate is passed to the LLM unchanged.
	Generate driven.GenerateOptions
}

// ChatService answers waste questions by retrieval-augmented generation.
type ChatService struct {
	vectors   driven.VectorIndex
	embedding driven.EmbeddingService
	llm       driven.LLMService
	prompts   driven.PromptStore
	cfg       ChatConfig
}

// NewChatService creates a chat service. prompts may be nil, in which case
// PromptTemplate is used.
func NewChatService(
	vectors driven.VectorIndex,
	embedding driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg ChatConfig,
) *ChatService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &ChatService{
		vectors:   vectors,
		embedding: embedding,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg,
	}
}

// Retrieve embeds the question and returns the closest documents, best first.
func (s *ChatService) Retrieve(ctx context.Context, question string) ([]domain.IndexedDocument, error) {
	if s.embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectors == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	vec, err := s.embedding.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := s.vectors.Search(ctx, vec, s.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	docs := make([]domain.IndexedDocument, 0, len(hits))
	for _, h := range hits {
		if s.cfg.MinSimilarity > 0 && h.Similarity < s.cfg.MinSimilarity {
			logger.Debug("Dropping hit %s: similarity %.3f below %.3f",
				h.Document.ID, h.Similarity, s.cfg.MinSimilarity)
			continue
		}
		docs = append(docs, h.Document)
	}

	if len(docs) == 0 {
		return nil, domain.ErrNoRelevantInformation
	}
	logger.Debug("Retrieved %d documents", len(docs))
	return docs, nil
}

// Ask answers a question. Every failure is reported in the answer status.
func (s *ChatService) Ask(ctx context.Context, question string) domain.Answer {
	logger.Section("Chat")

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ErrorAnswer(question, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput))
	}
	logger.Debug("Question: %q", question)

	docs, err := s.Retrieve(ctx, question)
	if errors.Is(err, domain.ErrNoRelevantInformation) {
		logger.Info("No relevant documents for question")
		return domain.NoInformationAnswer(question)
	}
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return domain.ErrorAnswer(question, err)
	}

	if s.llm == nil {
		return domain.ErrorAnswer(question, domain.ErrLLMUnavailable)
	}

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}
	prompt := RenderPrompt(s.template(), joinContext(contents), question)

	out, err := s.llm.Generate(ctx, prompt, s.cfg.Generate)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return domain.ErrorAnswer(question, fmt.Errorf("generating answer: %w", err))
	}

	// Only failures may carry the error marker, so a model answer that
	// quotes it gets the lower-case phrase instead.
	text := strings.ReplaceAll(strings.TrimSpace(out), domain.ErrorMarker, strings.ToLower(domain.ErrorMarker))
	status := domain.ClassifyAnswerText(text)
	logger.Debug("Answer status: %s", status)

	return domain.Answer{
		Question: question,
		Text:     text,
		Status:   status,
		Sources:  docs,
	}
}

func (s *ChatService) template() string {
	if s.prompts == nil {
		return PromptTemplate
	}
	tmpl, err := s.prompts.Load(driven.PromptChatAnswer)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			logger.Warn("Loading prompt %s: %v", driven.PromptChatAnswer, err)
		}
		return PromptTemplate
	}
	return tmpl
}
