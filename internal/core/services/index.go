package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// documentNamespace scopes document IDs so equal content always maps to the same ID.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("pilah.indexed-document"))

// IndexService builds the vector index from seed rows and category definitions.
type IndexService struct {
	store     driven.WasteStore
	vectors   driven.VectorIndex
	embedding driven.EmbeddingService
}

// NewIndexService creates an index builder.
func NewIndexService(
	store driven.WasteStore,
	vectors driven.VectorIndex,
	embedding driven.EmbeddingService,
) *IndexService {
	return &IndexService{
		store:     store,
		vectors:   vectors,
		embedding: embedding,
	}
}

// Documents builds the ordered document set: one per seed row, then one per category definition.
func (s *IndexService) Documents(ctx context.Context) ([]domain.IndexedDocument, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing waste items: %w", err)
	}

	docs := make([]domain.IndexedDocument, 0, len(items)+len(categoryDefinitions))
	for _, item := range items {
		docs = append(docs, newDocument(
			ItemDocumentText(item),
			domain.DocumentMetadata{Source: domain.SourceWasteItems, Category: item.Category},
		))
	}
	for _, def := range categoryDefinitions {
		docs = append(docs, newDocument(
			def.text,
			domain.DocumentMetadata{Source: domain.SourceDefinition, Category: def.category},
		))
	}
	return docs, nil
}

// ItemDocumentText renders a seed row as retrievable text.
func ItemDocumentText(item domain.WasteItem) string {
	return fmt.Sprintf("Nama: %s\nKategori: %s\nDeskripsi: %s", item.Name, item.Category, item.Description)
}

func newDocument(content string, meta domain.DocumentMetadata) domain.IndexedDocument {
	return domain.IndexedDocument{
		ID:       uuid.NewSHA1(documentNamespace, []byte(content)).String(),
		Content:  content,
		Metadata: meta,
	}
}

// Fingerprint hashes the embedding model, its dimensions and the document IDs
// in order. Vectors from another model are never reused.
func Fingerprint(docs []domain.IndexedDocument, model string, dims int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00", model, dims)
	for _, d := range docs {
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *IndexService) fingerprint(docs []domain.IndexedDocument) string {
	if s.embedding == nil {
		return Fingerprint(docs, "", 0)
	}
	return Fingerprint(docs, s.embedding.ModelName(), s.embedding.Dimensions())
}

// Rebuild discards the index and embeds the full document set.
func (s *IndexService) Rebuild(ctx context.Context) (domain.IndexStats, error) {
	logger.Section("Index Rebuild")

	docs, err := s.Documents(ctx)
	if err != nil {
		return domain.IndexStats{}, err
	}
	return s.rebuild(ctx, docs)
}

func (s *IndexService) rebuild(ctx context.Context, docs []domain.IndexedDocument) (domain.IndexStats, error) {
	if s.embedding == nil {
		return domain.IndexStats{}, domain.ErrEmbeddingUnavailable
	}
	if err := s.vectors.Reset(ctx); err != nil {
		return domain.IndexStats{}, fmt.Errorf("resetting vector index: %w", err)
	}
	logger.Debug("Vector index reset")

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	if len(texts) > 0 {
		logger.Debug("Embedding %d documents with %s", len(texts), s.embedding.ModelName())
		embeddings, err := s.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return domain.IndexStats{}, fmt.Errorf("embedding documents: %w", err)
		}
		if len(embeddings) != len(docs) {
			return domain.IndexStats{}, fmt.Errorf("embedding documents: got %d vectors for %d documents",
				len(embeddings), len(docs))
		}
		if err := s.vectors.Add(ctx, docs, embeddings); err != nil {
			return domain.IndexStats{}, fmt.Errorf("adding documents: %w", err)
		}
	}

	fp := s.fingerprint(docs)
	if err := s.vectors.SetFingerprint(ctx, fp); err != nil {
		return domain.IndexStats{}, fmt.Errorf("storing fingerprint: %w", err)
	}

	logger.Info("Indexed %d documents", len(docs))
	return domain.IndexStats{Documents: len(docs), Fingerprint: fp, Rebuilt: true}, nil
}

// Ensure rebuilds in rebuild mode, and only on fingerprint change in incremental mode.
func (s *IndexService) Ensure(ctx context.Context, mode domain.IndexMode) (domain.IndexStats, error) {
	if !mode.IsValid() {
		return domain.IndexStats{}, fmt.Errorf("%w: index mode %q", domain.ErrInvalidInput, mode)
	}
	if mode == domain.IndexModeRebuild {
		return s.Rebuild(ctx)
	}

	logger.Section("Index Check")
	docs, err := s.Documents(ctx)
	if err != nil {
		return domain.IndexStats{}, err
	}

	want := s.fingerprint(docs)
	have, err := s.vectors.Fingerprint(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("reading fingerprint: %w", err)
	}
	if have == want {
		logger.Debug("Index fingerprint unchanged (%s), skipping rebuild", want[:12])
		return domain.IndexStats{Documents: len(docs), Fingerprint: want}, nil
	}

	logger.Info("Document set or embedding model changed, rebuilding index")
	return s.rebuild(ctx, docs)
}
