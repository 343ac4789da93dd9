package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/pinecone"
)

// EmbedFunc encodes text into a fixed-dimension vector. The embedding model
// is opaque to the index; callers inject whatever client they run.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// VectorHit is one vector-search result mapped back to a document.
type VectorHit struct {
	DocumentID uuid.UUID
	Score      float64
	Metadata   map[string]any
}

// EmbeddingIndex owns the per-section vector records of a resume: one record
// per (document, section), overwritten in place on re-ingestion.
type EmbeddingIndex struct {
	log   *logger.Logger
	store pinecone.VectorStore
	embed EmbedFunc
}

func NewEmbeddingIndex(log *logger.Logger, store pinecone.VectorStore, embed EmbedFunc) (*EmbeddingIndex, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	if embed == nil {
		return nil, fmt.Errorf("embed func required")
	}
	return &EmbeddingIndex{
		log:   log.With("service", "EmbeddingIndex"),
		store: store,
		embed: embed,
	}, nil
}

const contentPreviewLimit = 1000

// UpsertSection writes/overwrites the vector record keyed (documentID, section).
// Callers must guard against empty text.
func (ix *EmbeddingIndex) UpsertSection(ctx context.Context, documentID uuid.UUID, section string, text string, metadata map[string]any) error {
	if documentID == uuid.Nil {
		return fmt.Errorf("documentID required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty section text for %s/%s", documentID, section)
	}

	values, err := ix.embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed %s section: %w", section, err)
	}

	meta := make(map[string]any, len(metadata)+3)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["document_id"] = documentID.String()
	meta["section_type"] = section
	meta["content"] = previewOf(text)

	if err := ix.store.Upsert(ctx, []pinecone.Vector{{
		ID:       VectorID(documentID, section),
		Values:   values,
		Metadata: meta,
	}}); err != nil {
		return storageErr("vector", err)
	}
	return nil
}

// Query embeds text and returns up to limit nearest records filtered to the
// given section (SectionAll or empty disables the filter). Ordering is
// deterministic: score descending, then vector ID ascending.
func (ix *EmbeddingIndex) Query(ctx context.Context, text string, section string, limit int) ([]VectorHit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	q, err := ix.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var filter map[string]any
	if section != "" && section != SectionAll {
		filter = map[string]any{"section_type": section}
	}

	matches, err := ix.store.QueryMatches(ctx, q, limit, filter)
	if err != nil {
		return nil, storageErr("vector", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})

	out := make([]VectorHit, 0, len(matches))
	for _, m := range matches {
		docID, ok := documentIDOfMatch(m)
		if !ok {
			ix.log.Warn("vector match without resolvable document id", "vector_id", m.ID)
			continue
		}
		out = append(out, VectorHit{
			DocumentID: docID,
			Score:      m.Score,
			Metadata:   m.Metadata,
		})
	}
	return out, nil
}

// DeleteDocument removes every section record for the document. Absent
// records are tolerated.
func (ix *EmbeddingIndex) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	if documentID == uuid.Nil {
		return nil
	}
	ids := make([]string, 0, len(allSections))
	for _, section := range allSections {
		ids = append(ids, VectorID(documentID, section))
	}
	if err := ix.store.DeleteIDs(ctx, ids); err != nil {
		return storageErr("vector", err)
	}
	return nil
}

func documentIDOfMatch(m pinecone.VectorMatch) (uuid.UUID, bool) {
	if raw, ok := m.Metadata["document_id"].(string); ok {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			return id, true
		}
	}
	return DocumentIDFromVectorID(m.ID)
}

func previewOf(text string) string {
	runes := []rune(text)
	if len(runes) <= contentPreviewLimit {
		return text
	}
	return string(runes[:contentPreviewLimit])
}
