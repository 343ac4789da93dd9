package chromemdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/pinecone"
)

// vectorStore is an in-process implementation of pinecone.VectorStore backed
// by chromem-go. It keeps local development and tests off the network; the
// interface contract (precomputed vectors in, scored matches out) is the same
// as the Pinecone adapter.
type vectorStore struct {
	log        *logger.Logger
	collection *chromem.Collection
}

func NewVectorStore(log *logger.Logger, collectionName string) (pinecone.VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(collectionName) == "" {
		collectionName = "resumes"
	}

	db := chromem.NewDB()
	// Vectors always arrive precomputed, so the collection-level embedding
	// function must never run.
	ef := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("chromemdb: no embedding function configured; vectors are precomputed")
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("chromemdb: create collection: %w", err)
	}

	log.Info("chromem vector store selected",
		"provider", "chromem",
		"collection", collectionName,
	)
	return &vectorStore{
		log:        log.With("service", "ChromemVectorStore"),
		collection: col,
	}, nil
}

func (s *vectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	if s == nil || len(vectors) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(vectors))
	for _, v := range vectors {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("chromemdb: vector id is required")
		}
		if len(v.Values) == 0 {
			return fmt.Errorf("chromemdb: vector %q has empty values", v.ID)
		}
		docs = append(docs, chromem.Document{
			ID:        v.ID,
			Embedding: v.Values,
			Metadata:  flattenMetadata(v.Metadata),
		})
	}
	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *vectorStore) QueryMatches(ctx context.Context, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	if s == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	if len(q) == 0 {
		return nil, fmt.Errorf("chromemdb: query vector required")
	}
	if topK <= 0 {
		topK = 10
	}

	// chromem requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, q, topK, flattenMetadata(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromemdb: query: %w", err)
	}

	out := make([]pinecone.VectorMatch, 0, len(results))
	for _, r := range results {
		out = append(out, pinecone.VectorMatch{
			ID:       r.ID,
			Score:    float64(r.Similarity),
			Metadata: expandMetadata(r.Metadata),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (s *vectorStore) DeleteIDs(ctx context.Context, ids []string) error {
	if s == nil || len(ids) == 0 {
		return nil
	}
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	// chromem errors on unknown IDs only when the collection is empty; absent
	// records are otherwise skipped, which matches the idempotent contract.
	if s.collection.Count() == 0 {
		return nil
	}
	return s.collection.Delete(ctx, nil, nil, clean...)
}

// chromem metadata is map[string]string; the store contract uses map[string]any.
func flattenMetadata(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case string:
			out[k] = t
		case []string:
			out[k] = strings.Join(t, ",")
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

func expandMetadata(in map[string]string) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
