package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
)

// Default weighting for the combined score. The weights are plain multipliers
// and are deliberately not normalized to sum to 1 (see DESIGN.md).
const (
	DefaultVectorWeight    = 0.6
	DefaultGraphWeight     = 0.4
	DefaultMinSharedSkills = 2
	DefaultLimit           = 10
)

// VectorSearcher is the slice of EmbeddingIndex the ranker needs.
type VectorSearcher interface {
	Query(ctx context.Context, text string, section string, limit int) ([]VectorHit, error)
}

// GraphSearcher is the slice of GraphStore the ranker needs.
type GraphSearcher interface {
	FindSimilarBySkillOverlap(ctx context.Context, documentID uuid.UUID, minSharedSkills, limit int) ([]SkillOverlapHit, error)
}

// DocumentResolver hydrates display metadata for documents from the
// relational store. Missing IDs are simply absent from the returned map.
type DocumentResolver interface {
	ResolveFileNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// RankedResult is one entry of a hybrid search response. Query-scoped, never
// persisted.
type RankedResult struct {
	DocumentID     uuid.UUID `json:"document_id"`
	FileName       string    `json:"file_name"`
	VectorScore    float64   `json:"vector_score"`
	GraphScore     float64   `json:"graph_score"`
	CombinedScore  float64   `json:"combined_score"`
	MatchingSkills []string  `json:"matching_skills"`
}

// SearchOptions tune one Search call. Zero values fall back to the defaults
// above.
type SearchOptions struct {
	VectorWeight    float64
	GraphWeight     float64
	MinSharedSkills int
	Limit           int
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.VectorWeight == 0 && o.GraphWeight == 0 {
		o.VectorWeight = DefaultVectorWeight
		o.GraphWeight = DefaultGraphWeight
	}
	if o.MinSharedSkills <= 0 {
		o.MinSharedSkills = DefaultMinSharedSkills
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Ranker merges vector-similarity and graph-neighborhood results into one
// ranked list. Stateless: every Search call is an independent computation.
type Ranker struct {
	log      *logger.Logger
	vectors  VectorSearcher
	graph    GraphSearcher
	resolver DocumentResolver
}

func NewRanker(log *logger.Logger, vectors VectorSearcher, graph GraphSearcher, resolver DocumentResolver) (*Ranker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if vectors == nil {
		return nil, fmt.Errorf("vector searcher required")
	}
	if graph == nil {
		return nil, fmt.Errorf("graph searcher required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("document resolver required")
	}
	return &Ranker{
		log:      log.With("service", "HybridRanker"),
		vectors:  vectors,
		graph:    graph,
		resolver: resolver,
	}, nil
}

type mergedEntry struct {
	fileName    string
	vectorScore float64
	graphScore  float64
	skills      map[string]struct{}
}

// Search runs the hybrid retrieval:
//
//  1. vector query on the full_text section, hydrated from the relational
//     store (unresolvable documents are dropped, not fatal);
//  2. one graph overlap query seeded by the single top vector hit; graph
//     search never runs without a vector seed;
//  3. merge by document ID, combined score computed once after merging;
//  4. order by combined score descending, document ID ascending, truncate.
//
// An empty query yields an empty result, not an error. Backend failures
// propagate as ErrStorageUnavailable.
func (r *Ranker) Search(ctx context.Context, query string, opts SearchOptions) ([]RankedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []RankedResult{}, nil
	}
	opts = opts.withDefaults()

	vectorHits, err := r.vectors.Query(ctx, query, SectionFullText, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	vectorHits = r.hydrate(ctx, vectorHits)
	if len(vectorHits) == 0 {
		return []RankedResult{}, nil
	}

	seed := vectorHits[0].DocumentID
	graphHits, err := r.graph.FindSimilarBySkillOverlap(ctx, seed, opts.MinSharedSkills, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("graph search (seed %s): %w", seed, err)
	}

	merged := make(map[uuid.UUID]*mergedEntry, len(vectorHits)+len(graphHits))
	for _, hit := range vectorHits {
		if _, exists := merged[hit.DocumentID]; exists {
			continue
		}
		merged[hit.DocumentID] = &mergedEntry{
			fileName:    fileNameOfHit(hit),
			vectorScore: hit.Score * opts.VectorWeight,
			skills:      make(map[string]struct{}),
		}
	}
	for _, hit := range graphHits {
		entry, exists := merged[hit.DocumentID]
		if !exists {
			entry = &mergedEntry{
				fileName: hit.FileName,
				skills:   make(map[string]struct{}),
			}
			merged[hit.DocumentID] = entry
		}
		score := hit.Similarity * opts.GraphWeight
		if score > entry.graphScore {
			entry.graphScore = score
		}
		for _, name := range hit.SharedSkills {
			entry.skills[name] = struct{}{}
		}
	}

	// Combined scores are computed once after all merging so results cannot
	// depend on merge order.
	results := make([]RankedResult, 0, len(merged))
	for docID, entry := range merged {
		results = append(results, RankedResult{
			DocumentID:     docID,
			FileName:       entry.fileName,
			VectorScore:    entry.vectorScore,
			GraphScore:     entry.graphScore,
			CombinedScore:  entry.vectorScore + entry.graphScore,
			MatchingSkills: sortedSkills(entry.skills),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CombinedScore == results[j].CombinedScore {
			return results[i].DocumentID.String() < results[j].DocumentID.String()
		}
		return results[i].CombinedScore > results[j].CombinedScore
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// hydrate attaches file names from the relational store and drops hits whose
// document no longer exists there. A wholesale resolver failure degrades
// instead of failing the search: ErrStorageUnavailable is reserved for the
// vector and graph backends, and every hit still carries usable metadata from
// the vector store, so results are served with those file names and a warning.
func (r *Ranker) hydrate(ctx context.Context, hits []VectorHit) []VectorHit {
	if len(hits) == 0 {
		return hits
	}
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.DocumentID)
	}
	names, err := r.resolver.ResolveFileNames(ctx, ids)
	if err != nil {
		r.log.Warn("file name hydration failed; keeping vector metadata", "error", err)
		return hits
	}

	out := hits[:0]
	for _, h := range hits {
		name, ok := names[h.DocumentID]
		if !ok {
			r.log.Warn("dropping vector hit for unresolvable document",
				"document_id", h.DocumentID,
				"reason", ErrDocumentNotResolvable.Error(),
			)
			continue
		}
		if h.Metadata == nil {
			h.Metadata = map[string]any{}
		}
		h.Metadata["file_name"] = name
		out = append(out, h)
	}
	return out
}

func fileNameOfHit(hit VectorHit) string {
	if name, ok := hit.Metadata["file_name"].(string); ok {
		return name
	}
	return ""
}

func sortedSkills(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
