package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hirebridge/hirebridge-backend/internal/cache"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/search"
)

// Section relevance multipliers for the section-scoped (vector-only) search
// path.
var sectionRelevanceWeights = map[string]float64{
	search.SectionSkills:     1.2,
	search.SectionExperience: 1.0,
	"education":              0.8,
	"projects":               1.0,
	search.SectionFullText:   0.9,
}

// SectionResult is one hit of a section-scoped vector search.
type SectionResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	FileName   string    `json:"file_name"`
	Section    string    `json:"section"`
	Score      float64   `json:"score"`
	Relevance  float64   `json:"relevance"`
}

type SearchService interface {
	// Search runs the hybrid vector+graph ranking.
	Search(ctx context.Context, query string, opts search.SearchOptions) ([]search.RankedResult, error)
	// SearchSections runs a vector-only search scoped to one section (or all),
	// scoring hits with section relevance multipliers.
	SearchSections(ctx context.Context, query string, section string, limit int) ([]SectionResult, error)
}

type searchService struct {
	log     *logger.Logger
	ranker  *search.Ranker
	index   *search.EmbeddingIndex
	results cache.SearchCache
}

// NewSearchService wires the hybrid ranker behind an optional Redis result
// cache (nil disables caching).
func NewSearchService(log *logger.Logger, ranker *search.Ranker, index *search.EmbeddingIndex, results cache.SearchCache) (SearchService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ranker == nil {
		return nil, fmt.Errorf("ranker required")
	}
	if index == nil {
		return nil, fmt.Errorf("embedding index required")
	}
	return &searchService{
		log:     log.With("service", "SearchService"),
		ranker:  ranker,
		index:   index,
		results: results,
	}, nil
}

func (s *searchService) Search(ctx context.Context, query string, opts search.SearchOptions) ([]search.RankedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []search.RankedResult{}, nil
	}

	var key string
	if s.results != nil {
		key = cache.Key(query, opts)
		if cached, hit := s.results.Get(ctx, key); hit {
			s.log.Debug("search cache hit", "query", query)
			return cached, nil
		}
	}

	results, err := s.ranker.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	if s.results != nil {
		s.results.Set(ctx, key, results)
	}
	return results, nil
}

func (s *searchService) SearchSections(ctx context.Context, query string, section string, limit int) ([]SectionResult, error) {
	cleaned, parsedSection := search.ParseQuery(query)
	if cleaned == "" {
		return []SectionResult{}, nil
	}
	if section == "" {
		section = parsedSection
	}
	if !search.ValidSection(section) && sectionRelevanceWeights[section] == 0 {
		return nil, fmt.Errorf("unknown section %q", section)
	}
	if limit <= 0 {
		limit = search.DefaultLimit
	}

	hits, err := s.index.Query(ctx, cleaned, section, limit)
	if err != nil {
		return nil, err
	}

	out := make([]SectionResult, 0, len(hits))
	for _, hit := range hits {
		hitSection := section
		if raw, ok := hit.Metadata["section_type"].(string); ok && raw != "" {
			hitSection = raw
		}
		weight, ok := sectionRelevanceWeights[hitSection]
		if !ok {
			weight = 1.0
		}
		fileName, _ := hit.Metadata["file_name"].(string)
		out = append(out, SectionResult{
			DocumentID: hit.DocumentID,
			FileName:   fileName,
			Section:    hitSection,
			Score:      hit.Score,
			Relevance:  hit.Score * weight,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance == out[j].Relevance {
			return out[i].DocumentID.String() < out[j].DocumentID.String()
		}
		return out[i].Relevance > out[j].Relevance
	})
	return out, nil
}
