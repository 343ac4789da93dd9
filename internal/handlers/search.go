package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/search"
	"github.com/hirebridge/hirebridge-backend/internal/services"
)

type SearchHandler struct {
	log *logger.Logger
	svc services.SearchService
}

func NewSearchHandler(log *logger.Logger, svc services.SearchService) *SearchHandler {
	return &SearchHandler{
		log: log.With("handler", "SearchHandler"),
		svc: svc,
	}
}

type searchRequest struct {
	Query           string  `json:"query"`
	VectorWeight    float64 `json:"vector_weight"`
	GraphWeight     float64 `json:"graph_weight"`
	MinSharedSkills int     `json:"min_shared_skills"`
	Limit           int     `json:"limit"`
}

// POST /api/search
// Hybrid vector+graph ranking over ingested resumes. An empty query returns
// an empty result set.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	results, err := h.svc.Search(c.Request.Context(), req.Query, search.SearchOptions{
		VectorWeight:    req.VectorWeight,
		GraphWeight:     req.GraphWeight,
		MinSharedSkills: req.MinSharedSkills,
		Limit:           req.Limit,
	})
	if err != nil {
		if errors.Is(err, search.ErrStorageUnavailable) {
			RespondError(c, http.StatusServiceUnavailable, "storage_unavailable", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "search_failed", err)
		return
	}
	RespondOK(c, gin.H{"query": req.Query, "count": len(results), "results": results})
}

// GET /api/search/sections?q=...&section=...&limit=...
// Vector-only search scoped to a single resume section.
func (h *SearchHandler) SearchSections(c *gin.Context) {
	query := c.Query("q")
	section := c.Query("section")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = parsed
	}

	results, err := h.svc.SearchSections(c.Request.Context(), query, section, limit)
	if err != nil {
		if errors.Is(err, search.ErrStorageUnavailable) {
			RespondError(c, http.StatusServiceUnavailable, "storage_unavailable", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "section_search_failed", err)
		return
	}
	RespondOK(c, gin.H{"query": query, "count": len(results), "results": results})
}
