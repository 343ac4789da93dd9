package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirebridge/hirebridge-backend/internal/ingest"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/repos"
	"github.com/hirebridge/hirebridge-backend/internal/search"
)

type ResumeHandler struct {
	log     *logger.Logger
	pipe    *ingest.Pipeline
	resumes repos.ResumeRepo
	graph   search.GraphStore
}

func NewResumeHandler(log *logger.Logger, pipe *ingest.Pipeline, resumes repos.ResumeRepo, graph search.GraphStore) *ResumeHandler {
	return &ResumeHandler{
		log:     log.With("handler", "ResumeHandler"),
		pipe:    pipe,
		resumes: resumes,
		graph:   graph,
	}
}

type ingestRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
	RawText  string `json:"raw_text"`
}

// POST /api/resumes
// Run the full ingestion pipeline for one resume text.
func (h *ResumeHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}

	resume, err := h.pipe.ProcessResume(c.Request.Context(), userID, req.FileName, req.RawText)
	if err != nil {
		if errors.Is(err, ingest.ErrUnknownUser) {
			RespondError(c, http.StatusNotFound, "user_not_found", err)
			return
		}
		if errors.Is(err, search.ErrStorageUnavailable) {
			RespondError(c, http.StatusServiceUnavailable, "storage_unavailable", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "ingest_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"resume": resume})
}

// GET /api/resumes/:id
// Resume row plus, when processing has run, its extracted features and any
// processing error.
func (h *ResumeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_resume_id", err)
		return
	}
	resume, err := h.resumes.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "resume_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "resume_lookup_failed", err)
		return
	}

	payload := gin.H{"resume": resume}
	content, err := h.resumes.GetContent(c.Request.Context(), nil, id)
	switch {
	case err == nil:
		payload["extracted_features"] = content.ExtractedFeatures
		if content.ProcessingError != "" {
			payload["processing_error"] = content.ProcessingError
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// not processed yet
	default:
		RespondError(c, http.StatusInternalServerError, "resume_lookup_failed", err)
		return
	}
	RespondOK(c, payload)
}

// GET /api/resumes/:id/skills
// Skills attached to the resume in the graph, grouped by category.
func (h *ResumeHandler) GetSkills(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_resume_id", err)
		return
	}
	skills, err := h.graph.GetSkills(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, search.ErrStorageUnavailable) {
			RespondError(c, http.StatusServiceUnavailable, "storage_unavailable", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "skills_lookup_failed", err)
		return
	}
	grouped := map[string][]search.SkillRecord{}
	for _, skill := range skills {
		grouped[skill.Category] = append(grouped[skill.Category], skill)
	}
	RespondOK(c, gin.H{"resume_id": id, "skills": grouped})
}

// DELETE /api/resumes/:id
// Removes vectors, graph nodes and relational rows for the resume.
func (h *ResumeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_resume_id", err)
		return
	}
	if err := h.pipe.DeleteResume(c.Request.Context(), id); err != nil {
		if errors.Is(err, search.ErrStorageUnavailable) {
			RespondError(c, http.StatusServiceUnavailable, "storage_unavailable", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}
