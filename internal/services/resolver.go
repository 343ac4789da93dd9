package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hirebridge/hirebridge-backend/internal/repos"
	"github.com/hirebridge/hirebridge-backend/internal/search"
)

type resumeResolver struct {
	resumes repos.ResumeRepo
}

// NewResumeResolver adapts the resume repo to the ranker's hydration
// interface. IDs missing from the relational store are absent from the map.
func NewResumeResolver(resumes repos.ResumeRepo) (search.DocumentResolver, error) {
	if resumes == nil {
		return nil, fmt.Errorf("resume repo required")
	}
	return &resumeResolver{resumes: resumes}, nil
}

func (r *resumeResolver) ResolveFileNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.resumes.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.OriginalFilename
	}
	return out, nil
}
