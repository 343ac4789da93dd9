package ingest

import (
	"context"
	"fmt"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/mistral"
)

const extractionSystemPrompt = `You are an expert resume analyzer. You must extract information from the resume and return it ONLY as a valid JSON object with no additional text or explanation.

The JSON must follow this exact structure:
{
    "contact_info": {"name": "", "email": "", "phone": "", "location": ""},
    "work_experience": [{"company": "", "title": "", "dates": "", "responsibilities": []}],
    "education": [{"institution": "", "degree": "", "dates": "", "gpa": ""}],
    "skills": {"technical": [], "soft": []},
    "projects": [{"name": "", "description": "", "technologies": []}],
    "certifications": [],
    "languages": []
}

Rules:
1. Use YYYY-MM format for dates when available
2. Return empty arrays [] for missing lists
3. Return empty strings "" for missing text fields
4. Return ONLY the JSON object, no other text
5. Ensure the JSON is properly formatted and valid`

// FeatureExtractor produces a structured feature record from one extraction
// unit of resume text.
type FeatureExtractor interface {
	ExtractFeatures(ctx context.Context, text string) (ResumeFeatures, error)
}

type llmExtractor struct {
	log    *logger.Logger
	client mistral.Client
}

func NewLLMExtractor(log *logger.Logger, client mistral.Client) (FeatureExtractor, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("mistral client required")
	}
	return &llmExtractor{
		log:    log.With("service", "LLMExtractor"),
		client: client,
	}, nil
}

func (e *llmExtractor) ExtractFeatures(ctx context.Context, text string) (ResumeFeatures, error) {
	raw, err := e.client.GenerateJSON(ctx, extractionSystemPrompt,
		"Extract information from this resume:\n\n"+text)
	if err != nil {
		return ResumeFeatures{}, fmt.Errorf("llm call: %w", err)
	}
	return FeaturesFromMap(raw)
}
