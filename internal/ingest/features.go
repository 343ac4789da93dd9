package ingest

import (
	"encoding/json"
	"fmt"
)

// ResumeFeatures is the structured record produced by the external LLM
// extraction step. Fields mirror the extraction contract; missing values stay
// zero rather than failing the decode.
type ResumeFeatures struct {
	ContactInfo    ContactInfo      `json:"contact_info"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Education      []Education      `json:"education"`
	Skills         SkillSet         `json:"skills"`
	Projects       []Project        `json:"projects"`
	Certifications []string         `json:"certifications"`
	Languages      []string         `json:"languages"`
}

type ContactInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type WorkExperience struct {
	Company          string   `json:"company"`
	Title            string   `json:"title"`
	Dates            string   `json:"dates"`
	Responsibilities []string `json:"responsibilities"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Dates       string `json:"dates"`
	GPA         string `json:"gpa"`
}

type SkillSet struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// IsEmpty reports whether no field carries data.
func (f ResumeFeatures) IsEmpty() bool {
	return f.ContactInfo == ContactInfo{} &&
		len(f.WorkExperience) == 0 &&
		len(f.Education) == 0 &&
		len(f.Skills.Technical) == 0 &&
		len(f.Skills.Soft) == 0 &&
		len(f.Projects) == 0 &&
		len(f.Certifications) == 0 &&
		len(f.Languages) == 0
}

// ExtractionError is the {error, details} failure record passed through from
// the LLM step.
type ExtractionError struct {
	Reason  string `json:"error"`
	Details string `json:"details"`
}

func (e *ExtractionError) Error() string {
	if e == nil {
		return "feature extraction failed"
	}
	if e.Details != "" {
		return fmt.Sprintf("feature extraction failed: %s: %s", e.Reason, e.Details)
	}
	return fmt.Sprintf("feature extraction failed: %s", e.Reason)
}

// FeaturesFromMap decodes a raw extraction payload. A payload with an "error"
// key is the failure shape and comes back as *ExtractionError.
func FeaturesFromMap(raw map[string]any) (ResumeFeatures, error) {
	var features ResumeFeatures
	if raw == nil {
		return features, fmt.Errorf("nil extraction payload")
	}
	if _, failed := raw["error"]; failed {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return features, fmt.Errorf("decode extraction failure: %w", err)
		}
		var extractionErr ExtractionError
		if err := json.Unmarshal(encoded, &extractionErr); err != nil {
			return features, fmt.Errorf("decode extraction failure: %w", err)
		}
		return features, &extractionErr
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return features, fmt.Errorf("encode extraction payload: %w", err)
	}
	if err := json.Unmarshal(encoded, &features); err != nil {
		return features, fmt.Errorf("decode extraction payload: %w", err)
	}
	return features, nil
}
