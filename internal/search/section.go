package search

import (
	"strings"

	"github.com/google/uuid"
)

// Section types name which textual facet of a resume a vector was built from.
const (
	SectionFullText   = "full_text"
	SectionSkills     = "skills"
	SectionExperience = "experience"
	SectionAll        = "all"
)

var allSections = []string{SectionFullText, SectionSkills, SectionExperience}

// VectorID is the stable record key for one (document, section) vector.
func VectorID(documentID uuid.UUID, section string) string {
	return documentID.String() + "-" + section
}

// DocumentIDFromVectorID recovers the document ID prefix from a vector ID.
// A UUID string itself contains dashes, so match on the known section suffix.
func DocumentIDFromVectorID(vectorID string) (uuid.UUID, bool) {
	for _, section := range allSections {
		if strings.HasSuffix(vectorID, "-"+section) {
			raw := strings.TrimSuffix(vectorID, "-"+section)
			if id, err := uuid.Parse(raw); err == nil {
				return id, true
			}
		}
	}
	return uuid.Nil, false
}

// ValidSection reports whether s is a queryable section filter.
func ValidSection(s string) bool {
	switch s {
	case SectionFullText, SectionSkills, SectionExperience, SectionAll, "":
		return true
	default:
		return false
	}
}
