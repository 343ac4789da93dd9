package search

import "strings"

var querySectionKeywords = []string{
	SectionSkills,
	SectionExperience,
	"education",
	"projects",
	SectionFullText,
}

// ParseQuery lowercases and trims a free-text query and pulls out a section
// keyword when the query mentions one ("python skills" -> "python", skills).
// Defaults to the full_text section.
func ParseQuery(query string) (string, string) {
	query = strings.ToLower(strings.TrimSpace(query))
	for _, kw := range querySectionKeywords {
		if strings.Contains(query, kw) {
			cleaned := strings.TrimSpace(strings.ReplaceAll(query, kw, ""))
			cleaned = strings.Join(strings.Fields(cleaned), " ")
			return cleaned, kw
		}
	}
	return query, SectionFullText
}
