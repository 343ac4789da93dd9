package ingest

import (
	"strings"

	"github.com/hirebridge/hirebridge-backend/internal/search"
)

// Skill categories carried on graph edges.
const (
	CategoryTechnical = "technical"
	CategorySoft      = "soft"
	CategoryOther     = "other"
)

// NormalizeSkill produces the canonical Skill-node key: lower-cased, trimmed.
// Two different-cased variants of the same word collapse to one node.
func NormalizeSkill(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CategorizeSkill passes through the bucket assigned by the extraction step;
// anything unrecognized lands in "other". No inference beyond the source
// label.
func CategorizeSkill(raw string, sourceCategory string) string {
	switch strings.ToLower(strings.TrimSpace(sourceCategory)) {
	case CategoryTechnical:
		return CategoryTechnical
	case CategorySoft:
		return CategorySoft
	default:
		return CategoryOther
	}
}

// NormalizedSkills flattens a SkillSet into graph-ready records: normalized
// names, source categories, confidence 1.0, duplicates collapsed after
// normalization (first category wins).
func NormalizedSkills(set SkillSet) []search.SkillRecord {
	seen := make(map[string]struct{}, len(set.Technical)+len(set.Soft))
	out := make([]search.SkillRecord, 0, len(set.Technical)+len(set.Soft))

	add := func(raw, category string) {
		name := NormalizeSkill(raw)
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, search.SkillRecord{
			Name:       name,
			Category:   CategorizeSkill(raw, category),
			Confidence: 1.0,
		})
	}

	for _, s := range set.Technical {
		add(s, CategoryTechnical)
	}
	for _, s := range set.Soft {
		add(s, CategorySoft)
	}
	return out
}

// SkillsText renders the normalized skill names as one embedding input for
// the skills section.
func SkillsText(set SkillSet) string {
	records := NormalizedSkills(set)
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	return strings.Join(names, " ")
}
