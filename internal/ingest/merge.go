package ingest

// MergeFeatures folds one chunk's extraction record into the accumulated
// record. An empty base adopts the incoming record unchanged. List fields
// concatenate (duplicates across chunks are accepted); the skills structure
// takes a per-category set union preserving first-seen order; contact scalars
// keep the first non-empty value seen, left to right across chunks.
func MergeFeatures(existing, incoming ResumeFeatures) ResumeFeatures {
	if existing.IsEmpty() {
		return incoming
	}

	merged := existing
	merged.WorkExperience = append(merged.WorkExperience, incoming.WorkExperience...)
	merged.Education = append(merged.Education, incoming.Education...)
	merged.Projects = append(merged.Projects, incoming.Projects...)
	merged.Certifications = append(merged.Certifications, incoming.Certifications...)
	merged.Languages = append(merged.Languages, incoming.Languages...)

	merged.Skills.Technical = unionStrings(existing.Skills.Technical, incoming.Skills.Technical)
	merged.Skills.Soft = unionStrings(existing.Skills.Soft, incoming.Skills.Soft)

	merged.ContactInfo = mergeContact(existing.ContactInfo, incoming.ContactInfo)
	return merged
}

// unionStrings is case-sensitive: normalization happens later, at graph-write
// time.
func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func mergeContact(existing, incoming ContactInfo) ContactInfo {
	if existing.Name == "" {
		existing.Name = incoming.Name
	}
	if existing.Email == "" {
		existing.Email = incoming.Email
	}
	if existing.Phone == "" {
		existing.Phone = incoming.Phone
	}
	if existing.Location == "" {
		existing.Location = incoming.Location
	}
	return existing
}
