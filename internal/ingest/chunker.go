package ingest

import "strings"

// DefaultChunkRunes bounds one extraction unit. Resume text rarely exceeds
// it; when it does, chunks are extracted separately and merged.
const DefaultChunkRunes = 12000

// ChunkText splits text into extraction units of at most maxRunes runes,
// preferring paragraph boundaries. Oversized paragraphs are hard-split.
// Returns nil for blank input.
func ChunkText(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		maxRunes = DefaultChunkRunes
	}
	if len([]rune(text)) <= maxRunes {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		length  int
	)
	flush := func() {
		if length == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(current.String()))
		current.Reset()
		length = 0
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		runes := []rune(para)
		if len(runes) > maxRunes {
			flush()
			for start := 0; start < len(runes); start += maxRunes {
				end := start + maxRunes
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))
			}
			continue
		}
		if length > 0 && length+len(runes)+2 > maxRunes {
			flush()
		}
		if length > 0 {
			current.WriteString("\n\n")
			length += 2
		}
		current.WriteString(para)
		length += len(runes)
	}
	flush()
	return chunks
}
