package ingest

import (
	"strings"
	"testing"
)

func TestChunkText_BlankInputReturnsNil(t *testing.T) {
	if got := ChunkText("   \n  ", 100); got != nil {
		t.Fatalf("want nil, got %v", got)
	}
}

func TestChunkText_ShortTextIsOneChunk(t *testing.T) {
	got := ChunkText("short resume text", 100)
	if len(got) != 1 || got[0] != "short resume text" {
		t.Fatalf("want single chunk, got %v", got)
	}
}

func TestChunkText_SplitsOnParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("a", 60)
	para2 := strings.Repeat("b", 60)
	got := ChunkText(para1+"\n\n"+para2, 100)
	if len(got) != 2 {
		t.Fatalf("want 2 chunks, got %d", len(got))
	}
	if got[0] != para1 || got[1] != para2 {
		t.Fatalf("chunks not split on paragraph boundary")
	}
}

func TestChunkText_PacksParagraphsUpToLimit(t *testing.T) {
	para := strings.Repeat("a", 40)
	got := ChunkText(para+"\n\n"+para+"\n\n"+para, 100)
	if len(got) != 2 {
		t.Fatalf("want 2 chunks, got %d: %v", len(got), got)
	}
	if !strings.Contains(got[0], "\n\n") {
		t.Fatalf("first chunk should hold two packed paragraphs")
	}
}

func TestChunkText_HardSplitsOversizedParagraph(t *testing.T) {
	got := ChunkText(strings.Repeat("x", 250), 100)
	if len(got) != 3 {
		t.Fatalf("want 3 chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if len([]rune(chunk)) > 100 {
			t.Fatalf("chunk %d over limit: %d runes", i, len([]rune(chunk)))
		}
	}
}
