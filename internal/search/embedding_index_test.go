package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/pinecone"
)

type fakeVectorStore struct {
	upserted   []pinecone.Vector
	matches    []pinecone.VectorMatch
	deletedIDs []string
	lastFilter map[string]any
	err        error
}

func (f *fakeVectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, vectors...)
	return nil
}

func (f *fakeVectorStore) QueryMatches(ctx context.Context, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter
	return f.matches, nil
}

func (f *fakeVectorStore) DeleteIDs(ctx context.Context, ids []string) error {
	if f.err != nil {
		return f.err
	}
	f.deletedIDs = append(f.deletedIDs, ids...)
	return nil
}

func constantEmbed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func newTestIndex(t *testing.T, store pinecone.VectorStore) *EmbeddingIndex {
	t.Helper()
	ix, err := NewEmbeddingIndex(logger.NewNop(), store, constantEmbed)
	if err != nil {
		t.Fatalf("NewEmbeddingIndex: %v", err)
	}
	return ix
}

func TestUpsertSection_WritesStableIDAndMetadata(t *testing.T) {
	store := &fakeVectorStore{}
	ix := newTestIndex(t, store)
	docID := uuid.New()

	err := ix.UpsertSection(context.Background(), docID, SectionSkills, "go, python", map[string]any{"file_name": "a.pdf"})
	if err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("want 1 vector, got %d", len(store.upserted))
	}
	v := store.upserted[0]
	if v.ID != docID.String()+"-skills" {
		t.Fatalf("vector ID: want=%s-skills got=%s", docID, v.ID)
	}
	if v.Metadata["document_id"] != docID.String() {
		t.Fatalf("metadata document_id: got %v", v.Metadata["document_id"])
	}
	if v.Metadata["section_type"] != SectionSkills {
		t.Fatalf("metadata section_type: got %v", v.Metadata["section_type"])
	}
	if v.Metadata["file_name"] != "a.pdf" {
		t.Fatalf("caller metadata dropped: got %v", v.Metadata["file_name"])
	}
}

func TestUpsertSection_RejectsEmptyText(t *testing.T) {
	ix := newTestIndex(t, &fakeVectorStore{})
	if err := ix.UpsertSection(context.Background(), uuid.New(), SectionSkills, "   ", nil); err == nil {
		t.Fatalf("expected error for empty section text")
	}
}

func TestUpsertSection_TruncatesContentPreview(t *testing.T) {
	store := &fakeVectorStore{}
	ix := newTestIndex(t, store)

	long := strings.Repeat("x", 5000)
	if err := ix.UpsertSection(context.Background(), uuid.New(), SectionFullText, long, nil); err != nil {
		t.Fatalf("UpsertSection: %v", err)
	}
	preview, _ := store.upserted[0].Metadata["content"].(string)
	if len([]rune(preview)) != 1000 {
		t.Fatalf("preview length: want=1000 got=%d", len([]rune(preview)))
	}
}

func TestQuery_FiltersOnSectionType(t *testing.T) {
	store := &fakeVectorStore{}
	ix := newTestIndex(t, store)

	if _, err := ix.Query(context.Background(), "golang", SectionSkills, 5); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if store.lastFilter == nil || store.lastFilter["section_type"] != SectionSkills {
		t.Fatalf("filter: got %v", store.lastFilter)
	}

	if _, err := ix.Query(context.Background(), "golang", SectionAll, 5); err != nil {
		t.Fatalf("Query all: %v", err)
	}
	if store.lastFilter != nil {
		t.Fatalf("section all must not filter, got %v", store.lastFilter)
	}
}

func TestQuery_DeterministicTieBreakOnVectorID(t *testing.T) {
	docA := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	docB := mustUUID(t, "22222222-2222-2222-2222-222222222222")
	store := &fakeVectorStore{matches: []pinecone.VectorMatch{
		{ID: VectorID(docB, SectionFullText), Score: 0.5, Metadata: map[string]any{"document_id": docB.String()}},
		{ID: VectorID(docA, SectionFullText), Score: 0.5, Metadata: map[string]any{"document_id": docA.String()}},
	}}
	ix := newTestIndex(t, store)

	hits, err := ix.Query(context.Background(), "golang", SectionFullText, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("want 2 hits, got %d", len(hits))
	}
	if hits[0].DocumentID != docA || hits[1].DocumentID != docB {
		t.Fatalf("tie-break order wrong: %s then %s", hits[0].DocumentID, hits[1].DocumentID)
	}
}

func TestQuery_SkipsMatchesWithoutResolvableDocumentID(t *testing.T) {
	doc := mustUUID(t, "11111111-1111-1111-1111-111111111111")
	store := &fakeVectorStore{matches: []pinecone.VectorMatch{
		{ID: "garbage", Score: 0.9},
		{ID: VectorID(doc, SectionFullText), Score: 0.5},
	}}
	ix := newTestIndex(t, store)

	hits, err := ix.Query(context.Background(), "golang", SectionFullText, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != doc {
		t.Fatalf("unexpected hits: %v", hits)
	}
}

func TestQuery_StorageErrorWrapsErrStorageUnavailable(t *testing.T) {
	store := &fakeVectorStore{err: errors.New("dial tcp: refused")}
	ix := newTestIndex(t, store)

	_, err := ix.Query(context.Background(), "golang", SectionFullText, 5)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("error not ErrStorageUnavailable: %v", err)
	}
}

func TestDeleteDocument_RemovesAllSectionRecords(t *testing.T) {
	store := &fakeVectorStore{}
	ix := newTestIndex(t, store)
	docID := uuid.New()

	if err := ix.DeleteDocument(context.Background(), docID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if len(store.deletedIDs) != 3 {
		t.Fatalf("deleted IDs: want=3 got=%d", len(store.deletedIDs))
	}
	want := map[string]bool{
		VectorID(docID, SectionFullText):   true,
		VectorID(docID, SectionSkills):     true,
		VectorID(docID, SectionExperience): true,
	}
	for _, id := range store.deletedIDs {
		if !want[id] {
			t.Fatalf("unexpected deleted ID %q", id)
		}
	}
}

func TestDeleteDocument_NilIDIsNoop(t *testing.T) {
	store := &fakeVectorStore{err: errors.New("must not be called")}
	ix := newTestIndex(t, store)
	if err := ix.DeleteDocument(context.Background(), uuid.Nil); err != nil {
		t.Fatalf("DeleteDocument(nil): %v", err)
	}
}

func TestDocumentIDFromVectorID_RoundTrip(t *testing.T) {
	docID := uuid.New()
	for _, section := range []string{SectionFullText, SectionSkills, SectionExperience} {
		got, ok := DocumentIDFromVectorID(VectorID(docID, section))
		if !ok || got != docID {
			t.Fatalf("round trip failed for %s: ok=%v got=%s", section, ok, got)
		}
	}
	if _, ok := DocumentIDFromVectorID("not-a-vector-id"); ok {
		t.Fatalf("expected ok=false for malformed vector ID")
	}
}
