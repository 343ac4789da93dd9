package search

import (
	"context"
	"os"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/neo4jdb"
)

// Opt-in: these tests need a running Neo4j instance and are skipped unless
// NEO4J_URI is set.
func newIntegrationGraphStore(t *testing.T) GraphStore {
	t.Helper()
	if os.Getenv("NEO4J_URI") == "" {
		t.Skip("NEO4J_URI not set")
	}
	client, err := neo4jdb.NewFromEnv(logger.NewNop())
	if err != nil {
		t.Fatalf("neo4j client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	store, err := NewGraphStore(logger.NewNop(), client)
	if err != nil {
		t.Fatalf("NewGraphStore: %v", err)
	}
	return store
}

func upsertWithSkills(t *testing.T, store GraphStore, docID, userID uuid.UUID, fileName string, names ...string) {
	t.Helper()
	skills := make([]SkillRecord, 0, len(names))
	for _, name := range names {
		skills = append(skills, SkillRecord{Name: name, Category: "technical", Confidence: 1.0})
	}
	err := store.UpsertDocument(context.Background(), UpsertDocumentParams{
		DocumentID: docID,
		FileName:   fileName,
		VectorRef:  VectorID(docID, SectionFullText),
		UserID:     userID,
		Skills:     skills,
	})
	if err != nil {
		t.Fatalf("UpsertDocument(%s): %v", fileName, err)
	}
	t.Cleanup(func() { _ = store.DeleteDocument(context.Background(), docID) })
}

func skillNames(records []SkillRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

func TestGraphStoreIntegration_ReingestReplacesSkillEdges(t *testing.T) {
	store := newIntegrationGraphStore(t)
	docID := uuid.New()
	userID := uuid.New()

	upsertWithSkills(t, store, docID, userID, "a.pdf", "Python", "AWS", "Docker")
	upsertWithSkills(t, store, docID, userID, "a.pdf", "Go", "Rust")

	got, err := store.GetSkills(context.Background(), docID)
	if err != nil {
		t.Fatalf("GetSkills: %v", err)
	}
	names := skillNames(got)
	if len(names) != 2 || names[0] != "go" || names[1] != "rust" {
		t.Fatalf("edges after re-ingest: want exactly [go rust] got %v", names)
	}
}

func TestGraphStoreIntegration_SkillOverlapThresholdAndOrder(t *testing.T) {
	store := newIntegrationGraphStore(t)
	userID := uuid.New()
	seed := uuid.New()
	twoShared := uuid.New()
	threeShared := uuid.New()
	oneShared := uuid.New()

	// run-unique skill names keep leftover graph data out of the results
	run := uuid.NewString()[:8]
	python := run + "-python"
	aws := run + "-aws"
	docker := run + "-docker"

	upsertWithSkills(t, store, seed, userID, "seed.pdf", python, aws, docker)
	upsertWithSkills(t, store, twoShared, userID, "two.pdf", python, aws)
	upsertWithSkills(t, store, threeShared, userID, "three.pdf", python, aws, docker)
	upsertWithSkills(t, store, oneShared, userID, "one.pdf", python)

	hits, err := store.FindSimilarBySkillOverlap(context.Background(), seed, 2, 10)
	if err != nil {
		t.Fatalf("FindSimilarBySkillOverlap(min=2): %v", err)
	}
	found := map[uuid.UUID]SkillOverlapHit{}
	for _, h := range hits {
		found[h.DocumentID] = h
	}
	if _, ok := found[oneShared]; ok {
		t.Fatalf("single-shared-skill document must be excluded at min=2")
	}
	three, ok := found[threeShared]
	if !ok {
		t.Fatalf("three-shared document missing: %v", hits)
	}
	two, ok := found[twoShared]
	if !ok {
		t.Fatalf("two-shared document missing: %v", hits)
	}
	if three.SharedCount != 3 || two.SharedCount != 2 {
		t.Fatalf("shared counts: three=%d two=%d", three.SharedCount, two.SharedCount)
	}
	if three.Similarity <= two.Similarity {
		t.Fatalf("similarity order: three=%v two=%v", three.Similarity, two.Similarity)
	}
	// higher overlap ranks first
	if len(hits) >= 2 && hits[0].DocumentID != threeShared {
		t.Fatalf("first hit: want=%s got=%s", threeShared, hits[0].DocumentID)
	}

	hits, err = store.FindSimilarBySkillOverlap(context.Background(), seed, 1, 10)
	if err != nil {
		t.Fatalf("FindSimilarBySkillOverlap(min=1): %v", err)
	}
	found = map[uuid.UUID]SkillOverlapHit{}
	for _, h := range hits {
		found[h.DocumentID] = h
	}
	one, ok := found[oneShared]
	if !ok {
		t.Fatalf("single-shared-skill document must appear at min=1: %v", hits)
	}
	if one.SharedCount != 1 {
		t.Fatalf("shared count: want=1 got=%d", one.SharedCount)
	}
}

func TestGraphStoreIntegration_DeleteKeepsSharedSkillNodes(t *testing.T) {
	store := newIntegrationGraphStore(t)
	userID := uuid.New()
	keep := uuid.New()
	remove := uuid.New()

	upsertWithSkills(t, store, keep, userID, "keep.pdf", "python")
	upsertWithSkills(t, store, remove, userID, "remove.pdf", "python")

	if err := store.DeleteDocument(context.Background(), remove); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	got, err := store.GetSkills(context.Background(), keep)
	if err != nil {
		t.Fatalf("GetSkills: %v", err)
	}
	if len(got) != 1 || got[0].Name != "python" {
		t.Fatalf("shared skill node lost after sibling delete: %v", got)
	}
}
