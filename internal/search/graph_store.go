package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/hirebridge/hirebridge-backend/internal/platform/ctxutil"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/neo4jdb"
)

// SkillRecord is one skill attached to a resume in the graph.
type SkillRecord struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// UpsertDocumentParams carries everything needed to (re)write a resume's
// graph facts.
type UpsertDocumentParams struct {
	DocumentID uuid.UUID
	FileName   string
	VectorRef  string
	UserID     uuid.UUID
	Skills     []SkillRecord
}

// SkillOverlapHit is one graph-similarity result.
type SkillOverlapHit struct {
	DocumentID   uuid.UUID
	FileName     string
	SharedSkills []string
	SharedCount  int
	Similarity   float64
}

// GraphStore stores Resume-HAS_SKILL->Skill and Resume-OWNED_BY->User facts
// and answers skill-overlap similarity queries.
type GraphStore interface {
	UpsertDocument(ctx context.Context, params UpsertDocumentParams) error
	FindSimilarBySkillOverlap(ctx context.Context, documentID uuid.UUID, minSharedSkills, limit int) ([]SkillOverlapHit, error)
	GetSkills(ctx context.Context, documentID uuid.UUID) ([]SkillRecord, error)
	DeleteDocument(ctx context.Context, documentID uuid.UUID) error
}

type graphStore struct {
	log    *logger.Logger
	client *neo4jdb.Client
}

func NewGraphStore(log *logger.Logger, client *neo4jdb.Client) (GraphStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("neo4j client required")
	}
	s := &graphStore{
		log:    log.With("service", "GraphStore"),
		client: client,
	}
	s.initSchema(context.Background())
	return s, nil
}

// initSchema creates uniqueness constraints (best-effort; may fail for
// restricted users).
func (s *graphStore) initSchema(ctx context.Context) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	constraints := []string{
		`CREATE CONSTRAINT resume_id_unique IF NOT EXISTS FOR (r:Resume) REQUIRE r.id IS UNIQUE`,
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT skill_name_unique IF NOT EXISTS FOR (sk:Skill) REQUIRE sk.name IS UNIQUE`,
	}
	for _, q := range constraints {
		if res, err := session.Run(ctx, q, nil); err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}

// UpsertDocument rewrites the resume node and its full skill-edge set in one
// transaction: a concurrent overlap reader sees either the old set or the new
// set, never a mix.
func (s *graphStore) UpsertDocument(ctx context.Context, params UpsertDocumentParams) error {
	if params.DocumentID == uuid.Nil {
		return fmt.Errorf("graph upsert: missing documentID")
	}
	if params.UserID == uuid.Nil {
		return fmt.Errorf("graph upsert: missing userID")
	}
	ctx = ctxutil.Default(ctx)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	skills := skillParams(params.Skills)

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (r:Resume {id: $resume_id})
SET r.file_name = $file_name,
    r.vector_id = $vector_id,
    r.updated_at = $now
MERGE (u:User {id: $user_id})
MERGE (r)-[:OWNED_BY]->(u)
WITH r
OPTIONAL MATCH (r)-[old_rel:HAS_SKILL]->()
DELETE old_rel
`, map[string]any{
			"resume_id": params.DocumentID.String(),
			"file_name": params.FileName,
			"vector_id": params.VectorRef,
			"user_id":   params.UserID.String(),
			"now":       now,
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(skills) == 0 {
			return nil, nil
		}
		res, err = tx.Run(ctx, `
MATCH (r:Resume {id: $resume_id})
UNWIND $skills AS s
MERGE (sk:Skill {name: s.name})
SET sk.category = s.category,
    sk.updated_at = $now
MERGE (r)-[rel:HAS_SKILL]->(sk)
SET rel.confidence = s.confidence,
    rel.updated_at = $now
`, map[string]any{
			"resume_id": params.DocumentID.String(),
			"skills":    skills,
			"now":       now,
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return storageErr("graph", err)
	}

	s.log.Debug("resume graph upserted",
		"resume_id", params.DocumentID,
		"skill_count", len(skills),
	)
	return nil
}

// FindSimilarBySkillOverlap scores every other resume by the count of skills
// shared with the source, normalized by the source's own skill-set size. A
// source with zero skills yields an empty result, not an error.
func (s *graphStore) FindSimilarBySkillOverlap(ctx context.Context, documentID uuid.UUID, minSharedSkills, limit int) ([]SkillOverlapHit, error) {
	if documentID == uuid.Nil {
		return nil, fmt.Errorf("graph overlap: missing documentID")
	}
	if minSharedSkills < 1 {
		minSharedSkills = 1
	}
	if limit <= 0 {
		limit = 10
	}
	ctx = ctxutil.Default(ctx)

	session := s.readSession(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (r1:Resume {id: $resume_id})-[:HAS_SKILL]->(s:Skill)
WITH r1, COLLECT(s) AS r1_skills, SIZE(COLLECT(s)) AS total_skills
MATCH (r2:Resume)-[:HAS_SKILL]->(s2:Skill)
WHERE r2 <> r1 AND s2 IN r1_skills
WITH r2,
     COUNT(DISTINCT s2) AS common_skills,
     COLLECT(DISTINCT s2.name) AS shared_skills,
     total_skills
WHERE common_skills >= $min_skill_match
WITH r2,
     common_skills,
     shared_skills,
     toFloat(common_skills) / toFloat(total_skills) AS similarity_score
RETURN r2.id AS resume_id,
       r2.file_name AS file_name,
       common_skills,
       shared_skills,
       similarity_score
ORDER BY similarity_score DESC, common_skills DESC, resume_id ASC
LIMIT $limit
`, map[string]any{
			"resume_id":       documentID.String(),
			"min_skill_match": minSharedSkills,
			"limit":           limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, storageErr("graph", err)
	}

	recs, _ := records.([]*neo4j.Record)
	out := make([]SkillOverlapHit, 0, len(recs))
	for _, rec := range recs {
		hit, ok := overlapHitFromRecord(rec)
		if !ok {
			s.log.Warn("skipping malformed overlap record", "record", rec.Values)
			continue
		}
		out = append(out, hit)
	}
	return out, nil
}

func (s *graphStore) GetSkills(ctx context.Context, documentID uuid.UUID) ([]SkillRecord, error) {
	if documentID == uuid.Nil {
		return nil, fmt.Errorf("graph skills: missing documentID")
	}
	ctx = ctxutil.Default(ctx)

	session := s.readSession(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (r:Resume {id: $resume_id})-[rel:HAS_SKILL]->(sk:Skill)
RETURN sk.name AS name,
       sk.category AS category,
       rel.confidence AS confidence
ORDER BY sk.category, sk.name
`, map[string]any{"resume_id": documentID.String()})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, storageErr("graph", err)
	}

	recs, _ := records.([]*neo4j.Record)
	out := make([]SkillRecord, 0, len(recs))
	for _, rec := range recs {
		name, _ := stringValue(rec, "name")
		category, _ := stringValue(rec, "category")
		confidence, _ := floatValue(rec, "confidence")
		if name == "" {
			continue
		}
		out = append(out, SkillRecord{Name: name, Category: category, Confidence: confidence})
	}
	return out, nil
}

// DeleteDocument removes the resume node and its incident relationships.
// Skill nodes stay: they are shared across resumes.
func (s *graphStore) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	if documentID == uuid.Nil {
		return nil
	}
	ctx = ctxutil.Default(ctx)

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (r:Resume {id: $resume_id})
DETACH DELETE r
`, map[string]any{"resume_id": documentID.String()})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return storageErr("graph", err)
	}
	return nil
}

func (s *graphStore) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
}

func (s *graphStore) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
}

// skillParams marshals skill records for the UNWIND write. Names are
// normalized a second time here so graph keys stay canonical no matter the
// caller.
func skillParams(skills []SkillRecord) []map[string]any {
	out := make([]map[string]any, 0, len(skills))
	for _, sk := range skills {
		name := strings.ToLower(strings.TrimSpace(sk.Name))
		if name == "" {
			continue
		}
		out = append(out, map[string]any{
			"name":       name,
			"category":   sk.Category,
			"confidence": sk.Confidence,
		})
	}
	return out
}

func overlapHitFromRecord(rec *neo4j.Record) (SkillOverlapHit, bool) {
	rawID, ok := stringValue(rec, "resume_id")
	if !ok {
		return SkillOverlapHit{}, false
	}
	docID, err := uuid.Parse(rawID)
	if err != nil {
		return SkillOverlapHit{}, false
	}

	fileName, _ := stringValue(rec, "file_name")
	similarity, _ := floatValue(rec, "similarity_score")

	var sharedCount int
	if v, found := rec.Get("common_skills"); found {
		if n, isInt := v.(int64); isInt {
			sharedCount = int(n)
		}
	}

	var shared []string
	if v, found := rec.Get("shared_skills"); found {
		if items, isList := v.([]any); isList {
			for _, item := range items {
				if name, isStr := item.(string); isStr {
					shared = append(shared, name)
				}
			}
		}
	}

	return SkillOverlapHit{
		DocumentID:   docID,
		FileName:     fileName,
		SharedSkills: shared,
		SharedCount:  sharedCount,
		Similarity:   similarity,
	}, true
}

func stringValue(rec *neo4j.Record, key string) (string, bool) {
	v, found := rec.Get(key)
	if !found || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func floatValue(rec *neo4j.Record, key string) (float64, bool) {
	v, found := rec.Get(key)
	if !found || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
