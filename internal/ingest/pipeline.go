package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hirebridge/hirebridge-backend/internal/platform/ctxutil"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/repos"
	"github.com/hirebridge/hirebridge-backend/internal/search"
	"github.com/hirebridge/hirebridge-backend/internal/types"
)

// ErrUnknownUser rejects ingestion for a user_id with no user row.
var ErrUnknownUser = errors.New("unknown user")

// Config bounds the extraction retry loop and chunking.
type Config struct {
	MaxExtractAttempts int
	RetryBackoff       time.Duration
	ChunkRunes         int
}

func (c Config) withDefaults() Config {
	if c.MaxExtractAttempts <= 0 {
		c.MaxExtractAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	if c.ChunkRunes <= 0 {
		c.ChunkRunes = DefaultChunkRunes
	}
	return c
}

// Pipeline drives one resume from raw text to indexed vectors and graph
// facts. Request-driven; the ranker only ever reads what it writes.
type Pipeline struct {
	log       *logger.Logger
	users     repos.UserRepo
	resumes   repos.ResumeRepo
	index     *search.EmbeddingIndex
	graph     search.GraphStore
	extractor FeatureExtractor
	cfg       Config
}

func NewPipeline(
	log *logger.Logger,
	users repos.UserRepo,
	resumes repos.ResumeRepo,
	index *search.EmbeddingIndex,
	graph search.GraphStore,
	extractor FeatureExtractor,
	cfg Config,
) (*Pipeline, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repo required")
	}
	if resumes == nil {
		return nil, fmt.Errorf("resume repo required")
	}
	if index == nil {
		return nil, fmt.Errorf("embedding index required")
	}
	if graph == nil {
		return nil, fmt.Errorf("graph store required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("feature extractor required")
	}
	return &Pipeline{
		log:       log.With("service", "IngestPipeline"),
		users:     users,
		resumes:   resumes,
		index:     index,
		graph:     graph,
		extractor: extractor,
		cfg:       cfg.withDefaults(),
	}, nil
}

// ProcessResume ingests one resume. Status transitions only move forward:
// uploaded -> processing -> processed|partial|failed. Chunk extraction
// failures degrade the record (status partial) instead of aborting; storage
// write failures are fatal (status failed).
func (p *Pipeline) ProcessResume(ctx context.Context, userID uuid.UUID, fileName, rawText string) (*types.Resume, error) {
	ctx = ctxutil.Default(ctx)
	if userID == uuid.Nil {
		return nil, fmt.Errorf("userID required")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("fileName required")
	}

	// Migrations run without FK enforcement, so the owner row is checked here.
	if _, err := p.users.GetByID(ctx, nil, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	resume, err := p.resumes.Create(ctx, nil, &types.Resume{
		UserID:           userID,
		OriginalFilename: fileName,
		Status:           types.ResumeStatusUploaded,
	})
	if err != nil {
		return nil, fmt.Errorf("create resume row: %w", err)
	}
	log := p.log.With("resume_id", resume.ID)

	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		p.setStatus(ctx, log, resume, types.ResumeStatusFailed)
		p.saveContent(ctx, log, resume.ID, rawText, ResumeFeatures{}, "empty resume text")
		return resume, fmt.Errorf("empty resume text")
	}

	p.setStatus(ctx, log, resume, types.ResumeStatusProcessing)

	chunks := ChunkText(rawText, p.cfg.ChunkRunes)
	var (
		features     ResumeFeatures
		chunkErrors  []string
		chunksFailed int
	)
	for i, chunk := range chunks {
		chunkFeatures, err := p.extractWithRetry(ctx, log, chunk)
		if err != nil {
			chunksFailed++
			chunkErrors = append(chunkErrors, fmt.Sprintf("chunk %d/%d: %v", i+1, len(chunks), err))
			log.Warn("chunk extraction abandoned",
				"chunk", i+1,
				"chunks", len(chunks),
				"error", err,
			)
			continue
		}
		features = MergeFeatures(features, chunkFeatures)
	}

	processingError := strings.Join(chunkErrors, "; ")
	skills := NormalizedSkills(features.Skills)
	skillNames := make([]string, 0, len(skills))
	for _, s := range skills {
		skillNames = append(skillNames, s.Name)
	}

	meta := map[string]any{
		"document_id": resume.ID.String(),
		"file_name":   fileName,
		"user_id":     userID.String(),
		"skills":      skillNames,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.index.UpsertSection(gctx, resume.ID, search.SectionFullText, rawText, meta); err != nil {
			return err
		}
		if text := SkillsText(features.Skills); text != "" {
			if err := p.index.UpsertSection(gctx, resume.ID, search.SectionSkills, text, meta); err != nil {
				return err
			}
		}
		if text := experienceText(features.WorkExperience); text != "" {
			if err := p.index.UpsertSection(gctx, resume.ID, search.SectionExperience, text, meta); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		return p.graph.UpsertDocument(gctx, search.UpsertDocumentParams{
			DocumentID: resume.ID,
			FileName:   fileName,
			VectorRef:  search.VectorID(resume.ID, search.SectionFullText),
			UserID:     userID,
			Skills:     skills,
		})
	})
	if err := g.Wait(); err != nil {
		p.setStatus(ctx, log, resume, types.ResumeStatusFailed)
		p.saveContent(ctx, log, resume.ID, rawText, features, err.Error())
		return resume, fmt.Errorf("index resume: %w", err)
	}

	p.saveContent(ctx, log, resume.ID, rawText, features, processingError)

	status := types.ResumeStatusProcessed
	if chunksFailed > 0 {
		status = types.ResumeStatusPartial
	}
	p.setStatus(ctx, log, resume, status)

	log.Info("resume ingested",
		"status", status,
		"chunks", len(chunks),
		"chunks_failed", chunksFailed,
		"skill_count", len(skills),
	)
	return resume, nil
}

// DeleteResume removes a resume everywhere: vector records, graph node (skill
// nodes stay shared), and relational rows.
func (p *Pipeline) DeleteResume(ctx context.Context, resumeID uuid.UUID) error {
	ctx = ctxutil.Default(ctx)
	if resumeID == uuid.Nil {
		return fmt.Errorf("resumeID required")
	}
	if err := p.index.DeleteDocument(ctx, resumeID); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	if err := p.graph.DeleteDocument(ctx, resumeID); err != nil {
		return fmt.Errorf("delete graph node: %w", err)
	}
	if err := p.resumes.FullDeleteByID(ctx, nil, resumeID); err != nil {
		return fmt.Errorf("delete rows: %w", err)
	}
	p.log.Info("resume deleted", "resume_id", resumeID)
	return nil
}

// extractWithRetry runs the LLM extraction with a bounded linear backoff:
// attempt n sleeps n*RetryBackoff before retrying, and the chunk is abandoned
// after MaxExtractAttempts.
func (p *Pipeline) extractWithRetry(ctx context.Context, log *logger.Logger, chunk string) (ResumeFeatures, error) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxExtractAttempts; attempt++ {
		features, err := p.extractor.ExtractFeatures(ctx, chunk)
		if err == nil {
			return features, nil
		}
		lastErr = err
		if attempt == p.cfg.MaxExtractAttempts {
			break
		}
		delay := time.Duration(attempt) * p.cfg.RetryBackoff
		log.Warn("feature extraction failed; retrying",
			"attempt", attempt,
			"max_attempts", p.cfg.MaxExtractAttempts,
			"backoff", delay.String(),
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ResumeFeatures{}, ctx.Err()
		}
	}
	return ResumeFeatures{}, lastErr
}

func (p *Pipeline) setStatus(ctx context.Context, log *logger.Logger, resume *types.Resume, status string) {
	if err := p.resumes.UpdateStatus(ctx, nil, resume.ID, status); err != nil {
		log.Error("status update failed", "status", status, "error", err)
		return
	}
	resume.Status = status
}

func (p *Pipeline) saveContent(ctx context.Context, log *logger.Logger, resumeID uuid.UUID, rawText string, features ResumeFeatures, processingError string) {
	var encoded datatypes.JSON
	if !features.IsEmpty() {
		if raw, err := json.Marshal(features); err == nil {
			encoded = raw
		} else {
			log.Error("encode features failed", "error", err)
		}
	}
	if err := p.resumes.SaveContent(ctx, nil, &types.ResumeContent{
		ResumeID:          resumeID,
		RawText:           rawText,
		ExtractedFeatures: encoded,
		ProcessingError:   processingError,
		LastProcessed:     time.Now().UTC(),
	}); err != nil {
		log.Error("save resume content failed", "error", err)
	}
}

func experienceText(experience []WorkExperience) string {
	var b strings.Builder
	for _, exp := range experience {
		line := strings.TrimSpace(strings.Join([]string{exp.Title, exp.Company, exp.Dates}, " "))
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
		for _, r := range exp.Responsibilities {
			r = strings.TrimSpace(r)
			if r != "" {
				b.WriteString(r)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}
