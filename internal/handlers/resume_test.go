package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hirebridge/hirebridge-backend/internal/ingest"
	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/platform/pinecone"
	"github.com/hirebridge/hirebridge-backend/internal/search"
	"github.com/hirebridge/hirebridge-backend/internal/types"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeResumeRepo struct {
	resumes  map[uuid.UUID]*types.Resume
	contents map[uuid.UUID]*types.ResumeContent
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{
		resumes:  map[uuid.UUID]*types.Resume{},
		contents: map[uuid.UUID]*types.ResumeContent{},
	}
}

func (f *fakeResumeRepo) Create(ctx context.Context, tx *gorm.DB, resume *types.Resume) (*types.Resume, error) {
	if resume.ID == uuid.Nil {
		resume.ID = uuid.New()
	}
	f.resumes[resume.ID] = resume
	return resume, nil
}

func (f *fakeResumeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Resume, error) {
	r, ok := f.resumes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeResumeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Resume, error) {
	var out []*types.Resume
	for _, id := range ids {
		if r, ok := f.resumes[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResumeRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	r, ok := f.resumes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeResumeRepo) SaveContent(ctx context.Context, tx *gorm.DB, content *types.ResumeContent) error {
	f.contents[content.ResumeID] = content
	return nil
}

func (f *fakeResumeRepo) GetContent(ctx context.Context, tx *gorm.DB, resumeID uuid.UUID) (*types.ResumeContent, error) {
	c, ok := f.contents[resumeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeResumeRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(f.resumes, id)
	delete(f.contents, id)
	return nil
}

type fakeGraphStore struct{}

func (fakeGraphStore) UpsertDocument(ctx context.Context, params search.UpsertDocumentParams) error {
	return nil
}

func (fakeGraphStore) FindSimilarBySkillOverlap(ctx context.Context, documentID uuid.UUID, minSharedSkills, limit int) ([]search.SkillOverlapHit, error) {
	return nil, nil
}

func (fakeGraphStore) GetSkills(ctx context.Context, documentID uuid.UUID) ([]search.SkillRecord, error) {
	return nil, nil
}

func (fakeGraphStore) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	return nil
}

type fakeVectorStore struct{}

func (fakeVectorStore) Upsert(ctx context.Context, vectors []pinecone.Vector) error { return nil }

func (fakeVectorStore) QueryMatches(ctx context.Context, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	return nil, nil
}

func (fakeVectorStore) DeleteIDs(ctx context.Context, ids []string) error { return nil }

type fakeExtractor struct{}

func (fakeExtractor) ExtractFeatures(ctx context.Context, text string) (ingest.ResumeFeatures, error) {
	return ingest.ResumeFeatures{Skills: ingest.SkillSet{Technical: []string{"Go"}}}, nil
}

type handlerFixture struct {
	router *gin.Engine
	users  *fakeUserRepo
	repo   *fakeResumeRepo
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	users := newFakeUserRepo()
	repo := newFakeResumeRepo()

	index, err := search.NewEmbeddingIndex(log, fakeVectorStore{}, func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.1}, nil
	})
	if err != nil {
		t.Fatalf("NewEmbeddingIndex: %v", err)
	}
	pipe, err := ingest.NewPipeline(log, users, repo, index, fakeGraphStore{}, fakeExtractor{}, ingest.Config{})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	userHandler := NewUserHandler(log, users)
	resumeHandler := NewResumeHandler(log, pipe, repo, fakeGraphStore{})

	router := gin.New()
	router.POST("/api/users", userHandler.Create)
	router.POST("/api/resumes", resumeHandler.Ingest)
	router.GET("/api/resumes/:id", resumeHandler.Get)
	return &handlerFixture{router: router, users: users, repo: repo}
}

func (fx *handlerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func TestUserCreate_ReturnsCreatedUser(t *testing.T) {
	fx := newHandlerFixture(t)

	w := fx.do(http.MethodPost, "/api/users", `{"email":"ada@example.com","display_name":"Ada"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: want=201 got=%d body=%s", w.Code, w.Body.String())
	}
	if len(fx.users.users) != 1 {
		t.Fatalf("user rows: want=1 got=%d", len(fx.users.users))
	}
}

func TestUserCreate_DuplicateEmailConflicts(t *testing.T) {
	fx := newHandlerFixture(t)

	if w := fx.do(http.MethodPost, "/api/users", `{"email":"ada@example.com"}`); w.Code != http.StatusCreated {
		t.Fatalf("first create: want=201 got=%d", w.Code)
	}
	if w := fx.do(http.MethodPost, "/api/users", `{"email":"ada@example.com"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate create: want=409 got=%d", w.Code)
	}
}

func TestResumeIngest_UnknownUserReturnsNotFound(t *testing.T) {
	fx := newHandlerFixture(t)

	body := `{"user_id":"` + uuid.NewString() + `","file_name":"ada.pdf","raw_text":"text"}`
	w := fx.do(http.MethodPost, "/api/resumes", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d body=%s", w.Code, w.Body.String())
	}
	if len(fx.repo.resumes) != 0 {
		t.Fatalf("resume row created for unknown user")
	}
}

func TestResumeGet_IncludesExtractedFeatures(t *testing.T) {
	fx := newHandlerFixture(t)
	resumeID := uuid.New()
	fx.repo.resumes[resumeID] = &types.Resume{ID: resumeID, Status: types.ResumeStatusProcessed}
	fx.repo.contents[resumeID] = &types.ResumeContent{
		ResumeID:          resumeID,
		ExtractedFeatures: datatypes.JSON(`{"skills":{"technical":["go"]}}`),
	}

	w := fx.do(http.MethodGet, "/api/resumes/"+resumeID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", w.Code, w.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := payload["extracted_features"]; !ok {
		t.Fatalf("extracted_features missing from response: %s", w.Body.String())
	}
}

func TestResumeGet_MissingResumeReturnsNotFound(t *testing.T) {
	fx := newHandlerFixture(t)
	w := fx.do(http.MethodGet, "/api/resumes/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d", w.Code)
	}
}
