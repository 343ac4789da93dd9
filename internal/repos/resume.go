package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirebridge/hirebridge-backend/internal/platform/logger"
	"github.com/hirebridge/hirebridge-backend/internal/types"
)

type ResumeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, resume *types.Resume) (*types.Resume, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Resume, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Resume, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	SaveContent(ctx context.Context, tx *gorm.DB, content *types.ResumeContent) error
	GetContent(ctx context.Context, tx *gorm.DB, resumeID uuid.UUID) (*types.ResumeContent, error)
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type resumeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResumeRepo(db *gorm.DB, baseLog *logger.Logger) ResumeRepo {
	return &resumeRepo{db: db, log: baseLog.With("repo", "ResumeRepo")}
}

func (r *resumeRepo) Create(ctx context.Context, tx *gorm.DB, resume *types.Resume) (*types.Resume, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(resume).Error; err != nil {
		return nil, err
	}
	return resume, nil
}

func (r *resumeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Resume, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var resume types.Resume
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&resume).Error; err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Resume, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Resume
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resumeRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Resume{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *resumeRepo) SaveContent(ctx context.Context, tx *gorm.DB, content *types.ResumeContent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(content).Error
}

func (r *resumeRepo) GetContent(ctx context.Context, tx *gorm.DB, resumeID uuid.UUID) (*types.ResumeContent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var content types.ResumeContent
	if err := transaction.WithContext(ctx).
		Where("resume_id = ?", resumeID).
		First(&content).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *resumeRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("resume_id = ?", id).
		Delete(&types.ResumeContent{}).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		Delete(&types.Resume{}).Error
}
