package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resume processing status values. Transitions only move forward:
// uploaded -> processing -> processed|partial|failed.
const (
	ResumeStatusUploaded   = "uploaded"
	ResumeStatusProcessing = "processing"
	ResumeStatusProcessed  = "processed"
	ResumeStatusPartial    = "partial"
	ResumeStatusFailed     = "failed"
)

type Resume struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	OriginalFilename string         `gorm:"column:original_filename;not null" json:"original_filename"`
	Status           string         `gorm:"column:status;not null;default:'uploaded';index" json:"status"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Resume) TableName() string { return "resume" }
