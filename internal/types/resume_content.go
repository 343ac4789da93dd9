package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ResumeContent struct {
	ResumeID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"resume_id"`
	Resume            *Resume        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ResumeID;references:ID" json:"resume,omitempty"`
	RawText           string         `gorm:"column:raw_text;type:text" json:"raw_text"`
	ExtractedFeatures datatypes.JSON `gorm:"type:jsonb;column:extracted_features" json:"extracted_features,omitempty"`
	ProcessingError   string         `gorm:"column:processing_error;type:text" json:"processing_error,omitempty"`
	LastProcessed     time.Time      `gorm:"column:last_processed;not null;default:now()" json:"last_processed"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ResumeContent) TableName() string { return "resume_content" }
