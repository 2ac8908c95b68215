package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// GenerationJob tracks one asynchronous chart generation. Clients poll
// it by ID; Result holds the final charts payload on success, ErrorCode
// and ErrorMessage the taxonomy entry on failure.
type GenerationJob struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	MessageID      *uuid.UUID `gorm:"type:uuid;index" json:"message_id,omitempty"`

	Status   string `gorm:"type:text;not null;default:'pending';index" json:"status"`
	Attempts int    `gorm:"not null;default:0" json:"attempts"`
	Progress int    `gorm:"not null;default:0" json:"progress"`

	ErrorCode    string `gorm:"type:text;not null;default:''" json:"error_code,omitempty"`
	ErrorMessage string `gorm:"type:text;not null;default:''" json:"error_message,omitempty"`

	Result datatypes.JSON `gorm:"type:jsonb" json:"result,omitempty"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (GenerationJob) TableName() string { return "generation_job" }

func (j *GenerationJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
