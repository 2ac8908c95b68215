package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DataFile is an uploaded dataset. The raw bytes live on disk at
// StoragePath; Summary is the cached structural analysis embedded into
// generation prompts.
type DataFile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SessionID string `gorm:"type:text;not null;default:'';index" json:"session_id,omitempty"`

	FileName  string `gorm:"type:text;not null" json:"file_name"`
	FileType  string `gorm:"type:text;not null;index" json:"file_type"` // csv|json|yaml|xlsx|pdf
	SizeBytes int64  `gorm:"not null;default:0" json:"size_bytes"`

	StoragePath string `gorm:"type:text;not null" json:"-"`

	Summary datatypes.JSON `gorm:"type:jsonb" json:"summary,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (DataFile) TableName() string { return "data_file" }

func (f *DataFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
