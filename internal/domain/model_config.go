package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModelConfig is a registered Ollama model. Exactly one row is active
// at a time; the active row decides which model serves generation.
type ModelConfig struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ModelName   string `gorm:"type:text;not null;uniqueIndex" json:"model_name"`
	DisplayName string `gorm:"type:text;not null;default:''" json:"display_name"`
	IsActive    bool   `gorm:"not null;default:false;index" json:"is_active"`

	Temperature float64 `gorm:"not null;default:0.3" json:"temperature"`
	MaxTokens   int     `gorm:"not null;default:2048" json:"max_tokens"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (ModelConfig) TableName() string { return "model_config" }

func (m *ModelConfig) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
