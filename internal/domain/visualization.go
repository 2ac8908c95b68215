package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Visualization is one rendered-ready chart config produced for an
// assistant message. Config is the full themed Chart.js payload.
type Visualization struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	MessageID      *uuid.UUID `gorm:"type:uuid;index" json:"message_id,omitempty"`

	ChartType string `gorm:"type:text;not null;index" json:"chart_type"`
	Title     string `gorm:"type:text;not null;default:''" json:"title"`

	Config datatypes.JSON `gorm:"type:jsonb;not null" json:"config"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Visualization) TableName() string { return "visualization" }

func (v *Visualization) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
