package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Conversation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// SessionID scopes anonymous browser sessions; empty rows predate
	// session tracking and stay visible to everyone.
	SessionID string `gorm:"type:text;not null;default:'';index" json:"session_id,omitempty"`

	Title string `gorm:"type:text;not null;default:''" json:"title"`

	// DataFileIDs is the JSON-encoded list of files grounding this
	// conversation's prompts.
	DataFileIDs datatypes.JSON `gorm:"type:jsonb" json:"data_file_ids,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

// FileIDs decodes DataFileIDs; malformed or absent values read as none.
func (c *Conversation) FileIDs() []uuid.UUID {
	if len(c.DataFileIDs) == 0 {
		return nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(c.DataFileIDs, &ids); err != nil {
		return nil
	}
	return ids
}

func EncodeFileIDs(ids []uuid.UUID) (datatypes.JSON, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`

	Role    string `gorm:"type:text;not null" json:"role"` // user|assistant
	Content string `gorm:"type:text;not null;default:''" json:"content"`

	// Metadata carries generation diagnostics (dropped candidates,
	// failure codes) for the history UI.
	Metadata datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string { return "message" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
