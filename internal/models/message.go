package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Message is one durable conversation turn, ordered by Timestamp within a
// session. The in-memory conversation window is a bounded copy of the tail of
// these rows; this table is append-only.
type Message struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:text;index" json:"session_id"`
	Role      string `gorm:"column:role;type:text" json:"role"` // "user" | "assistant"
	Type      string `gorm:"column:type;type:text" json:"type"` // "text" | "audio"
	Content   string `gorm:"column:content;type:text" json:"content"`

	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"-"`
	Metadata  datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	Timestamp time.Time `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
}

func (Message) TableName() string { return "messages" }
