package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CallSession is the durable record of one assistant call. The realtime core
// keeps its own in-memory registry; this document survives reconnects.
type CallSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`

	Active         bool      `bson:"active" json:"active"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	LastActivityAt time.Time `bson:"last_activity_at" json:"last_activity_at"`

	EndedAt *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}
