package models

import (
	"time"
)

// EventLog represents one admin activity entry kept in the local store
type EventLog struct {
	ID          string        `bson:"_id" json:"id"`
	Type        EEventLogType `bson:"type" json:"type"`
	Description string        `bson:"description" json:"description"`
	ActorID     string        `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	RecordID    string        `bson:"record_id,omitempty" json:"record_id,omitempty"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}
