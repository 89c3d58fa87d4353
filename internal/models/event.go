package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event types recorded against a tracking id
const (
	EventTypeOpen  = "open"
	EventTypeClick = "click"
)

// ValidEventType reports whether t is a recordable event type.
func ValidEventType(t string) bool {
	return t == EventTypeOpen || t == EventTypeClick
}

// TrackingEvent is one open or click occurrence for a tracking id.
// Events are append-only and form the ground-truth audit log from which
// lead summary fields are derived. A matching lead may not exist yet when
// an event is recorded, so TrackingID references leads by value only.
type TrackingEvent struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	TrackingID string    `gorm:"size:128;not null;index:idx_events_tracking_created" json:"tracking_id"`
	EventType  string    `gorm:"size:64;not null;index" json:"event_type"`
	CreatedAt  time.Time `gorm:"index:idx_events_tracking_created" json:"created_at"`
}

// TableName specifies the table name
func (TrackingEvent) TableName() string {
	return "events"
}

// BeforeCreate assigns a UUID primary key when none is set
func (e *TrackingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
