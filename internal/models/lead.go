package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead is a recipient being tracked through an email campaign.
//
// TrackingID is the join key for all engagement events. OpenedAt and
// FirstClickAt are derived summaries of the event log: each is written at
// most once, with the timestamp of the earliest qualifying event, and is
// never overwritten afterwards. CampaignName follows the opposite rule:
// the last distinct non-empty campaign label seen on a click wins.
type Lead struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	TrackingID   string     `gorm:"size:128;not null;uniqueIndex" json:"tracking_id"`
	CampaignName *string    `gorm:"size:256;index" json:"campaign_name"`
	Email        string     `gorm:"size:320;index" json:"email"`
	FirstName    *string    `gorm:"size:256" json:"first_name"`
	Company      *string    `gorm:"size:256" json:"company"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	OpenedAt     *time.Time `json:"opened_at"`
	FirstClickAt *time.Time `json:"first_click_at"`
}

// TableName specifies the table name
func (Lead) TableName() string {
	return "leads"
}

// BeforeCreate assigns a UUID primary key when none is set
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
