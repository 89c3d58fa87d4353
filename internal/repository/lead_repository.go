package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/apexneuralecosystems/tracking-leads/internal/models"
)

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrDuplicateLead = errors.New("lead already exists")
)

// LeadFilter narrows ListLeads results. Zero values mean "no filter".
// From and To bound created_at inclusively.
type LeadFilter struct {
	Email      string
	TrackingID string
	From       *time.Time
	To         *time.Time
}

// LeadRepository handles all database operations for leads and their
// engagement events. Callers that need read-then-write atomicity wrap the
// calls in Transaction; inside the callback every method runs against the
// same database transaction.
//
// SetOpenedAt, SetFirstClickAt and SetCampaignName are conditional updates:
// they apply only when their guard holds and report whether a row changed,
// so concurrent racers on the same tracking id cannot both win a
// first-occurrence write.
type LeadRepository interface {
	Transaction(ctx context.Context, fn func(tx LeadRepository) error) error

	FindLeadByTrackingID(ctx context.Context, trackingID string) (*models.Lead, error)
	FindLeadByID(ctx context.Context, id string) (*models.Lead, error)
	FindLeadByEmail(ctx context.Context, email string) (*models.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]models.Lead, error)
	InsertLead(ctx context.Context, lead *models.Lead) error
	DeleteLead(ctx context.Context, id string) error

	InsertEvent(ctx context.Context, event *models.TrackingEvent) error
	HasOpenEvent(ctx context.Context, trackingID string) (bool, error)
	CountEvents(ctx context.Context, trackingID, eventType string) (int64, error)

	SetOpenedAt(ctx context.Context, trackingID string, at time.Time) (bool, error)
	SetFirstClickAt(ctx context.Context, trackingID string, at time.Time) (bool, error)
	SetCampaignName(ctx context.Context, trackingID, campaignName string) (bool, error)
}

// leadRepository implements LeadRepository on gorm
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

// Transaction runs fn inside a single database transaction. The repository
// passed to fn shares the transaction; errors roll everything back.
func (r *leadRepository) Transaction(ctx context.Context, fn func(tx LeadRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&leadRepository{db: tx})
	})
}

func (r *leadRepository) FindLeadByTrackingID(ctx context.Context, trackingID string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindLeadByID(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindLeadByEmail(ctx context.Context, email string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListLeads returns leads newest first, optionally filtered
func (r *leadRepository) ListLeads(ctx context.Context, filter LeadFilter) ([]models.Lead, error) {
	q := r.db.WithContext(ctx).Model(&models.Lead{}).Order("created_at DESC")
	if filter.Email != "" {
		q = q.Where("email = ?", filter.Email)
	}
	if filter.TrackingID != "" {
		q = q.Where("tracking_id = ?", filter.TrackingID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	var leads []models.Lead
	if err := q.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// InsertLead creates a lead; returns ErrDuplicateLead when the tracking id
// (or any other unique column) is already taken.
func (r *leadRepository) InsertLead(ctx context.Context, lead *models.Lead) error {
	err := r.db.WithContext(ctx).Create(lead).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateLead
	}
	return err
}

// DeleteLead hard-deletes a lead by id; ErrLeadNotFound when no row matched.
// Events are kept: they are the append-only audit log.
func (r *leadRepository) DeleteLead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Lead{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *leadRepository) InsertEvent(ctx context.Context, event *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// HasOpenEvent reports whether any open event exists for the tracking id
func (r *leadRepository) HasOpenEvent(ctx context.Context, trackingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TrackingEvent{}).
		Where("tracking_id = ? AND event_type = ?", trackingID, models.EventTypeOpen).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *leadRepository) CountEvents(ctx context.Context, trackingID, eventType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TrackingEvent{}).
		Where("tracking_id = ? AND event_type = ?", trackingID, eventType).
		Count(&count).Error
	return count, err
}

// SetOpenedAt records the first open time. The WHERE guard keeps the write
// set-once even when two opens race.
func (r *leadRepository) SetOpenedAt(ctx context.Context, trackingID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("tracking_id = ? AND opened_at IS NULL", trackingID).
		Update("opened_at", at)
	return res.RowsAffected > 0, res.Error
}

// SetFirstClickAt records the first click time, set-once like SetOpenedAt.
func (r *leadRepository) SetFirstClickAt(ctx context.Context, trackingID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("tracking_id = ? AND first_click_at IS NULL", trackingID).
		Update("first_click_at", at)
	return res.RowsAffected > 0, res.Error
}

// SetCampaignName overwrites the campaign attribution when the new label
// differs from the current one. Last distinct non-empty label wins.
func (r *leadRepository) SetCampaignName(ctx context.Context, trackingID, campaignName string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("tracking_id = ? AND (campaign_name IS NULL OR campaign_name <> ?)", trackingID, campaignName).
		Update("campaign_name", campaignName)
	return res.RowsAffected > 0, res.Error
}
