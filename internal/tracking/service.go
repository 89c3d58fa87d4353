// Package tracking implements the engagement-recording core: appending
// open/click events and reconciling the derived lead state (first open,
// first click, campaign attribution).
//
// Every public operation runs its reads and writes inside one repository
// transaction per call, so concurrent hits on the same tracking id cannot
// double-apply first-occurrence side effects or create duplicate leads.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
	"github.com/apexneuralecosystems/tracking-leads/internal/metrics"
	"github.com/apexneuralecosystems/tracking-leads/internal/models"
	"github.com/apexneuralecosystems/tracking-leads/internal/repository"
)

// ErrInvalidEventType is returned when an event type is not open or click.
var ErrInvalidEventType = errors.New("event_type must be 'open' or 'click'")

// Service records tracking events and reconciles lead state
type Service struct {
	repo repository.LeadRepository
}

// NewService creates a tracking service on top of a lead repository
func NewService(repo repository.LeadRepository) *Service {
	return &Service{repo: repo}
}

// RecordOpen handles a tracking-pixel hit.
//
// Repeated opens for the same tracking id are not stored: email clients
// re-fetch the pixel on every render, and keeping only the first open
// keeps the event table from filling with duplicates. When an open event
// already exists the call is a no-op and returns a nil event. Otherwise
// the event is appended and, if a lead exists with opened_at unset,
// opened_at is stamped with this event's time.
func (s *Service) RecordOpen(ctx context.Context, trackingID string) (*models.TrackingEvent, error) {
	var event *models.TrackingEvent

	err := s.repo.Transaction(ctx, func(tx repository.LeadRepository) error {
		seen, err := tx.HasOpenEvent(ctx, trackingID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}

		ev := &models.TrackingEvent{
			TrackingID: trackingID,
			EventType:  models.EventTypeOpen,
			CreatedAt:  time.Now().UTC(),
		}
		if err := tx.InsertEvent(ctx, ev); err != nil {
			return err
		}
		if _, err := tx.SetOpenedAt(ctx, trackingID, ev.CreatedAt); err != nil {
			return err
		}

		event = ev
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record open: %w", err)
	}

	if event != nil {
		metrics.Get().OpensRecordedTotal.Inc()
		logger.Log.Info("Open recorded",
			logger.WithTrackingID(trackingID),
			zap.String("event_id", event.ID),
		)
	} else {
		metrics.Get().OpensDedupedTotal.Inc()
	}
	return event, nil
}

// RecordClick handles a tracking-link hit.
//
// Every click is stored; clicks are never deduplicated. The lead keyed by
// the tracking id is updated: first_click_at is stamped once, and a
// non-empty campaignName that differs from the current attribution
// overwrites it (last distinct label wins). An unknown tracking id
// creates the lead implicitly with an empty email. When two concurrent
// clicks race on an unknown id, the loser's unique violation is resolved
// by retrying as an update; the caller never sees the conflict.
func (s *Service) RecordClick(ctx context.Context, trackingID, campaignName string) (*models.Lead, *models.TrackingEvent, error) {
	var (
		lead    *models.Lead
		event   *models.TrackingEvent
		created bool
		err     error
	)

	// A lost implicit-create race aborts the whole transaction, so the
	// retry re-runs it; by then the winning lead row exists.
	for attempt := 0; attempt < 2; attempt++ {
		lead, event, created, err = s.recordClick(ctx, trackingID, campaignName)
		if !errors.Is(err, repository.ErrDuplicateLead) {
			break
		}
		logger.Log.Debug("Implicit lead creation raced, retrying as update",
			logger.WithTrackingID(trackingID),
		)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("record click: %w", err)
	}

	m := metrics.Get()
	m.ClicksRecordedTotal.WithLabelValues(strconv.FormatBool(campaignName != "")).Inc()
	if created {
		m.LeadsCreatedTotal.WithLabelValues("implicit").Inc()
	}

	logger.Log.Info("Click recorded",
		logger.WithTrackingID(trackingID),
		zap.String("campaign_name", campaignName),
		zap.String("event_id", event.ID),
	)
	return lead, event, nil
}

func (s *Service) recordClick(ctx context.Context, trackingID, campaignName string) (*models.Lead, *models.TrackingEvent, bool, error) {
	var (
		lead    *models.Lead
		event   *models.TrackingEvent
		created bool
	)

	err := s.repo.Transaction(ctx, func(tx repository.LeadRepository) error {
		now := time.Now().UTC()

		ev := &models.TrackingEvent{
			TrackingID: trackingID,
			EventType:  models.EventTypeClick,
			CreatedAt:  now,
		}
		if err := tx.InsertEvent(ctx, ev); err != nil {
			return err
		}
		event = ev

		_, err := tx.FindLeadByTrackingID(ctx, trackingID)
		if errors.Is(err, repository.ErrLeadNotFound) {
			newLead := &models.Lead{
				TrackingID:   trackingID,
				Email:        "",
				FirstClickAt: &now,
			}
			if campaignName != "" {
				newLead.CampaignName = &campaignName
			}
			if err := tx.InsertLead(ctx, newLead); err != nil {
				return err
			}
			lead = newLead
			created = true
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.SetFirstClickAt(ctx, trackingID, now); err != nil {
			return err
		}
		if campaignName != "" {
			if _, err := tx.SetCampaignName(ctx, trackingID, campaignName); err != nil {
				return err
			}
		}

		// Re-read for the post-update state
		lead, err = tx.FindLeadByTrackingID(ctx, trackingID)
		if err != nil {
			return err
		}
		return nil
	})
	return lead, event, created, err
}

// RecordEvent handles the manual event-logging API. Unlike the pixel
// path, the event row is always appended (the caller is owed a created
// event), and the same lead reconciliation as the pixel/redirect paths is
// applied afterwards.
func (s *Service) RecordEvent(ctx context.Context, trackingID, eventType string) (*models.TrackingEvent, error) {
	if !models.ValidEventType(eventType) {
		return nil, ErrInvalidEventType
	}

	if eventType == models.EventTypeClick {
		_, event, err := s.RecordClick(ctx, trackingID, "")
		return event, err
	}

	var event *models.TrackingEvent
	err := s.repo.Transaction(ctx, func(tx repository.LeadRepository) error {
		ev := &models.TrackingEvent{
			TrackingID: trackingID,
			EventType:  models.EventTypeOpen,
			CreatedAt:  time.Now().UTC(),
		}
		if err := tx.InsertEvent(ctx, ev); err != nil {
			return err
		}
		if _, err := tx.SetOpenedAt(ctx, trackingID, ev.CreatedAt); err != nil {
			return err
		}
		event = ev
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}

	logger.Log.Info("Event recorded",
		logger.WithTrackingID(trackingID),
		zap.String("event_type", eventType),
		zap.String("event_id", event.ID),
	)
	return event, nil
}
