package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
	"github.com/apexneuralecosystems/tracking-leads/internal/models"
	"github.com/apexneuralecosystems/tracking-leads/internal/repository"
	"github.com/apexneuralecosystems/tracking-leads/internal/tracking"
)

// Seeder populates a development database with plausible leads and
// engagement traffic. Events are driven through the tracking service so
// the derived lead fields (opened_at, first_click_at, campaign_name) are
// produced by the real reconciliation logic, not hand-written.
type Seeder struct {
	repo    repository.LeadRepository
	tracker *tracking.Service
}

// NewSeeder creates a seeder on top of a database connection
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	repo := repository.NewLeadRepository(db)
	return &Seeder{repo: repo, tracker: tracking.NewService(repo)}
}

var campaignPool = []string{
	"SpringLaunch", "DubaiCamp", "ProductHunt", "Q3Outreach", "Webinar", "ReEngage",
}

// SeedDev seeds leadCount explicit leads plus synthetic opens and clicks
func (s *Seeder) SeedDev(ctx context.Context, leadCount int) error {
	if leadCount <= 0 {
		leadCount = 50
	}

	logger.Log.Info("Seeding leads", zap.Int("count", leadCount))

	trackingIDs := make([]string, 0, leadCount)
	for i := 0; i < leadCount; i++ {
		firstName := gofakeit.FirstName()
		company := gofakeit.Company()
		lead := &models.Lead{
			TrackingID: strings.ReplaceAll(uuid.New().String(), "-", ""),
			Email:      gofakeit.Email(),
			FirstName:  &firstName,
			Company:    &company,
		}
		if err := s.repo.InsertLead(ctx, lead); err != nil {
			return fmt.Errorf("seed lead %d: %w", i, err)
		}
		trackingIDs = append(trackingIDs, lead.TrackingID)
	}

	logger.Log.Info("Seeding engagement events")

	for _, id := range trackingIDs {
		// Roughly a third of leads open; opens are re-fetched a few times
		// to exercise the dedup path.
		if rand.Intn(3) == 0 {
			for i := 0; i <= rand.Intn(3); i++ {
				if _, err := s.tracker.RecordOpen(ctx, id); err != nil {
					return fmt.Errorf("seed open: %w", err)
				}
			}
		}
		// A few leads click, sometimes more than once with different
		// campaign labels to exercise last-wins attribution.
		if rand.Intn(5) == 0 {
			for i := 0; i <= rand.Intn(2); i++ {
				campaign := campaignPool[rand.Intn(len(campaignPool))]
				if _, _, err := s.tracker.RecordClick(ctx, id, campaign); err != nil {
					return fmt.Errorf("seed click: %w", err)
				}
			}
		}
	}

	// A handful of clicks on unknown ids to produce implicit leads
	for i := 0; i < leadCount/10; i++ {
		id := strings.ReplaceAll(uuid.New().String(), "-", "")
		campaign := campaignPool[rand.Intn(len(campaignPool))]
		if _, _, err := s.tracker.RecordClick(ctx, id, campaign); err != nil {
			return fmt.Errorf("seed implicit lead: %w", err)
		}
	}

	logger.Log.Info("Seeding complete")
	return nil
}
