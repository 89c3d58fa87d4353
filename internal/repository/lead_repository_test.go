package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/apexneuralecosystems/tracking-leads/internal/models"
)

func setupTestRepo(t *testing.T) LeadRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Lead{}, &models.TrackingEvent{}))
	return NewLeadRepository(db)
}

func TestInsertLeadDuplicateTrackingID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertLead(ctx, &models.Lead{TrackingID: "dup"}))
	err := repo.InsertLead(ctx, &models.Lead{TrackingID: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateLead)
}

func TestFindLeadByTrackingIDNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindLeadByTrackingID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestSetOpenedAtIsConditional(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertLead(ctx, &models.Lead{TrackingID: "t1"}))

	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	applied, err := repo.SetOpenedAt(ctx, "t1", first)
	require.NoError(t, err)
	assert.True(t, applied)

	// Second writer loses: guard sees opened_at already set
	applied, err = repo.SetOpenedAt(ctx, "t1", first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, applied)

	lead, err := repo.FindLeadByTrackingID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, lead.OpenedAt)
	assert.True(t, lead.OpenedAt.Equal(first))
}

func TestSetCampaignNameOverwritesDistinctOnly(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertLead(ctx, &models.Lead{TrackingID: "t2"}))

	applied, err := repo.SetCampaignName(ctx, "t2", "A")
	require.NoError(t, err)
	assert.True(t, applied)

	// Same label is a no-op
	applied, err = repo.SetCampaignName(ctx, "t2", "A")
	require.NoError(t, err)
	assert.False(t, applied)

	// Distinct label wins
	applied, err = repo.SetCampaignName(ctx, "t2", "B")
	require.NoError(t, err)
	assert.True(t, applied)

	lead, err := repo.FindLeadByTrackingID(ctx, "t2")
	require.NoError(t, err)
	require.NotNil(t, lead.CampaignName)
	assert.Equal(t, "B", *lead.CampaignName)
}

func TestListLeadsFilters(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertLead(ctx, &models.Lead{TrackingID: "a", Email: "a@example.com"}))
	require.NoError(t, repo.InsertLead(ctx, &models.Lead{TrackingID: "b", Email: "b@example.com"}))

	leads, err := repo.ListLeads(ctx, LeadFilter{Email: "a@example.com"})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "a", leads[0].TrackingID)

	leads, err = repo.ListLeads(ctx, LeadFilter{TrackingID: "b"})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "b", leads[0].TrackingID)

	// Date window excluding everything
	past := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := past.Add(24 * time.Hour)
	leads, err = repo.ListLeads(ctx, LeadFilter{From: &past, To: &pastEnd})
	require.NoError(t, err)
	assert.Empty(t, leads)

	// No filter returns all
	leads, err = repo.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

func TestDeleteLead(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	lead := &models.Lead{TrackingID: "gone"}
	require.NoError(t, repo.InsertLead(ctx, lead))

	require.NoError(t, repo.DeleteLead(ctx, lead.ID))
	assert.ErrorIs(t, repo.DeleteLead(ctx, lead.ID), ErrLeadNotFound)

	_, err := repo.FindLeadByTrackingID(ctx, "gone")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	err := repo.Transaction(ctx, func(tx LeadRepository) error {
		if err := tx.InsertLead(ctx, &models.Lead{TrackingID: "tx"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.FindLeadByTrackingID(ctx, "tx")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}
