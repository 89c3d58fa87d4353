package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
	"github.com/apexneuralecosystems/tracking-leads/internal/metrics"
	"github.com/apexneuralecosystems/tracking-leads/internal/models"
	"github.com/apexneuralecosystems/tracking-leads/internal/repository"
	"github.com/apexneuralecosystems/tracking-leads/internal/util"
)

const dateLayout = "2006-01-02"

// LeadCreateRequest is the POST /leads body. Exactly one of LeadID
// (used verbatim as the tracking id) or Email must be set; a lead
// created by email gets a system-generated tracking id.
type LeadCreateRequest struct {
	LeadID       string `json:"lead_id" binding:"max=128"`
	Email        string `json:"email" binding:"max=320"`
	CampaignName string `json:"campaign_name" binding:"max=256"`
	FirstName    string `json:"first_name" binding:"max=256"`
	Company      string `json:"company" binding:"max=256"`
}

// CreateLead creates a lead explicitly: POST /leads
func (h *Handlers) CreateLead(c *gin.Context) {
	var req LeadCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	leadID := strings.TrimSpace(req.LeadID)
	email := strings.TrimSpace(req.Email)

	switch {
	case leadID == "" && email == "":
		util.RespondValidationError(c, "lead_id", "exactly one of lead_id or email is required")
		return
	case leadID != "" && email != "":
		util.RespondValidationError(c, "lead_id", "pass only one of lead_id or email")
		return
	}

	trackingID := leadID
	if trackingID == "" {
		trackingID = generateTrackingID()
	}

	ctx := c.Request.Context()

	// Email uniqueness is checked up front; tracking id uniqueness is
	// also enforced by the storage layer, which backstops races here.
	if email != "" {
		if _, err := h.repo.FindLeadByEmail(ctx, email); err == nil {
			util.RespondConflict(c, "lead with this email already exists")
			return
		} else if !errors.Is(err, repository.ErrLeadNotFound) {
			util.RespondInternalError(c, "failed to create lead")
			return
		}
	}

	lead := &models.Lead{
		TrackingID: trackingID,
		Email:      email,
	}
	if req.CampaignName != "" {
		lead.CampaignName = &req.CampaignName
	}
	if req.FirstName != "" {
		lead.FirstName = &req.FirstName
	}
	if req.Company != "" {
		lead.Company = &req.Company
	}

	if err := h.repo.InsertLead(ctx, lead); err != nil {
		if errors.Is(err, repository.ErrDuplicateLead) {
			util.RespondConflict(c, "lead with this tracking_id already exists")
			return
		}
		util.RespondInternalError(c, "failed to create lead")
		return
	}

	metrics.Get().LeadsCreatedTotal.WithLabelValues("explicit").Inc()
	logger.Log.Info("Lead created",
		logger.WithLeadID(lead.ID),
		logger.WithTrackingID(lead.TrackingID),
	)

	c.JSON(http.StatusCreated, lead)
}

// ListLeads returns leads newest first: GET /leads
// Optional filters: email, tracking_id, from_date, to_date (YYYY-MM-DD,
// inclusive day bounds on created_at).
func (h *Handlers) ListLeads(c *gin.Context) {
	filter := repository.LeadFilter{
		Email:      strings.TrimSpace(c.Query("email")),
		TrackingID: strings.TrimSpace(c.Query("tracking_id")),
	}

	var fromDay, toDay time.Time
	if v := c.Query("from_date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			util.RespondValidationError(c, "from_date", "from_date must be YYYY-MM-DD")
			return
		}
		fromDay = d
		filter.From = &fromDay
	}
	if v := c.Query("to_date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			util.RespondValidationError(c, "to_date", "to_date must be YYYY-MM-DD")
			return
		}
		toDay = d.Add(24*time.Hour - time.Nanosecond)
		filter.To = &toDay
	}
	if filter.From != nil && filter.To != nil && fromDay.After(toDay) {
		util.RespondBadRequest(c, "from_date must be on or before to_date")
		return
	}

	leads, err := h.repo.ListLeads(c.Request.Context(), filter)
	if err != nil {
		util.RespondInternalError(c, "failed to list leads")
		return
	}
	if leads == nil {
		leads = []models.Lead{}
	}

	c.JSON(http.StatusOK, leads)
}

// GetLead returns a single lead by id: GET /leads/{id}
func (h *Handlers) GetLead(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		util.RespondBadRequest(c, "invalid lead id")
		return
	}

	lead, err := h.repo.FindLeadByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			util.RespondNotFound(c, "lead")
			return
		}
		util.RespondInternalError(c, "failed to load lead")
		return
	}

	c.JSON(http.StatusOK, lead)
}

// DeleteLead removes a lead by id: DELETE /leads/{id}. The lead's events
// are kept; they are the audit log.
func (h *Handlers) DeleteLead(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		util.RespondBadRequest(c, "invalid lead id")
		return
	}

	err := h.repo.DeleteLead(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			util.RespondNotFound(c, "lead")
			return
		}
		util.RespondInternalError(c, "failed to delete lead")
		return
	}

	logger.Log.Info("Lead deleted", logger.WithLeadID(id))
	c.Status(http.StatusNoContent)
}

// generateTrackingID produces an opaque 32-character tracking id for
// leads created by email.
func generateTrackingID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
