package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apexneuralecosystems/tracking-leads/internal/models"
	"github.com/apexneuralecosystems/tracking-leads/internal/tracking"
	"github.com/apexneuralecosystems/tracking-leads/internal/util"
)

// EventCreateRequest is the POST /events body
type EventCreateRequest struct {
	TrackingID string `json:"tracking_id" binding:"required,max=128"`
	EventType  string `json:"event_type" binding:"required"`
}

// CreateEvent logs a single open or click event: POST /events.
// The same lead reconciliation as the pixel/redirect paths applies, but
// here failures surface to the caller; this endpoint is not best-effort.
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req EventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	trackingID := strings.TrimSpace(req.TrackingID)
	if trackingID == "" {
		util.RespondValidationError(c, "tracking_id", "tracking_id must not be blank")
		return
	}
	if !models.ValidEventType(req.EventType) {
		util.RespondValidationError(c, "event_type", "event_type must be 'open' or 'click'")
		return
	}

	event, err := h.tracker.RecordEvent(c.Request.Context(), trackingID, req.EventType)
	if err != nil {
		if errors.Is(err, tracking.ErrInvalidEventType) {
			util.RespondValidationError(c, "event_type", err.Error())
			return
		}
		util.RespondInternalError(c, "failed to record event")
		return
	}

	c.JSON(http.StatusCreated, event)
}
