// Package handlers contains the gin HTTP handlers for the tracking and
// lead-management API.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apexneuralecosystems/tracking-leads/internal/config"
	"github.com/apexneuralecosystems/tracking-leads/internal/repository"
	"github.com/apexneuralecosystems/tracking-leads/internal/tracking"
)

// Handlers holds the collaborators the HTTP layer dispatches into
type Handlers struct {
	cfg     *config.Config
	repo    repository.LeadRepository
	tracker *tracking.Service
}

// NewHandlers creates the handler set
func NewHandlers(cfg *config.Config, repo repository.LeadRepository, tracker *tracking.Service) *Handlers {
	return &Handlers{cfg: cfg, repo: repo, tracker: tracker}
}

// Health reports service liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.cfg.AppName,
		"timestamp": time.Now().UTC(),
	})
}

// RegisterRoutes attaches all routes to the router. The extra middleware
// (rate limiting) applies to the management API only: the pixel and
// redirect endpoints always answer.
func (h *Handlers) RegisterRoutes(r *gin.Engine, apiMiddleware ...gin.HandlerFunc) {
	r.GET("/health", h.Health)

	// Tracking endpoints, hit by email clients and browsers
	r.GET("/o/:tracking_id", h.TrackOpen)
	r.GET("/t/:tracking_id", h.TrackClick)
	r.GET("/go/:campaign_name/:tracking_id", h.TrackClickWithCampaign)
	r.GET("/c/:campaign_name/:tracking_id", h.TrackClickWithCampaign)
	r.GET("/r/:campaign_name/:tracking_id", h.TrackClickWithCampaign)

	// Management API
	api := r.Group("/", apiMiddleware...)
	api.POST("/events", h.CreateEvent)
	api.POST("/leads", h.CreateLead)
	api.GET("/leads", h.ListLeads)
	api.GET("/leads/:id", h.GetLead)
	api.DELETE("/leads/:id", h.DeleteLead)
}
