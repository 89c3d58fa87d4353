package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apexneuralecosystems/tracking-leads/internal/logger"
	"github.com/apexneuralecosystems/tracking-leads/internal/metrics"
	"github.com/apexneuralecosystems/tracking-leads/internal/tracking"
)

// TrackOpen serves the open pixel: GET /o/{tracking_id}.png
//
// Tracking is best-effort from the email client's perspective. The client
// cannot act on an error, so a recording failure is logged and counted
// but the pixel bytes are returned regardless. That is a policy of this
// handler, not an accident of error handling.
func (h *Handlers) TrackOpen(c *gin.Context) {
	trackingID := strings.TrimSuffix(c.Param("tracking_id"), ".png")

	if trackingID != "" {
		if _, err := h.tracker.RecordOpen(c.Request.Context(), trackingID); err != nil {
			metrics.Get().TrackingFailuresTotal.WithLabelValues("open").Inc()
			logger.Log.Error("Open recording failed",
				logger.WithTrackingID(trackingID),
				zap.Error(err),
			)
		}
	}

	c.Data(http.StatusOK, "image/png", tracking.PixelPNG)
}

// TrackClick handles GET /t/{tracking_id}: record the click, then
// redirect to the configured base URL. No campaign attribution.
func (h *Handlers) TrackClick(c *gin.Context) {
	h.recordClickAndRedirect(c, c.Param("tracking_id"), "")
}

// TrackClickWithCampaign handles GET /go/{campaign_name}/{tracking_id}
// (and the /c/ and /r/ aliases): record the click with campaign
// attribution, then redirect.
func (h *Handlers) TrackClickWithCampaign(c *gin.Context) {
	h.recordClickAndRedirect(c, c.Param("tracking_id"), c.Param("campaign_name"))
}

// recordClickAndRedirect applies the same best-effort policy as the
// pixel: the visitor gets the redirect whether or not the write landed.
func (h *Handlers) recordClickAndRedirect(c *gin.Context, trackingID, campaignName string) {
	if trackingID != "" {
		if _, _, err := h.tracker.RecordClick(c.Request.Context(), trackingID, campaignName); err != nil {
			metrics.Get().TrackingFailuresTotal.WithLabelValues("click").Inc()
			logger.Log.Error("Click recording failed",
				logger.WithTrackingID(trackingID),
				zap.String("campaign_name", campaignName),
				zap.Error(err),
			)
		}
	}

	c.Redirect(http.StatusFound, h.cfg.RedirectBaseURL)
}
