package handlers

import (
	"errors"
	"net/http"

	"packtrace/internal/models"
	"packtrace/internal/service"

	"github.com/gin-gonic/gin"
)

const errResolveOrder = "failed to resolve order events"

// Request DTO for order lookups; identifies the viewer for the audit trail.
type resolveOrderRequest struct {
	UserID    string `json:"user_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// @Summary      Resolve an order to its playback window and cameras
// @Description  Anchors on the completion scan (earliest event if the order never completed) and returns per-camera playback URLs over a ±60s window.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order_no  path  string               true   "Order number"
// @Param        body      body  resolveOrderRequest  false  "Viewer identity for the audit trail"
// @Success      200  {object}  models.PlaybackResult
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]interface{}  "message, suggestions"
// @Failure      500  {object}  map[string]string
// @Router       /api/orders/{order_no}/events [post]
// @Security     BearerAuth
func (h *Handler) resolveOrder(c *gin.Context) {
	orderNo := c.Param("order_no")

	var req resolveOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
			return
		}
	}
	if req.IPAddress == "" {
		req.IPAddress = c.ClientIP()
	}

	result, err := h.services.Orders.Resolve(c.Request.Context(), orderNo, models.QueryAudit{
		UserID:    req.UserID,
		IPAddress: req.IPAddress,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		var notFound *service.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message":     "Order not found",
				"suggestions": notFound.RemediationHints(),
			})
			return
		}
		if errors.Is(err, service.ErrEmptyOrderNo) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errResolveOrder, "order_resolve_failed", err,
			"order_no", orderNo)
		return
	}

	if h.log != nil {
		h.log.Infow("order_resolved", "order_no", orderNo,
			"station_uid", result.StationUID, "user_id", req.UserID)
	}
	c.JSON(http.StatusOK, result)
}
