package handlers

import (
	"errors"
	"net/http"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errLogEvent   = "failed to log event"
	errListEvents = "failed to load events"

	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondMissingFields maps a validation error to a 400 naming the fields.
// Returns true when it handled the error.
func (h *Handler) respondMissingFields(c *gin.Context, err error) bool {
	var missing *service.MissingFieldsError
	if errors.As(err, &missing) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          missing.Error(),
			"missing_fields": missing.Fields,
		})
		return true
	}
	return false
}

// Request DTO for event ingestion.
type logEventRequest struct {
	StationUID   string              `json:"station_uid"`
	EventType    string              `json:"event_type"`
	OrderNo      string              `json:"order_no,omitempty"`
	BarcodeValue string              `json:"barcode_value,omitempty"`
	CapturedAt   time.Time           `json:"captured_at"`
	StationMeta  *models.StationMeta `json:"station_meta,omitempty"`
}

// @Summary      Log a barcode scan event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body  body  logEventRequest  true  "Scan event"
// @Success      201   {object}  map[string]interface{}  "event_id"
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /api/events/log [post]
func (h *Handler) logEvent(c *gin.Context) {
	var req logEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	eventID, err := h.services.Events.Ingest(c.Request.Context(), service.IngestParams{
		StationUID:   req.StationUID,
		EventType:    req.EventType,
		OrderNo:      req.OrderNo,
		BarcodeValue: req.BarcodeValue,
		CapturedAt:   req.CapturedAt,
		StationMeta:  req.StationMeta,
	})
	if err != nil {
		if h.respondMissingFields(c, err) {
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLogEvent, "event_log_failed", err,
			"station_uid", req.StationUID, "event_type", req.EventType)
		return
	}

	if h.log != nil {
		h.log.Infow("event_logged", "station_uid", req.StationUID,
			"event_type", req.EventType, "order_no", req.OrderNo, "event_id", eventID)
	}
	c.JSON(http.StatusCreated, gin.H{"event_id": eventID})
}

// @Summary      List scan events
// @Description  Filter by station, order, type, and time range (RFC3339 or 'YYYY-MM-DD').
// @Tags         events
// @Produce      json
// @Param        station_uid  query  string  false  "Station uid"
// @Param        order_no     query  string  false  "Order number"
// @Param        event_type   query  string  false  "Event type"
// @Param        from         query  string  false  "Start of range"
// @Param        to           query  string  false  "End of range (date-only treated as end of day)"
// @Param        limit        query  int     false  "Max rows (default 100)"
// @Success      200  {object}  map[string]interface{}  "count, events"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/events [get]
// @Security     BearerAuth
func (h *Handler) listEvents(c *gin.Context) {
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	limit := 0
	if qs := c.Query("limit"); qs != "" {
		limit = atoiOrZero(qs)
	}

	events, err := h.services.Events.List(c.Request.Context(), service.EventFilter{
		StationUID: c.Query("station_uid"),
		OrderNo:    c.Query("order_no"),
		EventType:  c.Query("event_type"),
		From:       from,
		To:         to,
		Limit:      limit,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListEvents, "events_list_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Server time
// @Description  Clock reference for the agents' time-drift check.
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /time [get]
func (h *Handler) serverTime(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"server_time": time.Now().UTC().Format(time.RFC3339Nano)})
}
