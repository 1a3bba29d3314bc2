package handlers

import (
	"net/http"

	"packtrace/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errReportHealth   = "failed to report health"
	errStationsHealth = "failed to load stations health"
	errStationHealth  = "failed to load station health"
)

// Request DTO for station health reports.
type healthReportRequest struct {
	StationUID string `json:"station_uid"`
	CheckType  string `json:"check_type"`
	Status     string `json:"status"`
	Detail     any    `json:"detail,omitempty"`
}

// @Summary      Report station health
// @Tags         health
// @Accept       json
// @Produce      json
// @Param        body  body  healthReportRequest  true  "Health report"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /api/health/report [post]
func (h *Handler) reportHealth(c *gin.Context) {
	var req healthReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	err := h.services.Health.Report(c.Request.Context(), service.ReportParams{
		StationUID: req.StationUID,
		CheckType:  req.CheckType,
		Status:     req.Status,
		Detail:     req.Detail,
	})
	if err != nil {
		if h.respondMissingFields(c, err) {
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errReportHealth, "health_report_failed", err,
			"station_uid", req.StationUID, "check_type", req.CheckType)
		return
	}

	if h.log != nil {
		h.log.Infow("health_reported", "station_uid", req.StationUID,
			"check_type", req.CheckType, "status", req.Status)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary      Health overview of all stations
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, stations"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/health/stations [get]
// @Security     BearerAuth
func (h *Handler) stationsHealth(c *gin.Context) {
	views, err := h.services.Health.Overview(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStationsHealth, "stations_health_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(views),
		"stations": views,
	})
}

// @Summary      Detailed health of one station
// @Tags         health
// @Produce      json
// @Param        station_uid  path  string  true  "Station uid"
// @Success      200  {object}  service.StationDetail
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/health/stations/{station_uid} [get]
// @Security     BearerAuth
func (h *Handler) stationHealth(c *gin.Context) {
	stationUID := c.Param("station_uid")

	detail, err := h.services.Health.Detail(c.Request.Context(), stationUID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStationHealth, "station_health_failed", err,
			"station_uid", stationUID)
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}
