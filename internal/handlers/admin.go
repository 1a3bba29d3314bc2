package handlers

import (
	"net/http"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errRegisterStation = "failed to register station"
	errDailyStats      = "failed to fetch daily stats"
	errRegisterCamera  = "failed to register camera"
	errRegisterNAS     = "failed to register NAS"
	errRegisterScanner = "failed to register scanner"
	errBindDevices     = "failed to bind devices"

	errInvalidBodyPref = "invalid body: "
)

type registerStationRequest struct {
	StationUID   string `json:"station_uid"`
	StationName  string `json:"station_name,omitempty"`
	Location     string `json:"location,omitempty"`
	AgentVersion string `json:"agent_version,omitempty"`
}

type registerCameraRequest struct {
	CamUID       string `json:"cam_uid"`
	SerialNumber string `json:"serial_number"`
	LastSeenIP   string `json:"last_seen_ip,omitempty"`
	Model        string `json:"model,omitempty"`
}

type registerNASRequest struct {
	NasUID       string `json:"nas_uid"`
	SerialNumber string `json:"serial_number"`
	LastSeenIP   string `json:"last_seen_ip,omitempty"`
	SSVersion    string `json:"ss_version,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
}

type registerScannerRequest struct {
	ScannerUID string `json:"scanner_uid"`
	StationUID string `json:"station_uid"`
	VendorID   string `json:"vendor_id,omitempty"`
	ProductID  string `json:"product_id,omitempty"`
	ComPort    string `json:"com_port,omitempty"`
}

type bindDevicesRequest struct {
	StationUID string `json:"station_uid"`
	Role       string `json:"role,omitempty"`
	CamUID     string `json:"cam_uid,omitempty"`
	NasUID     string `json:"nas_uid,omitempty"`
	ScannerUID string `json:"scanner_uid,omitempty"`
}

// register handles the shared bind-validate-call-respond shape of the admin
// upsert endpoints.
func (h *Handler) register(c *gin.Context, dst any, userMsg, logKey string, call func() error) {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := call(); err != nil {
		if h.respondMissingFields(c, err) {
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary      Register or update a station
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  registerStationRequest  true  "Station"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/stations [post]
// @Security     BearerAuth
func (h *Handler) registerStation(c *gin.Context) {
	var req registerStationRequest
	h.register(c, &req, errRegisterStation, "station_register_failed", func() error {
		return h.services.Devices.RegisterStation(c.Request.Context(), models.Station{
			StationUID:   req.StationUID,
			StationName:  req.StationName,
			Location:     req.Location,
			AgentVersion: req.AgentVersion,
		})
	})
}

// @Summary      Register or refresh a camera
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  registerCameraRequest  true  "Camera"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/devices/cams [post]
// @Security     BearerAuth
func (h *Handler) registerCamera(c *gin.Context) {
	var req registerCameraRequest
	h.register(c, &req, errRegisterCamera, "camera_register_failed", func() error {
		return h.services.Devices.RegisterCamera(c.Request.Context(), models.Camera{
			CamUID:       req.CamUID,
			SerialNumber: req.SerialNumber,
			LastSeenIP:   req.LastSeenIP,
			Model:        req.Model,
		})
	})
}

// @Summary      Register or refresh a storage node
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  registerNASRequest  true  "NAS"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/devices/nas [post]
// @Security     BearerAuth
func (h *Handler) registerNAS(c *gin.Context) {
	var req registerNASRequest
	h.register(c, &req, errRegisterNAS, "nas_register_failed", func() error {
		return h.services.Devices.RegisterNAS(c.Request.Context(), models.NAS{
			NasUID:       req.NasUID,
			SerialNumber: req.SerialNumber,
			LastSeenIP:   req.LastSeenIP,
			SSVersion:    req.SSVersion,
			Hostname:     req.Hostname,
		})
	})
}

// @Summary      Register or refresh a barcode scanner
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  registerScannerRequest  true  "Scanner"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/devices/scanners [post]
// @Security     BearerAuth
func (h *Handler) registerScanner(c *gin.Context) {
	var req registerScannerRequest
	h.register(c, &req, errRegisterScanner, "scanner_register_failed", func() error {
		return h.services.Devices.RegisterScanner(c.Request.Context(), models.Scanner{
			ScannerUID: req.ScannerUID,
			StationUID: req.StationUID,
			VendorID:   req.VendorID,
			ProductID:  req.ProductID,
			ComPort:    req.ComPort,
		})
	})
}

// @Summary      Daily activity statistics
// @Description  Per-station event, order, and completion counts by day, derived from scan events.
// @Tags         admin
// @Produce      json
// @Param        station_uid  query  string  false  "Station uid"
// @Param        start_date   query  string  false  "First day (RFC3339 or YYYY-MM-DD)"
// @Param        end_date     query  string  false  "Last day (date-only treated as end of day)"
// @Success      200  {object}  map[string]interface{}  "count, stats"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/stats/daily [get]
// @Security     BearerAuth
func (h *Handler) dailyStats(c *gin.Context) {
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("start_date"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("end_date"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	stats, err := h.services.Stats.Daily(c.Request.Context(), service.StatsFilter{
		StationUID: c.Query("station_uid"),
		From:       from,
		To:         to,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errDailyStats, "daily_stats_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(stats),
		"stats": stats,
	})
}

// @Summary      Bind devices to a station
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body  bindDevicesRequest  true  "Binding"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/station-devices/bind [post]
// @Security     BearerAuth
func (h *Handler) bindDevices(c *gin.Context) {
	var req bindDevicesRequest
	h.register(c, &req, errBindDevices, "device_bind_failed", func() error {
		return h.services.Devices.Bind(c.Request.Context(), service.BindParams{
			StationUID: req.StationUID,
			Role:       req.Role,
			CamUID:     req.CamUID,
			NasUID:     req.NasUID,
			ScannerUID: req.ScannerUID,
		})
	})
}
