package handlers

import (
	"packtrace/internal/logger"
	"packtrace/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), metricsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", metricsHandler())

	// Liveness and agent clock reference
	router.GET("/health", h.health)
	router.GET("/time", h.serverTime)

	h.registerAuthRoutes(router)
	h.registerStationRoutes(router)
	h.registerAPIRoutes(router)

	// Live station-health push for the admin dashboard
	router.GET("/ws/health", h.wsHealth)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

// registerStationRoutes mounts the endpoints station agents call. Agents
// authenticate by network placement, not JWT.
func (h *Handler) registerStationRoutes(r *gin.Engine) {
	r.POST("/api/events/log", h.logEvent)
	r.POST("/api/health/report", h.reportHealth)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api", h.userIdMiddleware)
	{
		api.GET("/events", h.listEvents)
		api.POST("/orders/:order_no/events", h.resolveOrder)
		api.GET("/health/stations", h.stationsHealth)
		api.GET("/health/stations/:station_uid", h.stationHealth)

		admin := api.Group("/admin")
		{
			admin.POST("/stations", h.registerStation)
			admin.POST("/devices/cams", h.registerCamera)
			admin.POST("/devices/nas", h.registerNAS)
			admin.POST("/devices/scanners", h.registerScanner)
			admin.POST("/station-devices/bind", h.bindDevices)
			admin.GET("/stats/daily", h.dailyStats)
		}
	}
}
