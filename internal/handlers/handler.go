package handlers

import (
	_ "solarweather/docs" // registers the swagger spec
	"solarweather/internal/logger"
	"solarweather/internal/metrics"
	"solarweather/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services, logging and metrics.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewHandler constructs a new HTTP handler with dependencies. log and m may be nil.
func NewHandler(services *service.Service, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{services: services, log: log, metrics: m}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware, h.metricsMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	// Dashboard data and station uploads are public, as the station and
	// the dashboards cannot carry a token.
	router.GET("/dataajax/", h.getSnapshot)
	router.GET("/weatherstation/updateweatherstation.php", h.uploadWeather)
	router.GET("/ws", h.wsConnect)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerAdminRoutes(api)
		api.GET("/readings", h.getReadings)
	}
}

func (h *Handler) registerAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	{
		admin.POST("/cache/rebuild", h.rebuildCache)
		// Body example: {"path":"/var/backups/solarweather-2024-07-17.db"}
		admin.POST("/backup", h.backup)
	}
}
