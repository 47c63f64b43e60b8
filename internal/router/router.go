package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"registrum/internal/config"
	"registrum/internal/handler"
	"registrum/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
// metricsHandler may be nil when metrics exposition is disabled.
func Setup(
	cfg *config.Config,
	logger *zap.Logger,
	qualificationH *handler.QualificationHandler,
	healthH *handler.HealthHandler,
	metricsHandler http.Handler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	if metricsHandler != nil && cfg.Metrics.Path != "" {
		r.GET(cfg.Metrics.Path, gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/checklist", qualificationH.Checklist)

	// Qualification runs are bounded in body size and wall time
	qualifications := v1.Group("/qualifications")
	qualifications.Use(middleware.BodyLimit(cfg.Server.MaxBodyMB << 20))
	qualifications.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	qualifications.POST("", qualificationH.Qualify)
	qualifications.POST("/export", qualificationH.Export)

	return r
}
