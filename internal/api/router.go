package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chatguard/internal/metrics"
)

// Setup creates and configures the Gin router
func Setup(svc Service, m *metrics.Metrics, gatherer prometheus.Gatherer, origins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(Recovery(logger))
	router.Use(CORS(origins))

	// Health endpoints
	healthHandler := NewHealthHandler(svc)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	predictHandler := NewPredictHandler(svc, m)
	router.POST("/predict", predictHandler.Predict)

	return router
}
