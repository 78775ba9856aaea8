package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatguard/internal/domain"
	"chatguard/internal/metrics"
)

// Service is the subset of the inference pipeline the HTTP layer needs.
type Service interface {
	Predict(message string) (domain.Label, error)
	Labels() []domain.Label
	Dimension() int
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Message string `json:"message"`
}

// PredictResponse is returned on a successful prediction.
type PredictResponse struct {
	Prediction int `json:"prediction"`
}

// PredictHandler serves predictions.
type PredictHandler struct {
	svc     Service
	metrics *metrics.Metrics
}

// NewPredictHandler creates a predict handler. m may be nil.
func NewPredictHandler(svc Service, m *metrics.Metrics) *PredictHandler {
	return &PredictHandler{svc: svc, metrics: m}
}

// Predict handles POST /predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	// An empty body counts as a missing message.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.observeError("invalid_request")
		_ = c.Error(err)
		respondError(c, http.StatusBadRequest, msgBadBody+": "+err.Error())
		return
	}

	start := time.Now()
	label, err := h.svc.Predict(req.Message)
	if err != nil {
		status, message, kind := MapServiceError(err)
		h.observeError(kind)
		_ = c.Error(err)
		respondError(c, status, message)
		return
	}
	if h.metrics != nil {
		h.metrics.ObservePrediction(label, time.Since(start))
	}
	c.JSON(http.StatusOK, PredictResponse{Prediction: int(label)})
}

func (h *PredictHandler) observeError(kind string) {
	if h.metrics != nil {
		h.metrics.ObserveError(kind)
	}
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	svc Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(svc Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:     "healthy",
		Components: map[string]string{"artifacts": "loaded"},
	})
}

// Ready handles GET /ready. Artifacts are loaded before the router exists,
// so a nil service only happens in a misconfigured wiring.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "artifacts not loaded"})
		return
	}
	labels := make([]int, 0, 2)
	for _, l := range h.svc.Labels() {
		labels = append(labels, int(l))
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"features": h.svc.Dimension(),
		"labels":   labels,
	})
}
