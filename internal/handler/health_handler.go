package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"activity-board/pkg/logger"
	"activity-board/pkg/redis"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	logger      *logger.Logger
	redisClient *redis.Client
}

// NewHealthHandler creates a new health handler. redisClient may be nil.
func NewHealthHandler(logger *logger.Logger, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		logger:      logger,
		redisClient: redisClient,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "activity-board",
	}
	status := http.StatusOK

	if h.redisClient != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response.Checks = map[string]string{"redis": "ok"}
		if err := h.redisClient.Health(ctx); err != nil {
			h.logger.WithError(err).Warn("Redis health check failed")
			response.Status = "degraded"
			response.Checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode health check response")
	}
}
