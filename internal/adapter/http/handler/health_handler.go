package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	dataDir     string
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler. redisClient may be nil when
// idempotency is disabled.
func NewHealthHandler(dataDir string, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		dataDir:     dataDir,
		redisClient: redisClient,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the data directory is usable and Redis, when
// configured, answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	info, err := os.Stat(h.dataDir)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "data directory unavailable", err.Error())
		return
	}
	if !info.IsDir() {
		writeError(w, http.StatusServiceUnavailable, "data directory unavailable", h.dataDir+" is not a directory")
		return
	}

	status := map[string]string{
		"status":  "ready",
		"storage": "ok",
		"redis":   "disabled",
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unhealthy", err.Error())
			return
		}
		status["redis"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
