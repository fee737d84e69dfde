package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// healthStatus represents the overall health status
type healthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck verifies the database is reachable before reporting ready.
func ReadinessCheck(c echo.Context, db *pgxpool.Pool) error {
	health := &healthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		health.Status = "degraded"
		health.Services["database"] = "unhealthy"
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	health.Services["database"] = "healthy"

	return c.JSON(http.StatusOK, health)
}
