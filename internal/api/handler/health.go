package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/api/response"
)

// Version is reported by the welcome endpoint.
const Version = "1.0.0"

// HealthHandler handles the GET /health liveness probe and the GET /
// welcome document.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Welcome handles GET /.
//
// @Summary      API information
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       / [get]
func (h *HealthHandler) Welcome(c echo.Context) error {
	return response.OK(c, "Welcome to TaskNexus API", map[string]string{
		"application": "TaskNexus API",
		"version":     Version,
		"status":      "Running",
		"docs":        "/docs/index.html",
	})
}

// Liveness returns 200 immediately; it confirms the process is alive.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return response.OK(c, "Application is healthy", "OK")
}

// DependencyCheck pings one backing service.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ReadinessHandler handles the GET /health/ready readiness probe.
// Checks every dependency before declaring the service ready.
type ReadinessHandler struct {
	checks  []DependencyCheck
	timeout time.Duration
}

func NewReadinessHandler(checks ...DependencyCheck) *ReadinessHandler {
	return &ReadinessHandler{checks: checks, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness reports 503 "degraded" when any dependency is unreachable.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Envelope{data=readinessResponse}
// @Failure      503  {object}  response.Envelope{data=readinessResponse}
// @Router       /health/ready [get]
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true
	for _, dep := range h.checks {
		if err := dep.Check(ctx); err != nil {
			deps[dep.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[dep.Name] = dependencyStatus{Status: "ok"}
	}

	body := readinessResponse{Status: "ok", Dependencies: deps}
	if !healthy {
		body.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable,
			response.Error(http.StatusServiceUnavailable, "Service is not ready", body))
	}
	return response.OK(c, "Service is ready", body)
}
