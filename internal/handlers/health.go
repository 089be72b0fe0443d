package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hazardscope/api/internal/reference"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
)

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	refTable  *reference.Table // nil when no reference table is configured
	startTime time.Time
	env       string
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(refTable *reference.Table, env string) *HealthHandler {
	return &HealthHandler{
		refTable:  refTable,
		startTime: time.Now(),
		env:       env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status         string `json:"status"`
	ReferenceTable string `json:"reference_table"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health endpoint.
// This is a basic health check that always returns 200 OK.
// It does not check any dependencies and is used for basic liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// The service has no database; readiness means startup finished, including
// the optional reference table load. The remote APIs are intentionally not
// probed here since their failures degrade per-field rather than making the
// service unready.
func (h *HealthHandler) Ready(c *gin.Context) {
	tableStatus := "not_configured"
	if h.refTable != nil {
		tableStatus = fmt.Sprintf("loaded (%d variables)", h.refTable.Variables())
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:         "ready",
		ReferenceTable: tableStatus,
	})
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(uptime),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
