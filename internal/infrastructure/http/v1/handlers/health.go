// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockreport/internal/infrastructure/storage/postgres"
)

// Database is the connection pool as seen by health checks.
type Database interface {
	Ping(ctx context.Context) error
	Stats() postgres.PoolStats
}

// CatalogProbe reports whether the catalog tables are installed.
type CatalogProbe interface {
	Available(ctx context.Context) (bool, error)
}

// AppInfo identifies the running build.
type AppInfo struct {
	Name    string
	Version string
	Env     string
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db      Database
	catalog CatalogProbe
	info    AppInfo
}

// NewHealthHandler creates a new health handler. catalog may be nil.
func NewHealthHandler(db Database, catalog CatalogProbe, info AppInfo) *HealthHandler {
	return &HealthHandler{db: db, catalog: catalog, info: info}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe.
// A missing catalog does not fail readiness: reports are served empty.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	checks := map[string]string{"database": "healthy"}
	if h.catalog != nil {
		ok, err := h.catalog.Available(ctx)
		switch {
		case err != nil:
			checks["catalog"] = "unknown: " + err.Error()
		case ok:
			checks["catalog"] = "installed"
		default:
			checks["catalog"] = "not installed"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": checks,
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":      h.info.Name,
		"version":  h.info.Version,
		"env":      h.info.Env,
		"database": h.db.Stats(),
	})
}

// RegisterRoutes registers health routes.
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Live)
	rg.GET("/ready", h.Ready)
	rg.GET("/info", h.Info)
}
