// Package v1 provides HTTP API version 1.
package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"stockreport/internal/infrastructure/http/v1/handlers"
	"stockreport/internal/infrastructure/http/v1/middleware"
	"stockreport/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Mode is the gin mode: debug, release or test. Empty means release.
	Mode string

	// Database and Catalog back the health endpoints. Catalog may be nil.
	Database handlers.Database
	Catalog  handlers.CatalogProbe
	Info     handlers.AppInfo

	// Reports builds the products report
	Reports handlers.ProductReporter

	// MaxPerPage caps the perPage query parameter (0 = no cap)
	MaxPerPage int
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Database, cfg.Catalog, cfg.Info)
	healthHandler.RegisterRoutes(router.Group("/health"))

	v1 := router.Group("/api/v1")
	{
		baseHandler := handlers.NewBaseHandler()
		reportsHandler := handlers.NewReportsHandler(baseHandler, cfg.Reports, cfg.MaxPerPage)
		reportsHandler.RegisterRoutes(v1.Group("/reports"))
	}

	return router
}

// WithCompression gzips responses of at least minSize bytes for clients that accept it.
func WithCompression(h http.Handler, minSize int) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, fmt.Errorf("gzip wrapper: %w", err)
	}
	return wrap(h), nil
}
