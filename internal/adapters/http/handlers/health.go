// Package handlers provides the HTTP handlers of the quotation service.
package handlers

import (
	"context"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/ports"
)

// BuildInfo is injected at build time using ldflags.
type BuildInfo struct {
	// Version is the semantic version of the service.
	Version string `json:"version"`

	// Commit is the git commit SHA.
	Commit string `json:"commit"`

	// BuildTime is the timestamp when the binary was built.
	BuildTime string `json:"buildTime"`

	// GoVersion is the Go version used to build the binary.
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthChecks is the subset of ports.HealthRegistry the probes need.
type HealthChecks interface {
	CheckAll(ctx context.Context) *ports.HealthResult
}

// CatalogInfo exposes the live catalog snapshot.
type CatalogInfo interface {
	Snapshot(ctx context.Context) (domain.Catalog, uint64)
}

// HealthHandler serves the operational /-/ endpoints.
type HealthHandler struct {
	registry  HealthChecks
	catalog   CatalogInfo
	buildInfo BuildInfo
}

// NewHealthHandler creates a HealthHandler. catalog may be nil.
func NewHealthHandler(registry HealthChecks, catalog CatalogInfo, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		catalog:   catalog,
		buildInfo: buildInfo,
	}
}

// livenessResponse is the response structure for /-/live endpoint.
type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles the /-/live endpoint.
// It never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{
		Status: "ok",
	})
}

// readinessResponse is the response structure for /-/ready endpoint.
type readinessResponse struct {
	Status  string                        `json:"status"`
	Checks  map[string]*ports.CheckResult `json:"checks,omitempty"`
	Catalog *catalogStatus                `json:"catalog,omitempty"`
}

type catalogStatus struct {
	Generation uint64 `json:"generation"`
	Quotations int    `json:"quotations"`
}

// Readiness handles the /-/ready endpoint. Returns 503 when a required check
// fails; a failing optional source only degrades the status.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	resp := readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	}

	if h.catalog != nil {
		catalog, generation := h.catalog.Snapshot(c.Request.Context())
		resp.Catalog = &catalogStatus{Generation: generation, Quotations: len(catalog)}
	}

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// BuildInfoHandler handles the /-/build endpoint.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterHealthRoutes registers live, ready, build and metrics on rg.
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(MetricsHandler()))
}

// RegisterHealthRoutesOnEngine registers the routes under /-/.
func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	health := engine.Group("/-")
	h.RegisterHealthRoutes(health)
}
