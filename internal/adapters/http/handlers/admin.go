package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/app"
)

// CatalogReloader is what the admin endpoints need from app.CatalogService.
type CatalogReloader interface {
	Reload(ctx context.Context, trigger string) (*app.ReloadReport, error)
}

// AdminHandler serves operator endpoints.
type AdminHandler struct {
	catalog CatalogReloader
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(catalog CatalogReloader) *AdminHandler {
	return &AdminHandler{catalog: catalog}
}

// Reload handles POST /api/v1/admin/reload. A reload already in progress
// yields 409.
//
// @Summary Reload the catalog
// @Tags admin
// @Produce json
// @Success 200 {object} app.ReloadReport
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/admin/reload [post]
func (h *AdminHandler) Reload(c *gin.Context) {
	report, err := h.catalog.Reload(c.Request.Context(), app.TriggerAdmin)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// RegisterRoutes registers the admin routes under rg/admin behind guards.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	admin := rg.Group("/admin", guards...)
	admin.POST("/reload", h.Reload)
}
