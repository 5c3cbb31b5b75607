package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/search"
)

// SearchService is what the quotation endpoints need from app.SearchService.
type SearchService interface {
	Search(ctx context.Context, req search.Request) (search.Result, error)
	Get(ctx context.Context, id string) (*domain.Quotation, error)
	List(ctx context.Context, after string, n int) (domain.Catalog, error)
}

// QuotationHandler serves search and catalog browsing.
type QuotationHandler struct {
	service SearchService
}

// NewQuotationHandler creates a QuotationHandler.
func NewQuotationHandler(service SearchService) *QuotationHandler {
	return &QuotationHandler{service: service}
}

// Search handles POST /api/v1/search.
//
// @Summary Search quotations
// @Tags quotations
// @Accept json
// @Produce json
// @Param request body dto.SearchRequest true "Search request"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/search [post]
func (h *QuotationHandler) Search(c *gin.Context) {
	var body dto.SearchRequest
	if err := dto.BindAndValidate(c, &body); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSearchResponse(res))
}

// List handles GET /api/v1/quotations. Pages follow catalog order.
//
// @Summary List quotations
// @Tags quotations
// @Produce json
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.PaginatedResponse[dto.QuotationResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotations [get]
func (h *QuotationHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &page); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	var after string

	if page.Cursor != "" {
		cursor, err := page.DecodeCursor()
		if err != nil {
			dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
			return
		}

		after = cursor.ID
	}

	limit := page.GetLimit()

	quotations, err := h.service.List(c.Request.Context(), after, limit+1)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(
		dto.NewQuotationResponses(quotations),
		limit,
		func(q dto.QuotationResponse) *dto.CursorData { return &dto.CursorData{ID: q.ID} },
	))
}

// Get handles GET /api/v1/quotations/:id.
//
// @Summary Get a quotation
// @Tags quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} dto.QuotationResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotations/{id} [get]
func (h *QuotationHandler) Get(c *gin.Context) {
	q, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuotationResponse(q))
}

// RegisterRoutes registers the search and quotation routes on rg.
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/search", h.Search)

	quotations := rg.Group("/quotations")
	quotations.GET("", h.List)
	quotations.GET("/:id", h.Get)
}
