package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-finder/internal/match"
)

// ToolsHandler exposes the text helpers the matchers are built on.
type ToolsHandler struct{}

// NewToolsHandler creates a ToolsHandler.
func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{}
}

// Soundex handles GET /api/v1/tools/soundex?word=...; word may repeat.
func (h *ToolsHandler) Soundex(c *gin.Context) {
	var q dto.SoundexQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	resp := dto.SoundexResponse{Codes: make([]dto.SoundexEntry, 0, len(q.Words))}
	for _, w := range q.Words {
		resp.Codes = append(resp.Codes, dto.SoundexEntry{Word: w, Code: match.Soundex(w)})
	}

	c.JSON(http.StatusOK, resp)
}

// Distance handles GET /api/v1/tools/distance?a=...&b=...
func (h *ToolsHandler) Distance(c *gin.Context) {
	var q dto.DistanceQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DistanceResponse{A: q.A, B: q.B, Distance: match.Distance(q.A, q.B)})
}

// Normalize handles GET /api/v1/tools/normalize?text=...
func (h *ToolsHandler) Normalize(c *gin.Context) {
	var q dto.TextQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NormalizeResponse{Text: q.Text, Normalized: match.Normalize(q.Text)})
}

// Phrases handles GET /api/v1/tools/phrases?q=...
func (h *ToolsHandler) Phrases(c *gin.Context) {
	var q dto.PhrasesQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	phrases := match.ParsePhrases(q.Query)
	if phrases == nil {
		phrases = []string{}
	}

	c.JSON(http.StatusOK, dto.PhrasesResponse{Query: q.Query, Phrases: phrases})
}

// RegisterRoutes registers the tool routes under rg/tools.
func (h *ToolsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tools := rg.Group("/tools")
	tools.GET("/soundex", h.Soundex)
	tools.GET("/distance", h.Distance)
	tools.GET("/normalize", h.Normalize)
	tools.GET("/phrases", h.Phrases)
}
