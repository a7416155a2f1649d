package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/internal/application/search"
)

// Searcher ranks a corpus against a query.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Response, error)
}

// SearchHandler serves corpus search.
type SearchHandler struct {
	svc Searcher
	rec Recorder
}

// NewSearchHandler returns a handler over svc. rec may be nil.
func NewSearchHandler(svc Searcher, rec Recorder) *SearchHandler {
	return &SearchHandler{svc: svc, rec: rec}
}

type SearchRequest struct {
	Formula     string `json:"formula" binding:"required"`
	Limit       int    `json:"limit"`
	MustContain string `json:"must_contain"`
}

// Search handles POST /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if !bindJSON(c, h.rec, &req) {
		return
	}

	resp, err := h.svc.Search(c.Request.Context(), search.Query{
		Formula:     req.Formula,
		Limit:       req.Limit,
		MustContain: req.MustContain,
	})
	if err != nil {
		respondError(c, h.rec, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
