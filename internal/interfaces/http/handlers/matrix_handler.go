package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/internal/application/matrix"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MatrixHandler serves pairwise distance matrices.
type MatrixHandler struct {
	builder *matrix.Builder
	rec     Recorder
}

// NewMatrixHandler returns a handler over builder. rec may be nil.
func NewMatrixHandler(builder *matrix.Builder, rec Recorder) *MatrixHandler {
	if builder == nil {
		builder = matrix.NewBuilder(nil, nil)
	}
	return &MatrixHandler{builder: builder, rec: rec}
}

type MatrixRequest struct {
	Formulas []string `json:"formulas" binding:"required"`
	Round    *bool    `json:"round"`
}

// Matrix handles POST /api/v1/matrix. Round overrides the configured
// rounding when present.
func (h *MatrixHandler) Matrix(c *gin.Context) {
	var req MatrixRequest
	if !bindJSON(c, h.rec, &req) {
		return
	}

	b := h.builder
	if req.Round != nil {
		b = b.Rounding(*req.Round)
	}
	res, err := b.Build(c.Request.Context(), req.Formulas)
	if err != nil {
		respondError(c, h.rec, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CSV handles GET /api/v1/matrix.csv?formula=A&formula=B[&round=true].
func (h *MatrixHandler) CSV(c *gin.Context) {
	res, ok := h.fromQuery(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="matrix.csv"`)
	c.Header("Content-Type", contentTypeCSV)
	c.Status(http.StatusOK)
	if err := res.WriteCSV(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// XLSX handles GET /api/v1/matrix.xlsx with the same query as CSV.
func (h *MatrixHandler) XLSX(c *gin.Context) {
	res, ok := h.fromQuery(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="matrix.xlsx"`)
	c.Header("Content-Type", contentTypeXLSX)
	c.Status(http.StatusOK)
	if err := res.WriteXLSX(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *MatrixHandler) fromQuery(c *gin.Context) (*matrix.Result, bool) {
	b := h.builder
	if v := c.Query("round"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, h.rec, errors.BadRequest("invalid round parameter").WithDetail(v))
			return nil, false
		}
		b = b.Rounding(on)
	}
	res, err := b.Build(c.Request.Context(), c.QueryArray("formula"))
	if err != nil {
		respondError(c, h.rec, err)
		return nil, false
	}
	return res, true
}
