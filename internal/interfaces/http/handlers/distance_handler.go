package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/pkg/chemhammer"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

// DistanceMetrics receives solve and error events.
type DistanceMetrics interface {
	Recorder
	RecordDistance(path string, pivots int, duration time.Duration, err error)
}

// DistanceHandler serves single-pair distances and compositions.
type DistanceHandler struct {
	engine  *chemhammer.Engine
	metrics DistanceMetrics
}

// NewDistanceHandler returns a handler over engine. metrics may be nil.
func NewDistanceHandler(engine *chemhammer.Engine, metrics DistanceMetrics) *DistanceHandler {
	if engine == nil {
		engine = chemhammer.DefaultEngine()
	}
	return &DistanceHandler{engine: engine, metrics: metrics}
}

type DistanceRequest struct {
	First  string `json:"first" binding:"required"`
	Second string `json:"second" binding:"required"`
}

type DistanceResponse struct {
	First    string  `json:"first"`
	Second   string  `json:"second"`
	Distance float64 `json:"distance"`
	Pivots   int     `json:"pivots"`
}

type CompositionRequest struct {
	Formula string `json:"formula" binding:"required"`
}

// CompositionEntry is one normalized entry, with the element symbol at its
// position when the table knows it.
type CompositionEntry struct {
	Position int     `json:"position"`
	Symbol   string  `json:"symbol,omitempty"`
	Mass     float64 `json:"mass"`
}

type CompositionResponse struct {
	Formula     string             `json:"formula"`
	Composition []CompositionEntry `json:"composition"`
	Unknown     []string           `json:"unknown,omitempty"`
}

// Distance handles POST /api/v1/distance.
func (h *DistanceHandler) Distance(c *gin.Context) {
	var req DistanceRequest
	if !bindJSON(c, h.recorder(), &req) {
		return
	}

	a, err := h.engine.CompositionOf(req.First)
	if err != nil {
		respondError(c, h.recorder(), errors.Wrap(err, errors.CodeUnknown, "first formula"))
		return
	}
	b, err := h.engine.CompositionOf(req.Second)
	if err != nil {
		respondError(c, h.recorder(), errors.Wrap(err, errors.CodeUnknown, "second formula"))
		return
	}

	start := time.Now()
	d, stats, err := h.engine.DistanceWithStats(a, b)
	if h.metrics != nil {
		path := "simplex"
		if stats.FastPath {
			path = "closed"
		}
		h.metrics.RecordDistance(path, stats.Pivots, time.Since(start), err)
	}
	if err != nil {
		respondError(c, h.recorder(), err)
		return
	}

	c.JSON(http.StatusOK, DistanceResponse{
		First:    req.First,
		Second:   req.Second,
		Distance: d,
		Pivots:   stats.Pivots,
	})
}

// Composition handles POST /api/v1/composition.
func (h *DistanceHandler) Composition(c *gin.Context) {
	var req CompositionRequest
	if !bindJSON(c, h.recorder(), &req) {
		return
	}

	comp, unknown, err := h.engine.Inspect(req.Formula)
	if err != nil {
		respondError(c, h.recorder(), err)
		return
	}

	symbols, _ := h.engine.Table().(interface{ SymbolAt(int) (string, bool) })
	entries := make([]CompositionEntry, len(comp))
	for i, e := range comp {
		entries[i] = CompositionEntry{Position: e.Position, Mass: e.Mass}
		if symbols != nil {
			entries[i].Symbol, _ = symbols.SymbolAt(e.Position)
		}
	}
	c.JSON(http.StatusOK, CompositionResponse{Formula: req.Formula, Composition: entries, Unknown: unknown})
}

func (h *DistanceHandler) recorder() Recorder {
	if h.metrics == nil {
		return nil
	}
	return h.metrics
}
