package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DistanceResult is the response of POST /api/v1/distance.
type DistanceResult struct {
	First    string  `json:"first"`
	Second   string  `json:"second"`
	Distance float64 `json:"distance"`
	Pivots   int     `json:"pivots"`
}

// CompositionEntry is one element of a normalized composition.
type CompositionEntry struct {
	Position int     `json:"position"`
	Symbol   string  `json:"symbol,omitempty"`
	Mass     float64 `json:"mass"`
}

// CompositionResult is the response of POST /api/v1/composition.
type CompositionResult struct {
	Formula     string             `json:"formula"`
	Composition []CompositionEntry `json:"composition"`
	Unknown     []string           `json:"unknown,omitempty"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Formula     string `json:"formula"`
	Limit       int    `json:"limit,omitempty"`
	MustContain string `json:"must_contain,omitempty"`
}

// SearchHit is one ranked compound.
type SearchHit struct {
	ID       string  `json:"id"`
	Formula  string  `json:"formula"`
	Distance float64 `json:"distance"`
}

// SearchResult is the response of POST /api/v1/search.
type SearchResult struct {
	Query    string        `json:"query"`
	Results  []SearchHit   `json:"results"`
	Compared int           `json:"compared"`
	Took     time.Duration `json:"took_ns"`
}

// MatrixResult is the response of POST /api/v1/matrix.
type MatrixResult struct {
	Formulas []string    `json:"formulas"`
	Matrix   [][]float64 `json:"matrix"`
	Rounded  bool        `json:"rounded"`
}

// Health is the response of GET /healthz.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Distance returns the distance between two formulas.
func (c *Client) Distance(ctx context.Context, first, second string) (*DistanceResult, error) {
	var out DistanceResult
	body := map[string]string{"first": first, "second": second}
	if err := c.post(ctx, "/api/v1/distance", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Composition returns the normalized composition of formula.
func (c *Client) Composition(ctx context.Context, formula string) (*CompositionResult, error) {
	var out CompositionResult
	if err := c.post(ctx, "/api/v1/composition", map[string]string{"formula": formula}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search ranks the server's corpus against req.Formula.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var out SearchResult
	if err := c.post(ctx, "/api/v1/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Matrix builds the pairwise matrix. A nil round keeps the server default.
func (c *Client) Matrix(ctx context.Context, formulas []string, round *bool) (*MatrixResult, error) {
	body := struct {
		Formulas []string `json:"formulas"`
		Round    *bool    `json:"round,omitempty"`
	}{formulas, round}

	var out MatrixResult
	if err := c.post(ctx, "/api/v1/matrix", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MatrixCSV downloads the matrix as row_label,col_label,value CSV.
func (c *Client) MatrixCSV(ctx context.Context, formulas []string, round *bool) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/matrix.csv?"+matrixQuery(formulas, round), nil)
}

// MatrixXLSX downloads the matrix as an XLSX workbook.
func (c *Client) MatrixXLSX(ctx context.Context, formulas []string, round *bool) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/matrix.xlsx?"+matrixQuery(formulas, round), nil)
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, "/healthz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func matrixQuery(formulas []string, round *bool) string {
	q := url.Values{}
	for _, f := range formulas {
		q.Add("formula", f)
	}
	if round != nil {
		q.Set("round", strconv.FormatBool(*round))
	}
	return q.Encode()
}
