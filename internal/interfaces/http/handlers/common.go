// Package handlers implements the ChemHammer HTTP API on gin.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemHammer/internal/interfaces/http/middleware"
	"github.com/turtacn/ChemHammer/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Recorder receives error events.
type Recorder interface {
	RecordError(component, code string)
}

// respondError maps err to a status by its code. Server-side failures are
// masked; the full error stays on the gin context for the request logger.
func respondError(c *gin.Context, rec Recorder, err error) {
	_ = c.Error(err)

	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	if code == errors.CodeUnknown {
		code = errors.CodeInternal
	}
	if rec != nil {
		rec.RecordError("http", code.String())
	}

	resp := ErrorResponse{
		Code:      code.String(),
		Message:   errors.DefaultMessageForCode(code),
		RequestID: middleware.GetRequestID(c),
	}
	if status < http.StatusInternalServerError {
		var ae *errors.AppError
		if errors.As(err, &ae) {
			resp.Message = ae.Message
			resp.Detail = ae.Error()
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, rec Recorder, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, rec, errors.BadRequest("invalid request body").WithCause(err))
		return false
	}
	return true
}
