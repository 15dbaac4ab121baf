package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/b3view/internal/domain/dto"
	"github.com/guttosm/b3view/internal/logger"
)

// ErrorHandler renders the last error attached with c.Error as a
// dto.ErrorResponse, when the handler did not write a response itself.
// The status defaults to 500 unless the handler already set one >= 400.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	err := c.Errors.Last().Err

	logger.L().Error().
		Err(err).
		Str("request_id", c.GetString(RequestIDKey)).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}
	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	var resp dto.ErrorResponse
	if !errors.As(err, &resp) {
		resp = dto.NewErrorResponse(http.StatusText(status), err)
	}
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithError stops the chain and writes a dto.ErrorResponse with status.
// err may be nil when message says it all.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
