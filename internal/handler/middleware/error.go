package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"booking-engine/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler writes the last public error recorded by a handler that
// aborted without a body, and a generic 500 when nothing was recorded.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if !err.IsType(gin.ErrorTypePublic) {
				continue
			}
			if resp, ok := err.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}

		status := c.Writer.Status()
		switch {
		case status >= http.StatusBadRequest:
			c.JSON(status, httperr.NewResponse(status, http.StatusText(status), nil))
		case status != http.StatusOK:
			c.Status(status)
			c.Writer.WriteHeaderNow()
		default:
			c.JSON(http.StatusInternalServerError, httperr.NewResponse(http.StatusInternalServerError, internalErrorMessage, nil))
		}
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := strings.Split(string(debug.Stack()), "\n")
				if len(stack) > 16 {
					stack = stack[:16]
				}
				slog.Error("recovered from panic",
					"request_id", GetRequestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", rec,
					"stack", stack)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					httperr.NewResponse(http.StatusInternalServerError, internalErrorMessage, nil))
			}
		}()
		c.Next()
	}
}
