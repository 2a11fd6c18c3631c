package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler renders the last error a handler attached with c.Error.
// Known kinds keep their status and message; anything else is a 500 whose
// detail is hidden in production.
func ErrorHandler(production bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		kind := apperror.KindOf(err)
		status := kind.Status()
		msg := apperror.Message(err, err.Error())

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err,
			)
			if production && kind == apperror.KindInternal {
				msg = internalErrorMessage
			}
		} else {
			logger.Warn("request rejected",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"error", msg,
			)
		}

		c.JSON(status, models.ErrorResponse{Success: false, Error: msg})
	}
}

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
