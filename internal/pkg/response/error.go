package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Error sends a JSON error response.
// AppErrors carry their own status and message. Anything else is logged and
// answered with a generic 500 so internal detail never reaches the client.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error().Err(err).Msg("request failed")
		}
		c.JSON(appErr.Code, ErrorResponse{Message: appErr.Message})
		return
	}

	logger.FromContext(c.Request.Context()).Error().Err(err).Msg("unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
}

// Message sends a JSON error response with an explicit status and message.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Message: message})
}

// Abort stops the handler chain with a JSON error response.
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Message: message})
}
