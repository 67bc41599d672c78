package response

import (
	"github.com/gin-gonic/gin"

	"relay-service/internal/models"
)

// Error writes the standard error body.
func Error(c *gin.Context, status int, message, details string) {
	c.JSON(status, models.ErrorResponse{
		Code:    status,
		Message: message,
		Details: details,
	})
}

// Message writes an acknowledgment-only body.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, models.MessageResponse{Message: message})
}
