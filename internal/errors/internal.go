package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AbortWithInternal sends a 500 Internal Server Error response and aborts the request.
func AbortWithInternal(c *gin.Context, message string, details any) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, NewAPIError(message, details))
}
