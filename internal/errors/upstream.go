package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AbortWithUpstream relays an upstream failure with the upstream's own status
// code. Statuses outside the 4xx/5xx range become 502 Bad Gateway.
func AbortWithUpstream(c *gin.Context, status int, message string, details any) {
	if status < http.StatusBadRequest || status > 599 {
		status = http.StatusBadGateway
	}
	c.AbortWithStatusJSON(status, NewAPIError(message, details))
}
