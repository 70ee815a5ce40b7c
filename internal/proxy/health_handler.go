package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler answers GET /api/health.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
