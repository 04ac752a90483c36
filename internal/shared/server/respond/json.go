package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with an explicit status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes payload with a 200 status.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}
