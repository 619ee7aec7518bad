package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/utils"
)

// WebSocketAuthMiddleware authenticates upgrade requests. Browsers cannot set
// headers on a websocket handshake, so the token may come from ?token=.
func WebSocketAuthMiddleware(tm *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			var err error
			if token, err = bearerToken(c); err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
		}
		if !authenticate(c, tm, token) {
			return
		}
		c.Next()
	}
}
