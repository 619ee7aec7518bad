package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-ordering/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()
		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		})
		if uid := c.GetUint(CtxUserID); uid != 0 {
			entry = entry.WithField("user_id", uid)
		}
		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
	}
}

// PaymentLogger records the outcome of payment callbacks.
func PaymentLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		fields := logrus.Fields{
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"user_id": c.GetUint(CtxUserID),
		}
		if c.Writer.Status() < 300 {
			utils.InfoLogger.WithFields(fields).Info("payment callback handled")
		} else {
			utils.ErrorLogger.WithFields(fields).Warn("payment callback rejected")
		}
	}
}
