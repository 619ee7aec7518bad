package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the envelope every JSON endpoint answers with.
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON writes data in the envelope. Status is derived from code.
func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}

// RespondFile sends a generated document. An empty filename serves it inline.
func RespondFile(c *gin.Context, code int, contentType, filename string, body []byte) {
	if filename != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	c.Data(code, contentType, body)
}
