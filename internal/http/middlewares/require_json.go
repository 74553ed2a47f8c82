package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func RequireJSON() gin.HandlerFunc {
	return requireContentType("application/json", "Content-Type must be application/json")
}

func RequireMultipart() gin.HandlerFunc {
	return requireContentType("multipart/form-data", "Content-Type must be multipart/form-data")
}

func requireContentType(prefix, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			// allow parameters such as charset or boundary
			ct := strings.ToLower(c.GetHeader("Content-Type"))
			if !strings.HasPrefix(ct, prefix) {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": message,
					},
				})
				return
			}
		}
		c.Next()
	}
}
