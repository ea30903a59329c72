package middleware

import "github.com/gin-gonic/gin"

// abortWithError stops the chain with the same envelope the handlers use.
func abortWithError(c *gin.Context, status int, message, reason string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    status,
		"message": message,
		"errors":  gin.H{"reason": reason},
	})
}
