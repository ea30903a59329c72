package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errNoUserID = errors.New("user_id missing in token")

// JWTAuth validates an HS256 bearer token and stores the caller's id under
// "userID". /metrics is left open for the scraper.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/metrics" || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "bearer ") {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		tokenString := strings.TrimSpace(authHeader[7:])

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		username, _ := claims["username"].(string)

		c.Set("userID", userID)
		c.Set("username", username)
		c.Next()
	}
}

func userIDFromClaims(claims jwt.MapClaims) (int64, error) {
	switch v := claims["user_id"].(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, errNoUserID
		}
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, errNoUserID
		}
		return id, nil
	default:
		return 0, errNoUserID
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	abortWithError(c, http.StatusUnauthorized, message, "unauthorized")
}
