package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("userID")})
	})
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestJWTAuthValidToken(t *testing.T) {
	router := setupAuthRouter()
	token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42}`, rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	expired := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	noUser := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"username": "ann"})
	wrongAlg := signToken(t, jwt.SigningMethodHS512, jwt.MapClaims{"user_id": 1})

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-token",
		"expired":        "Bearer " + expired,
		"no user id":     "Bearer " + noUser,
		"wrong alg":      "Bearer " + wrongAlg,
	}

	router := setupAuthRouter()
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":401`)
			assert.Contains(t, rec.Body.String(), `"reason":"unauthorized"`)
		})
	}
}

func TestJWTAuthSkipsMetrics(t *testing.T) {
	router := setupAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserIDFromClaimsString(t *testing.T) {
	id, err := userIDFromClaims(jwt.MapClaims{"user_id": "17"})
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	_, err = userIDFromClaims(jwt.MapClaims{"user_id": 1.5})
	assert.Error(t, err)
}
