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

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/api/payments", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func signToken(t *testing.T, expiresAt *jwt.NumericDate) string {
	t.Helper()
	claims := &Claims{
		UserID:     1,
		InstanceID: 1,
		Username:   "kasim",
	}
	if expiresAt != nil {
		claims.ExpiresAt = expiresAt
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JWTKey)
	require.NoError(t, err)
	return tok
}

func getWithToken(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r := newAuthRouter()
	tok := signToken(t, jwt.NewNumericDate(time.Now().Add(15*time.Minute)))

	w := getWithToken(r, "/api/payments", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kasim")
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	r := newAuthRouter()
	tok := signToken(t, jwt.NewNumericDate(time.Now().Add(-10*time.Minute)))

	w := getWithToken(r, "/api/payments", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Tokens just past expiry stay valid inside the clock-skew leeway.
func TestAuthMiddlewareAllowsExpiryWithinLeeway(t *testing.T) {
	r := newAuthRouter()
	tok := signToken(t, jwt.NewNumericDate(time.Now().Add(-tokenLeeway/2)))

	w := getWithToken(r, "/api/payments", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsTokenWithoutExpiry(t *testing.T) {
	r := newAuthRouter()
	tok := signToken(t, nil)

	w := getWithToken(r, "/api/payments", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r := newAuthRouter()

	w := getWithToken(r, "/api/payments", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewarePublicPaths(t *testing.T) {
	r := newAuthRouter()

	w := getWithToken(r, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
