package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.MustGet("userId"), "isAdmin": c.MustGet("isAdmin")})
	})
	r.GET("/admin", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func getWithToken(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authRouter()

	w := getWithToken(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// No Bearer prefix.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "garbage")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authRouter()

	w := getWithToken(r, "/me", "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong signing key.
	w = getWithToken(r, "/me", signedToken(t, "other-secret", jwt.MapClaims{
		"userId": "u1", "isAdmin": false, "exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Expired.
	w = getWithToken(r, "/me", signedToken(t, "test-secret", jwt.MapClaims{
		"userId": "u1", "isAdmin": false, "exp": time.Now().Add(-time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthSetsIdentity(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authRouter()

	w := getWithToken(r, "/me", signedToken(t, "test-secret", jwt.MapClaims{
		"userId": "u1", "isAdmin": false, "exp": time.Now().Add(time.Hour).Unix(),
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"u1"`)
	assert.Contains(t, w.Body.String(), `"isAdmin":false`)
}

func TestRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := authRouter()

	w := getWithToken(r, "/admin", signedToken(t, "test-secret", jwt.MapClaims{
		"userId": "u1", "isAdmin": false, "exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = getWithToken(r, "/admin", signedToken(t, "test-secret", jwt.MapClaims{
		"userId": "u1", "isAdmin": true, "exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthWithoutServerSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	r := authRouter()

	w := getWithToken(r, "/me", "whatever")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
