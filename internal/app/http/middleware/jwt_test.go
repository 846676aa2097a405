package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exam-portal/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionEcho() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testutil.JWTSecret))
	r.GET("/whoami", func(c *gin.Context) {
		s := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": s.UserID, "email": s.Email, "role": c.GetString(KeyRole)})
	})
	admin := r.Group("/admin", RequireRole("admin"))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	r := sessionEcho()

	t.Run("valid token exposes session", func(t *testing.T) {
		rec := doGet(r, "/whoami", testutil.Token(t, "g-42", "ana@example.com", "student"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user_id":"g-42","email":"ana@example.com","role":"student"}`, rec.Body.String())
	})

	t.Run("email-only token", func(t *testing.T) {
		rec := doGet(r, "/whoami", testutil.Token(t, "", "ana@example.com", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user_id":"","email":"ana@example.com","role":""}`, rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", "").Code)
	})

	t.Run("non bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1", "exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("other"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", tok).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix(),
		}).SignedString([]byte(testutil.JWTSecret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(r, "/whoami", tok).Code)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		r := gin.New()
		r.Use(AuthMiddleware(""))
		r.GET("/x", func(c *gin.Context) {})
		assert.Equal(t, http.StatusInternalServerError, doGet(r, "/x", "abc").Code)
	})
}

func TestRequireRole(t *testing.T) {
	r := sessionEcho()
	assert.Equal(t, http.StatusNoContent, doGet(r, "/admin/ping", testutil.Token(t, "u1", "", "admin")).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "/admin/ping", testutil.Token(t, "u1", "", "student")).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/admin/ping", testutil.Token(t, "u1", "", "")).Code)
}
