package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInputMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("strips markup at every depth", func(t *testing.T) {
		rec := post(`{"email":"<b>a@x.com</b>","answers":[{"question_id":"<script>x</script>q1","choice":2}]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"email":"a@x.com","answers":[{"question_id":"q1","choice":2}]}`, rec.Body.String())
	})

	t.Run("passwords are left as sent", func(t *testing.T) {
		rec := post(`{"email":"<b>a@x.com</b>","password":"abcd1234<script>x</script>","nested":{"password":"p&ss1234"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"email":"a@x.com","password":"abcd1234<script>x</script>","nested":{"password":"p&ss1234"}}`,
			rec.Body.String())
	})

	t.Run("empty body passes through", func(t *testing.T) {
		rec := post("")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("malformed json is rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post("{nope").Code)
	})
}
