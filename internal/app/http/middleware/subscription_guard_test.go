package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"exam-portal/internal/domain/students"
	"exam-portal/internal/identity"
	"exam-portal/internal/infra/store"
	"exam-portal/internal/subscription"
	"exam-portal/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireProPlan(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&students.Link{ID: "pro", Correo: "pro@example.com"}).Error)
	require.NoError(t, db.Create(&students.Link{ID: "free", Correo: "free@example.com"}).Error)
	require.NoError(t, db.Create(&students.Subscription{
		UsuarioEstudianteID: "pro",
		Status:              students.StatusActive,
		ExpiresAt:           now.AddDate(0, 1, 0),
	}).Error)

	st := store.New(db)
	links, err := identity.New(st, identity.TargetLink)
	require.NoError(t, err)
	gate, err := subscription.New(st, subscription.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	r.Use(AuthMiddleware(testutil.JWTSecret), RequireProPlan(links, gate, log))
	r.GET("/pro", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(KeyLinkID))
	})

	t.Run("active plan passes and exposes link id", func(t *testing.T) {
		rec := doGet(r, "/pro", testutil.Token(t, "pro", "", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pro", rec.Body.String())
	})

	t.Run("email fallback reaches the same link", func(t *testing.T) {
		rec := doGet(r, "/pro", testutil.Token(t, "google-sub", "pro@example.com", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pro", rec.Body.String())
	})

	t.Run("no plan is payment required", func(t *testing.T) {
		assert.Equal(t, http.StatusPaymentRequired, doGet(r, "/pro", testutil.Token(t, "free", "", "")).Code)
	})

	t.Run("unknown student is not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doGet(r, "/pro", testutil.Token(t, "ghost", "ghost@example.com", "")).Code)
	})
}
