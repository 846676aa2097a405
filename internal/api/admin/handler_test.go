package admin

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"exam-portal/internal/api/apitest"
	"exam-portal/internal/app/http/middleware"
	"exam-portal/internal/domain/exams"
	"exam-portal/internal/domain/students"
	"exam-portal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminEndpoints(t *testing.T) {
	deps := apitest.NewDeps(t)
	db := deps.DB
	apitest.Student(t, db, "link-1", "est-1", "ana@example.com")
	apitest.Student(t, db, "link-2", "est-2", "luis@example.com")
	apitest.Pro(t, db, "link-1")
	require.NoError(t, db.Create(&students.Subscription{
		UsuarioEstudianteID: "link-2",
		Status:              students.StatusCanceled,
		ExpiresAt:           apitest.Now.Add(-time.Hour),
	}).Error)
	ev := apitest.Evaluation(t, db, "Farmacología", "medicina", exams.AccessPaid, 1)
	require.NoError(t, db.Create(&exams.Purchase{
		UsuarioEstudianteID: "link-2", EvaluacionID: ev.ID, StripeSessionID: "cs_1",
		AmountEUR: 4.99, Status: exams.PurchasePaid, CreatedAt: apitest.Now.Add(-24 * time.Hour),
	}).Error)

	r, auth := apitest.Router()
	admin := auth.Group("/admin", middleware.RequireRole("admin"))
	h := NewHandler(deps)
	admin.GET("/subscriptions", h.ListSubscriptions)
	admin.GET("/students/:id", h.GetStudent)
	admin.GET("/stats", h.GetStats)

	token := testutil.Token(t, "admin-1", "", "admin")

	t.Run("students cannot reach admin", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/admin/subscriptions", testutil.Token(t, "link-1", "", "student"), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("list all subscriptions", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/admin/subscriptions", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var rows []AdminSubscription
		apitest.Decode(t, rec, &rows)
		require.Len(t, rows, 2)
		assert.Equal(t, "ana@example.com", rows[0].Email)
		assert.True(t, rows[0].Active)
		assert.False(t, rows[1].Active)
	})

	t.Run("filter by status", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/admin/subscriptions?status=canceled", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var rows []AdminSubscription
		apitest.Decode(t, rec, &rows)
		require.Len(t, rows, 1)
		assert.Equal(t, "link-2", rows[0].LinkID)

		rec = apitest.Do(r, http.MethodGet, "/admin/subscriptions?status=bogus", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student detail", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/admin/students/link-2", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body StudentDetail
		apitest.Decode(t, rec, &body)
		assert.False(t, body.Pro)
		assert.Equal(t, "luis@example.com", body.Link.Email)
		require.NotNil(t, body.Student)
		assert.Equal(t, "est-2", body.Student.ID)
		require.Len(t, body.Subscriptions, 1)
		assert.Equal(t, "CANCELED", body.Subscriptions[0].Status)
		require.Len(t, body.Purchases, 1)
		assert.Equal(t, "cs_1", body.Purchases[0].StripeSessionID)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Contains(t, string(raw["subscriptions"]), `"expires_at"`)
		assert.NotContains(t, rec.Body.String(), "UsuarioEstudianteID")
		assert.NotContains(t, rec.Body.String(), "ExpiresAt")

		rec = apitest.Do(r, http.MethodGet, "/admin/students/nope", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("stats", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodGet, "/admin/stats", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var stats AdminStats
		apitest.Decode(t, rec, &stats)
		assert.EqualValues(t, 2, stats.TotalStudents)
		assert.EqualValues(t, 1, stats.ActiveSubscriptions)
		assert.InDelta(t, 4.99, stats.PurchaseRevenue, 0.001)
		assert.InDelta(t, 4.99, stats.RecentRevenue, 0.001)
	})
}
