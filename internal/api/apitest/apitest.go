// Package apitest wires handlers against an in-memory database for HTTP tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/app/http/middleware"
	"exam-portal/internal/domain/exams"
	"exam-portal/internal/domain/students"
	"exam-portal/internal/identity"
	"exam-portal/internal/infra/store"
	"exam-portal/internal/subscription"
	"exam-portal/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Now is the fixed clock every handler test runs at.
var Now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func NewDeps(t testing.TB) *shared.Deps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	db := testutil.NewDB(t)
	st := store.New(db)
	links, err := identity.New(st, identity.TargetLink)
	require.NoError(t, err)
	studs, err := identity.New(st, identity.TargetStudent)
	require.NoError(t, err)
	gate, err := subscription.New(st, subscription.WithClock(func() time.Time { return Now }))
	require.NoError(t, err)

	return &shared.Deps{
		DB:       db,
		Links:    links,
		Students: studs,
		Gate:     gate,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return Now },
	}
}

// Router returns an engine whose routes sit behind AuthMiddleware.
func Router() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	return r, r.Group("/", middleware.AuthMiddleware(testutil.JWTSecret))
}

// Do sends a request with an optional bearer token and JSON body.
func Do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// Student creates an estudiante with its usuario-estudiante link.
func Student(t testing.TB, db *gorm.DB, linkID, studentID, email string) {
	t.Helper()
	require.NoError(t, db.Create(&students.Student{ID: studentID, Nombre: "Ana", Apellido: "Ruiz"}).Error)
	sid := studentID
	require.NoError(t, db.Create(&students.Link{ID: linkID, Correo: email, EstudianteID: &sid}).Error)
}

// Pro gives linkID an active subscription that outlives Now by a month.
func Pro(t testing.TB, db *gorm.DB, linkID string) {
	t.Helper()
	require.NoError(t, db.Create(&students.Subscription{
		UsuarioEstudianteID: linkID,
		Status:              students.StatusActive,
		ExpiresAt:           Now.AddDate(0, 1, 0),
	}).Error)
}

// Evaluation stores a published evaluation with n three-option questions
// whose correct option is always 1.
func Evaluation(t testing.TB, db *gorm.DB, title, area, mode string, n int) exams.Evaluation {
	t.Helper()
	ev := exams.Evaluation{Titulo: title, Area: area, Access: mode, Published: true, PriceEUR: 4.99}
	for i := 0; i < n; i++ {
		ev.Questions = append(ev.Questions, exams.Question{
			Enunciado:   title + " q" + string(rune('1'+i)),
			Opciones:    exams.Options{"a", "b", "c"},
			Correcta:    1,
			Explicacion: "b is right",
			SortIndex:   i,
		})
	}
	require.NoError(t, db.Create(&ev).Error)
	return ev
}

func Decode(t testing.TB, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
