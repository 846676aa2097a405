package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exam-portal/internal/api/apitest"
	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/students"
	"exam-portal/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testutil.JWTSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestIssuer(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	iss := NewIssuer(testutil.JWTSecret, time.Hour)
	iss.now = func() time.Time { return now }

	tok, err := iss.Issue("link-1", "ana@example.com", "student")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testutil.JWTSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, "link-1", claims["sub"])
	assert.Equal(t, "ana@example.com", claims["email"])
	assert.EqualValues(t, now.Add(time.Hour).Unix(), claims["exp"])

	_, err = NewIssuer("", time.Hour).Issue("x", "", "")
	assert.Error(t, err)
}

func newRouter(deps *shared.Deps, g *Google) *gin.Engine {
	h := NewHandler(deps, NewIssuer(testutil.JWTSecret, time.Hour), g)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/auth/google", h.GoogleStart)
	r.GET("/auth/google/callback", h.GoogleCallback)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	deps := apitest.NewDeps(t)
	r := newRouter(deps, nil)

	rec := apitest.Do(r, http.MethodPost, "/register", "", map[string]string{
		"nombre": "Ana", "apellido": "Ruiz", "email": "Ana@Example.com", "password": "secreto123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var link students.Link
	require.NoError(t, deps.DB.Where("correo = ?", "ana@example.com").First(&link).Error)
	require.NotNil(t, link.EstudianteID)
	var st students.Student
	require.NoError(t, deps.DB.First(&st, "id = ?", *link.EstudianteID).Error)
	assert.Equal(t, "Ruiz", st.Apellido)

	t.Run("duplicate email", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodPost, "/register", "", map[string]string{
			"nombre": "Ana", "apellido": "Ruiz", "email": "ana@example.com", "password": "secreto123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodPost, "/register", "", map[string]string{
			"nombre": "Luis", "apellido": "Gil", "email": "luis@example.com", "password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login issues a token for the link", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodPost, "/login", "", map[string]string{"email": "ana@example.com", "password": "secreto123"})
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct{ Token string }
		apitest.Decode(t, rec, &body)
		assert.Equal(t, link.ID, parse(t, body.Token)["sub"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodPost, "/login", "", map[string]string{"email": "ana@example.com", "password": "otraclave1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := apitest.Do(r, http.MethodPost, "/login", "", map[string]string{"email": "x@example.com", "password": "secreto123"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoginGoogleOnlyAccount(t *testing.T) {
	deps := apitest.NewDeps(t)
	sub := "g-1"
	require.NoError(t, deps.DB.Create(&students.Link{ID: "g-1", Correo: "g@example.com", GoogleSub: &sub}).Error)

	rec := apitest.Do(newRouter(deps, nil), http.MethodPost, "/login", "", map[string]string{"email": "g@example.com", "password": "secreto123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google sign-in")
}

type fakeVerifier struct {
	claims *GoogleClaims
	err    error
}

func (f fakeVerifier) Verify(context.Context, string) (*GoogleClaims, error) { return f.claims, f.err }

func fakeGoogle(v IDTokenVerifier) *Google {
	g := NewGoogle("client", "secret", "http://localhost:8080/auth/google/callback", "")
	g.verifier = v
	g.exchange = func(_ context.Context, code string) (string, error) {
		if code != "good" {
			return "", errors.New("bad code")
		}
		return "raw-id-token", nil
	}
	return g
}

func callback(r http.Handler, code, state, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code="+code+"&state="+state, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGoogleStart(t *testing.T) {
	deps := apitest.NewDeps(t)
	rec := apitest.Do(newRouter(deps, fakeGoogle(nil)), http.MethodGet, "/auth/google", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "accounts.google.com")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), stateCookie+"=")

	rec = apitest.Do(newRouter(deps, nil), http.MethodGet, "/auth/google", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoogleCallback(t *testing.T) {
	claims := &GoogleClaims{Sub: "google-42", Email: "ana@example.com", EmailVerified: true, GivenName: "Ana", FamilyName: "Ruiz"}

	t.Run("existing local account keeps its link id", func(t *testing.T) {
		deps := apitest.NewDeps(t)
		apitest.Student(t, deps.DB, "link-1", "est-1", "ana@example.com")
		r := newRouter(deps, fakeGoogle(fakeVerifier{claims: claims}))

		rec := callback(r, "good", "s1", "s1")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct{ Token string }
		apitest.Decode(t, rec, &body)
		tok := parse(t, body.Token)
		assert.Equal(t, "google-42", tok["sub"])
		assert.Equal(t, "ana@example.com", tok["email"])

		var link students.Link
		require.NoError(t, deps.DB.First(&link, "id = ?", "link-1").Error)
		require.NotNil(t, link.GoogleSub)
		assert.Equal(t, "google-42", *link.GoogleSub)

		// the google subject has no row of its own; the email claim reaches link-1
		id, ok, err := deps.Links.Resolve(context.Background(), testSession(tok))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "link-1", id)
	})

	t.Run("new account is created under the google subject", func(t *testing.T) {
		deps := apitest.NewDeps(t)
		r := newRouter(deps, fakeGoogle(fakeVerifier{claims: claims}))

		require.Equal(t, http.StatusOK, callback(r, "good", "s1", "s1").Code)
		var link students.Link
		require.NoError(t, deps.DB.First(&link, "id = ?", "google-42").Error)
		require.NotNil(t, link.EstudianteID)

		id, ok, err := deps.Students.Resolve(context.Background(), testSession(jwt.MapClaims{"sub": "google-42"}))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, *link.EstudianteID, id)
	})

	t.Run("rejections", func(t *testing.T) {
		deps := apitest.NewDeps(t)
		r := newRouter(deps, fakeGoogle(fakeVerifier{claims: claims}))
		assert.Equal(t, http.StatusBadRequest, callback(r, "good", "s1", "other").Code)
		assert.Equal(t, http.StatusBadRequest, callback(r, "", "s1", "s1").Code)
		assert.Equal(t, http.StatusUnauthorized, callback(r, "bad", "s1", "s1").Code)

		unverified := *claims
		unverified.EmailVerified = false
		r = newRouter(deps, fakeGoogle(fakeVerifier{claims: &unverified}))
		assert.Equal(t, http.StatusUnauthorized, callback(r, "good", "s1", "s1").Code)

		r = newRouter(deps, fakeGoogle(fakeVerifier{err: errors.New("expired")}))
		assert.Equal(t, http.StatusUnauthorized, callback(r, "good", "s1", "s1").Code)
	})
}
