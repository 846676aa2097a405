package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"exam-portal/internal/domain/students"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	googleIssuer   = "https://accounts.google.com"
	stateCookie    = "oauth_state"
	stateCookieTTL = 300
)

type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// IDTokenVerifier checks a Google id_token and returns its claims.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*GoogleClaims, error)
}

// oidcVerifier discovers Google's keys on first use and keeps the verifier.
type oidcVerifier struct {
	clientID string

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func (v *oidcVerifier) get(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.verifier != nil {
		return v.verifier, nil
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("init google oidc provider: %w", err)
	}
	v.verifier = provider.Verifier(&oidc.Config{ClientID: v.clientID})
	return v.verifier, nil
}

func (v *oidcVerifier) Verify(ctx context.Context, rawIDToken string) (*GoogleClaims, error) {
	verifier, err := v.get(ctx)
	if err != nil {
		return nil, err
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("invalid id_token: %w", err)
	}
	var claims GoogleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id_token claims: %w", err)
	}
	if claims.Sub == "" || claims.Email == "" {
		return nil, errors.New("id_token missing required claims")
	}
	return &claims, nil
}

type Google struct {
	oauth            *oauth2.Config
	verifier         IDTokenVerifier
	exchange         func(ctx context.Context, code string) (string, error)
	frontendRedirect string
	secureCookie     bool
}

// NewGoogle configures the authorization code flow against Google.
func NewGoogle(clientID, clientSecret, redirectURL, frontendRedirect string) *Google {
	g := &Google{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		verifier:         &oidcVerifier{clientID: clientID},
		frontendRedirect: frontendRedirect,
		secureCookie:     strings.HasPrefix(redirectURL, "https://"),
	}
	g.exchange = g.exchangeCode
	return g
}

func (g *Google) exchangeCode(ctx context.Context, code string) (string, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("missing id_token")
	}
	return raw, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GoogleStart serves GET /auth/google.
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in not configured"})
		return
	}
	state, err := randomState()
	if err != nil {
		h.deps.InternalError(c, "generate oauth state failed", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieTTL, "/", "", h.google.secureCookie, true)
	c.Redirect(http.StatusFound, h.google.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GoogleCallback serves GET /auth/google/callback. The issued token carries
// the Google subject, so accounts created elsewhere are reached through the
// email claim.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Google sign-in not configured"})
		return
	}
	ctx := c.Request.Context()

	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}
	cookieState, err := c.Cookie(stateCookie)
	if err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.google.secureCookie, true)

	rawIDToken, err := h.google.exchange(ctx, code)
	if err != nil {
		h.deps.Log.WarnContext(ctx, "google code exchange failed", slog.Any("error", err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}
	claims, err := h.google.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		h.deps.Log.WarnContext(ctx, "google id_token rejected", slog.Any("error", err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id_token"})
		return
	}
	if !claims.EmailVerified {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "google email not verified"})
		return
	}

	link, err := h.linkGoogleAccount(ctx, claims)
	if err != nil {
		h.deps.InternalError(c, "link google account failed", err, slog.String("google_sub", claims.Sub))
		return
	}

	token, err := h.tokens.Issue(claims.Sub, link.Correo, link.Role)
	if err != nil {
		h.deps.InternalError(c, "issue token failed", err)
		return
	}

	if h.google.frontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"token": token})
		return
	}
	c.Redirect(http.StatusFound, h.google.frontendRedirect+"?token="+url.QueryEscape(token))
}

// linkGoogleAccount finds the usuario-estudiante for a Google identity:
// by google_sub, then by email (recording the sub), else it creates the
// student with the Google subject as the link id.
func (h *Handler) linkGoogleAccount(ctx context.Context, gc *GoogleClaims) (students.Link, error) {
	db := h.deps.DB.WithContext(ctx)
	email := normalizeEmail(gc.Email)

	var link students.Link
	err := db.Where("google_sub = ?", gc.Sub).First(&link).Error
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return students.Link{}, err
	}

	err = db.Where("correo = ?", email).First(&link).Error
	if err == nil {
		if link.GoogleSub == nil {
			sub := gc.Sub
			if err := db.Model(&students.Link{}).Where("id = ?", link.ID).Update("google_sub", sub).Error; err != nil {
				return students.Link{}, err
			}
			link.GoogleSub = &sub
		}
		return link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return students.Link{}, err
	}

	sub := gc.Sub
	studentID := uuid.NewString()
	link = students.Link{ID: gc.Sub, Correo: email, EstudianteID: &studentID, GoogleSub: &sub, Role: "student"}
	err = db.Transaction(func(tx *gorm.DB) error {
		st := students.Student{ID: studentID, Nombre: firstNonEmpty(gc.GivenName, gc.Name), Apellido: gc.FamilyName}
		if err := tx.Create(&st).Error; err != nil {
			return err
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		return students.Link{}, err
	}
	return link, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
