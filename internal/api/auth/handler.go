package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/students"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	deps   *shared.Deps
	tokens *Issuer
	google *Google
}

// NewHandler builds the login handlers. google may be nil when sign-in with
// Google is not configured.
func NewHandler(d *shared.Deps, tokens *Issuer, google *Google) *Handler {
	return &Handler{deps: d, tokens: tokens, google: google}
}

func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			hasLetter = true
		case '0' <= c && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type registerRequest struct {
	Nombre   string `json:"nombre" binding:"required,nonblank"`
	Apellido string `json:"apellido" binding:"required,nonblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register serves POST /register: it creates the estudiante and its local
// usuario-estudiante in one transaction and returns a session token.
func (h *Handler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !isPasswordStrong(input.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long and contain both letters and numbers"})
		return
	}
	ctx := c.Request.Context()
	email := normalizeEmail(input.Email)

	var n int64
	if err := h.deps.DB.WithContext(ctx).Model(&students.Link{}).Where("correo = ?", email).Count(&n).Error; err != nil {
		h.deps.InternalError(c, "check email failed", err)
		return
	}
	if n > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		h.deps.InternalError(c, "hash password failed", err)
		return
	}
	hash := string(hashed)

	studentID := uuid.NewString()
	link := students.Link{
		ID:           uuid.NewString(),
		Correo:       email,
		EstudianteID: &studentID,
		PasswordHash: &hash,
		Role:         "student",
	}
	err = h.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := students.Student{ID: studentID, Nombre: strings.TrimSpace(input.Nombre), Apellido: strings.TrimSpace(input.Apellido)}
		if err := tx.Create(&st).Error; err != nil {
			return err
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		h.deps.InternalError(c, "register student failed", err, slog.String("email", email))
		return
	}

	token, err := h.tokens.Issue(link.ID, link.Correo, link.Role)
	if err != nil {
		h.deps.InternalError(c, "issue token failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login serves POST /login. The token subject is the usuario-estudiante id.
func (h *Handler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var link students.Link
	err := h.deps.DB.WithContext(c.Request.Context()).Where("correo = ?", normalizeEmail(input.Email)).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.deps.InternalError(c, "load account failed", err)
		return
	}

	if link.PasswordHash == nil || *link.PasswordHash == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account uses Google sign-in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*link.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(link.ID, link.Correo, link.Role)
	if err != nil {
		h.deps.InternalError(c, "issue token failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
