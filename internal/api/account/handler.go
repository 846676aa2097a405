package account

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/app/http/middleware"
	"exam-portal/internal/domain/plans"
	"exam-portal/internal/domain/students"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	deps *shared.Deps
}

func NewHandler(d *shared.Deps) *Handler {
	return &Handler{deps: d}
}

type SubscriptionDTO struct {
	Status    string      `json:"status"`
	ExpiresAt time.Time   `json:"expires_at"`
	Plan      *plans.Plan `json:"plan"`
}

type StatusResponse struct {
	Pro          bool             `json:"pro"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type StudentDTO struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
}

type MeResponse struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	LinkID    *string     `json:"link_id"`
	StudentID *string     `json:"student_id"`
	Student   *StudentDTO `json:"student"`
	Pro       bool        `json:"pro"`
}

func buildSubscriptionDTO(s *students.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{Status: string(s.Status), ExpiresAt: s.ExpiresAt, Plan: s.Plan}
}

// Subscription serves GET /subscription.
func (h *Handler) Subscription(c *gin.Context) {
	ctx := c.Request.Context()
	linkID, ok := h.deps.LinkID(c)
	if !ok {
		return
	}

	pro, err := h.deps.Gate.IsActive(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "subscription check failed", err, slog.String("link_id", linkID))
		return
	}
	cur, err := h.deps.Gate.Current(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "load subscription failed", err, slog.String("link_id", linkID))
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Pro: pro, Subscription: buildSubscriptionDTO(cur)})
}

// Me serves GET /me: the session as the token states it plus what both
// resolver variants make of it. Unresolved ids are null, not an error.
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	session := middleware.SessionFrom(c)

	resp := MeResponse{UserID: session.UserID, Email: session.Email, Role: c.GetString(middleware.KeyRole)}

	linkID, ok, err := h.deps.Links.Resolve(ctx, session)
	if err != nil {
		h.deps.InternalError(c, "resolve link failed", err)
		return
	}
	if ok {
		resp.LinkID = &linkID
		if resp.Pro, err = h.deps.Gate.IsActive(ctx, linkID); err != nil {
			h.deps.InternalError(c, "subscription check failed", err, slog.String("link_id", linkID))
			return
		}
	}

	studentID, ok, err := h.deps.Students.Resolve(ctx, session)
	if err != nil {
		h.deps.InternalError(c, "resolve student failed", err)
		return
	}
	if ok {
		resp.StudentID = &studentID
		var st students.Student
		err := h.deps.DB.WithContext(ctx).Where("id = ?", studentID).First(&st).Error
		switch {
		case err == nil:
			resp.Student = &StudentDTO{ID: st.ID, Nombre: st.Nombre, Apellido: st.Apellido}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			h.deps.InternalError(c, "load student failed", err, slog.String("student_id", studentID))
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
