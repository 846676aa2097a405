package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"exam-portal/internal/api/shared"
	"exam-portal/internal/domain/exams"
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

type AdminSubscription struct {
	ID                   string    `json:"id"`
	LinkID               string    `json:"link_id"`
	Email                string    `json:"email"`
	Status               string    `json:"status"`
	ExpiresAt            time.Time `json:"expires_at"`
	PlanName             *string   `json:"plan_name,omitempty"`
	StripeSubscriptionID *string   `json:"stripe_subscription_id,omitempty"`
	Active               bool      `json:"active"`
}

type AdminLink struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	Role             string  `json:"role"`
	StudentID        *string `json:"student_id"`
	StripeCustomerID *string `json:"stripe_customer_id"`
	GoogleLinked     bool    `json:"google_linked"`
}

type AdminStudent struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Apellido  string    `json:"apellido"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminPurchase struct {
	ID              string    `json:"id"`
	EvaluationID    string    `json:"evaluation_id"`
	StripeSessionID string    `json:"stripe_session_id"`
	AmountEUR       float64   `json:"amount_eur"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// StudentDetail is the body of GET /admin/students/:id.
type StudentDetail struct {
	Link          AdminLink           `json:"link"`
	Student       *AdminStudent       `json:"student"`
	Pro           bool                `json:"pro"`
	Subscriptions []AdminSubscription `json:"subscriptions"`
	Purchases     []AdminPurchase     `json:"purchases"`
}

type AdminStats struct {
	TotalStudents       int64   `json:"total_students"`
	ActiveSubscriptions int64   `json:"active_subscriptions"`
	PurchaseRevenue     float64 `json:"purchase_revenue"`
	RecentRevenue       float64 `json:"recent_revenue"`
}

var validStatuses = map[students.SubscriptionStatus]bool{
	students.StatusActive:     true,
	students.StatusPastDue:    true,
	students.StatusCanceled:   true,
	students.StatusExpired:    true,
	students.StatusIncomplete: true,
}

// ListSubscriptions serves GET /admin/subscriptions, optionally filtered by ?status=.
func (h *Handler) ListSubscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	q := h.deps.DB.WithContext(ctx).Preload("Plan").Order("expires_at DESC")

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := students.SubscriptionStatus(strings.ToUpper(raw))
		if !validStatuses[status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
			return
		}
		q = q.Where("status = ?", status)
	}

	var subs []students.Subscription
	if err := q.Find(&subs).Error; err != nil {
		h.deps.InternalError(c, "load subscriptions failed", err)
		return
	}

	emails, err := h.emailsFor(c, subs)
	if err != nil {
		h.deps.InternalError(c, "load link emails failed", err)
		return
	}

	now := h.deps.Clock()
	out := make([]AdminSubscription, 0, len(subs))
	for _, s := range subs {
		out = append(out, toAdminSubscription(s, emails[s.UsuarioEstudianteID], now))
	}
	c.JSON(http.StatusOK, out)
}

func toAdminSubscription(s students.Subscription, email string, now time.Time) AdminSubscription {
	var planName *string
	if s.Plan != nil {
		planName = &s.Plan.Name
	}
	return AdminSubscription{
		ID:                   s.ID,
		LinkID:               s.UsuarioEstudianteID,
		Email:                email,
		Status:               string(s.Status),
		ExpiresAt:            s.ExpiresAt,
		PlanName:             planName,
		StripeSubscriptionID: s.StripeSubscriptionID,
		Active:               s.Status == students.StatusActive && !s.ExpiresAt.Before(now),
	}
}

func (h *Handler) emailsFor(c *gin.Context, subs []students.Subscription) (map[string]string, error) {
	out := map[string]string{}
	if len(subs) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.UsuarioEstudianteID)
	}
	var links []students.Link
	if err := h.deps.DB.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.ID] = l.Correo
	}
	return out, nil
}

// GetStudent serves GET /admin/students/:id where id is a usuario-estudiante id.
func (h *Handler) GetStudent(c *gin.Context) {
	ctx := c.Request.Context()
	linkID := c.Param("id")

	var link students.Link
	err := h.deps.DB.WithContext(ctx).Where("id = ?", linkID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	if err != nil {
		h.deps.InternalError(c, "load link failed", err, slog.String("link_id", linkID))
		return
	}

	var student *students.Student
	if link.EstudianteID != nil {
		var st students.Student
		err := h.deps.DB.WithContext(ctx).Where("id = ?", *link.EstudianteID).First(&st).Error
		switch {
		case err == nil:
			student = &st
		case !errors.Is(err, gorm.ErrRecordNotFound):
			h.deps.InternalError(c, "load student failed", err, slog.String("link_id", linkID))
			return
		}
	}

	var subs []students.Subscription
	if err := h.deps.DB.WithContext(ctx).Preload("Plan").
		Where("usuario_estudiante_id = ?", linkID).
		Order("expires_at DESC").
		Find(&subs).Error; err != nil {
		h.deps.InternalError(c, "load subscriptions failed", err, slog.String("link_id", linkID))
		return
	}

	var purchases []exams.Purchase
	if err := h.deps.DB.WithContext(ctx).
		Where("usuario_estudiante_id = ?", linkID).
		Order("created_at DESC").
		Find(&purchases).Error; err != nil {
		h.deps.InternalError(c, "load purchases failed", err, slog.String("link_id", linkID))
		return
	}

	pro, err := h.deps.Gate.IsActive(ctx, linkID)
	if err != nil {
		h.deps.InternalError(c, "subscription check failed", err, slog.String("link_id", linkID))
		return
	}

	detail := StudentDetail{
		Link: AdminLink{
			ID:               link.ID,
			Email:            link.Correo,
			Role:             link.Role,
			StudentID:        link.EstudianteID,
			StripeCustomerID: link.StripeCustomerID,
			GoogleLinked:     link.GoogleSub != nil,
		},
		Pro:           pro,
		Subscriptions: make([]AdminSubscription, 0, len(subs)),
		Purchases:     make([]AdminPurchase, 0, len(purchases)),
	}
	if student != nil {
		detail.Student = &AdminStudent{
			ID:        student.ID,
			Nombre:    student.Nombre,
			Apellido:  student.Apellido,
			CreatedAt: student.CreatedAt,
		}
	}
	now := h.deps.Clock()
	for _, s := range subs {
		detail.Subscriptions = append(detail.Subscriptions, toAdminSubscription(s, link.Correo, now))
	}
	for _, p := range purchases {
		detail.Purchases = append(detail.Purchases, AdminPurchase{
			ID:              p.ID,
			EvaluationID:    p.EvaluacionID,
			StripeSessionID: p.StripeSessionID,
			AmountEUR:       p.AmountEUR,
			Status:          p.Status,
			CreatedAt:       p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, detail)
}

// GetStats serves GET /admin/stats.
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.deps.DB.WithContext(ctx)
	now := h.deps.Clock()

	var stats AdminStats
	if err := db.Model(&students.Student{}).Count(&stats.TotalStudents).Error; err != nil {
		h.deps.InternalError(c, "count students failed", err)
		return
	}
	if err := db.Model(&students.Subscription{}).
		Where("status = ? AND expires_at >= ?", students.StatusActive, now).
		Distinct("usuario_estudiante_id").
		Count(&stats.ActiveSubscriptions).Error; err != nil {
		h.deps.InternalError(c, "count subscriptions failed", err)
		return
	}
	if err := db.Model(&exams.Purchase{}).
		Where("status = ?", exams.PurchasePaid).
		Select("COALESCE(SUM(amount_eur), 0)").
		Scan(&stats.PurchaseRevenue).Error; err != nil {
		h.deps.InternalError(c, "sum purchases failed", err)
		return
	}
	if err := db.Model(&exams.Purchase{}).
		Where("status = ? AND created_at >= ?", exams.PurchasePaid, now.AddDate(0, 0, -30)).
		Select("COALESCE(SUM(amount_eur), 0)").
		Scan(&stats.RecentRevenue).Error; err != nil {
		h.deps.InternalError(c, "sum recent purchases failed", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
