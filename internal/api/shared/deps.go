// Package shared holds what every portal handler needs: the database, the two
// identity resolvers, the subscription gate and a logger.
package shared

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"exam-portal/internal/app/http/middleware"
	"exam-portal/internal/domain/access"
	"exam-portal/internal/domain/exams"
	"exam-portal/internal/identity"
	"exam-portal/internal/subscription"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Links    *identity.Resolver // usuario-estudiante variant
	Students *identity.Resolver // estudiante variant
	Gate     *subscription.Gate
	Log      *slog.Logger
	Now      func() time.Time
}

func (d *Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// InternalError logs err and answers a generic 500.
func (d *Deps) InternalError(c *gin.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.Any("error", err))
	d.Log.ErrorContext(c.Request.Context(), msg, attrs...)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// LinkID returns the usuario-estudiante id set by RequireProPlan, or resolves
// it. It answers 404/500 itself and returns false in that case.
func (d *Deps) LinkID(c *gin.Context) (string, bool) {
	if id := c.GetString(middleware.KeyLinkID); id != "" {
		return id, true
	}
	return d.mustResolve(c, d.Links)
}

// StudentID resolves the caller's estudiante id, answering 404/500 on failure.
func (d *Deps) StudentID(c *gin.Context) (string, bool) {
	return d.mustResolve(c, d.Students)
}

func (d *Deps) mustResolve(c *gin.Context, r *identity.Resolver) (string, bool) {
	id, ok, err := r.Resolve(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		d.InternalError(c, "resolve student failed", err, slog.String("target", string(r.Target())))
		return "", false
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return "", false
	}
	return id, true
}

// Viewer builds the access viewer for linkID. An empty linkID is an
// anonymous viewer that only sees free evaluations.
func (d *Deps) Viewer(ctx context.Context, linkID string) (access.Viewer, error) {
	v := access.Viewer{Purchased: map[string]bool{}}
	if linkID == "" {
		return v, nil
	}

	pro, err := d.Gate.IsActive(ctx, linkID)
	if err != nil {
		return v, err
	}
	v.Pro = pro

	var bought []string
	if err := d.DB.WithContext(ctx).Model(&exams.Purchase{}).
		Where("usuario_estudiante_id = ? AND status = ?", linkID, exams.PurchasePaid).
		Pluck("evaluacion_id", &bought).Error; err != nil {
		return v, fmt.Errorf("load purchases: %w", err)
	}
	for _, id := range bought {
		v.Purchased[id] = true
	}
	return v, nil
}

// OptionalLinkID resolves the caller without answering on a miss.
func (d *Deps) OptionalLinkID(c *gin.Context) (string, error) {
	id, _, err := d.Links.Resolve(c.Request.Context(), middleware.SessionFrom(c))
	return id, err
}
