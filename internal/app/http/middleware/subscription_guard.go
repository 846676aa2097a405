package middleware

import (
	"log/slog"
	"net/http"

	"exam-portal/internal/identity"
	"exam-portal/internal/subscription"

	"github.com/gin-gonic/gin"
)

// RequireProPlan resolves the caller's usuario-estudiante and aborts unless
// the gate reports an active plan. The resolved id is stored under KeyLinkID.
func RequireProPlan(links *identity.Resolver, gate *subscription.Gate, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		linkID, ok, err := links.Resolve(ctx, SessionFrom(c))
		if err != nil {
			log.ErrorContext(ctx, "resolve student failed", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}

		active, err := gate.IsActive(ctx, linkID)
		if err != nil {
			log.ErrorContext(ctx, "subscription check failed", slog.String("link_id", linkID), slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !active {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "An active pro plan is required"})
			return
		}

		c.Set(KeyLinkID, linkID)
		c.Next()
	}
}
