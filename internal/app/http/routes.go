package routes

import (
	"net/http"

	"exam-portal/internal/api/account"
	adminapi "exam-portal/internal/api/admin"
	authapi "exam-portal/internal/api/auth"
	"exam-portal/internal/api/billing"
	"exam-portal/internal/api/falladas"
	"exam-portal/internal/api/market"
	"exam-portal/internal/api/plans"
	"exam-portal/internal/api/practice"
	"exam-portal/internal/api/shared"
	stripewebhooks "exam-portal/internal/api/stripewebhook"
	"exam-portal/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// Server carries everything the route table hands out to handlers.
type Server struct {
	Deps         *shared.Deps
	JWTSecret    string
	Metrics      http.Handler
	LoginLimiter *middleware.RateLimiter

	Auth     *authapi.Handler
	Market   *market.Handler
	Practice *practice.Handler
	Falladas *falladas.Handler
	Account  *account.Handler
	Billing  *billing.Handler
	Plans    *plans.Handler
	Webhook  *stripewebhooks.Handler
	Admin    *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, s *Server) {
	// raw body is needed for the signature check, so no sanitizing here
	r.POST("/webhook", s.Webhook.Handle)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics))
	}

	public := r.Group("/")
	public.Use(middleware.SanitizeInputMiddleware())
	public.GET("/plans", s.Plans.List)

	login := public.Group("/")
	if s.LoginLimiter != nil {
		login.Use(s.LoginLimiter.Middleware())
	}
	login.POST("/register", s.Auth.Register)
	login.POST("/login", s.Auth.Login)
	login.GET("/auth/google", s.Auth.GoogleStart)
	login.GET("/auth/google/callback", s.Auth.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(s.JWTSecret), middleware.SanitizeInputMiddleware())
	auth.GET("/me", s.Account.Me)
	auth.GET("/subscription", s.Account.Subscription)

	auth.GET("/market", s.Market.List)
	auth.GET("/evaluations/:id", s.Practice.GetEvaluation)
	auth.POST("/evaluations/:id/attempts", s.Practice.SubmitAttempt)
	auth.GET("/attempts", s.Practice.ListAttempts)

	auth.POST("/checkout/pro", s.Billing.CheckoutPro)
	auth.POST("/checkout/evaluations/:id", s.Billing.CheckoutEvaluation)
	auth.POST("/billing-portal", s.Billing.Portal)
	auth.GET("/purchases", s.Billing.Purchases)

	// Pro plan only
	pro := auth.Group("/")
	pro.Use(middleware.RequireProPlan(s.Deps.Links, s.Deps.Gate, s.Deps.Log))
	pro.GET("/falladas", s.Falladas.List)
	pro.POST("/falladas/:questionId/review", s.Falladas.Review)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole("admin"))
	admin.GET("/subscriptions", s.Admin.ListSubscriptions)
	admin.GET("/students/:id", s.Admin.GetStudent)
	admin.GET("/stats", s.Admin.GetStats)
	admin.POST("/sync-plans", s.Plans.Sync)
}
