package main

import (
	"log"
	"os"
	"time"

	"exam-portal/config"
	"exam-portal/database"
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
	routes "exam-portal/internal/app/http"
	"exam-portal/internal/app/http/middleware"
	"exam-portal/internal/identity"
	"exam-portal/internal/infra/store"
	"exam-portal/internal/infra/stripe"
	"exam-portal/internal/platform/logger"
	"exam-portal/internal/platform/metrics"
	"exam-portal/internal/subscription"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.Setup(os.Stdout, cfg.LogLevel)

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		lg.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	st := store.New(db)
	links, err := identity.New(st, identity.TargetLink, identity.WithRecorder(collector))
	if err != nil {
		lg.Error("identity resolver", "error", err)
		os.Exit(1)
	}
	studs, err := identity.New(st, identity.TargetStudent, identity.WithRecorder(collector))
	if err != nil {
		lg.Error("identity resolver", "error", err)
		os.Exit(1)
	}
	gate, err := subscription.New(st, subscription.WithRecorder(collector))
	if err != nil {
		lg.Error("subscription gate", "error", err)
		os.Exit(1)
	}

	deps := &shared.Deps{DB: db, Links: links, Students: studs, Gate: gate, Log: lg, Now: time.Now}

	var gw stripe.Gateway
	if cfg.StripeSecretKey != "" {
		gw = stripe.NewClient(cfg.StripeSecretKey)
	} else {
		lg.Warn("STRIPE_SECRET_KEY not set; billing endpoints disabled")
	}

	var google *authapi.Google
	if cfg.GoogleEnabled() {
		google = authapi.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.GoogleFrontendRedirect)
	}

	if err := middleware.RegisterValidators(); err != nil {
		lg.Error("register validators", "error", err)
		os.Exit(1)
	}

	server := &routes.Server{
		Deps:         deps,
		JWTSecret:    cfg.JWTSecret,
		Metrics:      metrics.Handler(reg),
		LoginLimiter: middleware.NewRateLimiter(rate.Every(6*time.Second), 10, 30*time.Minute),
		Auth:         authapi.NewHandler(deps, authapi.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), google),
		Market:       market.NewHandler(deps),
		Practice:     practice.NewHandler(deps),
		Falladas:     falladas.NewHandler(deps),
		Account:      account.NewHandler(deps),
		Billing:      billing.NewHandler(deps, gw, cfg.AppURL),
		Plans:        plans.NewHandler(deps, gw, cfg.StripeProductID),
		Webhook:      stripewebhooks.NewHandler(deps, gw, cfg.StripeWebhookSecret, collector),
		Admin:        adminapi.NewHandler(deps),
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		lg.Error("invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}
	r.Use(middleware.RequestLogger(lg), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, server)

	lg.Info("listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		lg.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
