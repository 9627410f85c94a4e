package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/trapadl/spicymarg-funnel/internal/admin"
	"github.com/trapadl/spicymarg-funnel/internal/funnel"
	"github.com/trapadl/spicymarg-funnel/internal/http/handlers"
	"github.com/trapadl/spicymarg-funnel/internal/notify"
	"github.com/trapadl/spicymarg-funnel/internal/repo/postgres"
	"github.com/trapadl/spicymarg-funnel/internal/repo/redisotp"
	"github.com/trapadl/spicymarg-funnel/pkg/config"
	"github.com/trapadl/spicymarg-funnel/pkg/database"
	"github.com/trapadl/spicymarg-funnel/pkg/events"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
	mw "github.com/trapadl/spicymarg-funnel/pkg/middleware"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to Redis for OTP challenges
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	guestRepo := postgres.NewGuestRepo(pool)
	visitRepo := postgres.NewVisitRepo(pool)
	redemptionRepo := postgres.NewRedemptionRepo(pool)
	metricsRepo := postgres.NewMetricsRepo(pool)
	otpStore := redisotp.NewRedisStore(redisClient)

	// Initialize CRM client
	var crm notify.Service
	if cfg.Brevo.DevMode {
		crm = notify.NewDev()
		logger.Info("CRM in dev mode, sends are logged only")
	} else {
		crm = notify.NewBrevo(cfg.Brevo.APIKey, cfg.Brevo.SenderName)
	}

	// Initialize services
	notifier := funnel.NewCRMNotifier(crm, cfg.Brevo)
	funnelService := funnel.NewService(
		guestRepo, visitRepo, redemptionRepo, otpStore,
		notifier, crm, eventBus, cfg,
	)
	adminService := admin.NewService(metricsRepo, cfg)

	// Initialize handlers
	h := handlers.New(funnelService, adminService, cfg)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", cfg.Brevo.PublicBaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Mount("/", h.Routes())

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
