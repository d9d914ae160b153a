package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/config"
	"github.com/warrantydesk/warrantydesk/internal/database"
	"github.com/warrantydesk/warrantydesk/internal/handlers"
	"github.com/warrantydesk/warrantydesk/internal/jobs"
	"github.com/warrantydesk/warrantydesk/internal/middleware"
	"github.com/warrantydesk/warrantydesk/internal/notify"
	"github.com/warrantydesk/warrantydesk/internal/store"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting warranty desk...")

	if cfg.AdminPassword == "" {
		log.Fatalf("ADMIN_PASSWORD is not set")
	}

	// Initialize database connection
	if err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := database.GetDB()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	if cfg.CategoriesFile != "" {
		n, err := database.SeedCategoriesFromFile(db, cfg.CategoriesFile)
		if err != nil {
			log.Fatalf("Failed to seed categories from %s: %v", cfg.CategoriesFile, err)
		}
		log.Printf("Seeded %d categories from %s", n, cfg.CategoriesFile)
	}

	passwordHash, err := middleware.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	if _, err := database.EnsureAdminUser(db, cfg.AdminEmail, passwordHash); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	st := store.NewGormStore(db)
	clock := claims.SystemClock{}

	notifier, slackNotifier := buildNotifiers(cfg)
	if notifier.Len() == 0 {
		log.Printf("No notification transport configured (set SMTP_HOST/SMTP_FROM or SLACK_BOT_TOKEN/SLACK_CHANNEL)")
	}

	router := claims.NewRouter(st, st, notifier, claims.RouterOptions{
		NotifyCustomer: cfg.NotifyCustomer,
		NotifyCreator:  cfg.NotifyCreator,
	})
	intake := claims.NewIntake(st, st, router, clock)
	lifecycle := claims.NewLifecycle(st, st, st, clock)
	lifecycle.SetStatusNotifier(notifier)

	jwtAuthMiddleware := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		JWTSecret:      cfg.JWTSecret,
		JWTExpiryHours: cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/health",
			"/auth/login",
		},
	})

	jwtAuthMiddleware.SetUserLookup(st)

	var pinger handlers.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}

	mux := http.NewServeMux()
	handlers.NewHTTPHandler(pinger).SetupRoutes(mux)
	handlers.NewAuthHandler(jwtAuthMiddleware, st).SetupRoutes(mux)
	handlers.NewClaimsHandler(intake, lifecycle, st, clock).SetupRoutes(mux)

	// CORS first so preflights never hit auth, then request id and access log
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORSAllowedOrigins...)
	handler := corsMiddleware.Wrap(
		middleware.RequestIDMiddleware(
			middleware.AccessLogMiddleware(
				jwtAuthMiddleware.Wrap(mux))))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopMonitor := make(chan struct{})
	if interval := cfg.SLAScanInterval(); interval > 0 {
		var reporter jobs.BreachReporter
		if slackNotifier != nil {
			reporter = slackNotifier
		}
		monitor := jobs.NewSLAMonitor(st, st, clock, reporter)
		go monitor.Start(interval, stopMonitor)
	} else {
		log.Printf("SLA breach scan disabled")
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api", cfg.HTTPPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Received shutdown signal, cleaning up...")

	close(stopMonitor)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Shutdown complete")
}

// buildNotifiers wires the configured transports. The Slack notifier is also
// returned on its own so the SLA monitor can post breach digests.
func buildNotifiers(cfg *config.Config) (*notify.Multi, *notify.SlackNotifier) {
	multi := notify.NewMulti()

	smtp := notify.SMTPConfig{
		Host:          cfg.SMTPHost,
		Port:          cfg.SMTPPort,
		User:          cfg.SMTPUser,
		Pass:          cfg.SMTPPass,
		From:          cfg.SMTPFrom,
		SkipTLSVerify: cfg.SMTPSkipTLSVerify,
	}
	if smtp.Enabled() {
		multi.Add(notify.NewEmailNotifier(notify.NewDialer(smtp), smtp.From, cfg.NotifyCustomer))
		log.Printf("Email notifications enabled via %s:%d", smtp.Host, smtp.Port)
	} else {
		log.Printf("Email notifications DISABLED")
	}

	var slackNotifier *notify.SlackNotifier
	if cfg.SlackEnabled() {
		slackNotifier = notify.NewSlackNotifier(notify.NewSlackClient(cfg.SlackBotToken), cfg.SlackChannel)
		multi.Add(slackNotifier)
		log.Printf("Slack notifications enabled for channel %s", cfg.SlackChannel)
	} else {
		log.Printf("Slack notifications DISABLED")
	}

	return multi, slackNotifier
}
