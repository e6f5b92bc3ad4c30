package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/rentara/rentara-api/docs" // Swagger docs
	"github.com/rentara/rentara-api/internal/config"
	"github.com/rentara/rentara-api/internal/database"
	"github.com/rentara/rentara-api/internal/handlers"
	"github.com/rentara/rentara-api/internal/jobs"
	"github.com/rentara/rentara-api/internal/middleware"
	"github.com/rentara/rentara-api/internal/repository"
	"github.com/rentara/rentara-api/internal/services"
	"github.com/rentara/rentara-api/internal/storage"
	"github.com/rentara/rentara-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Rentara API
// @version 1.0
// @description REST API for Rentara Lease Management System

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, cfg)

	scheduleJobs(worker, svcs, cfg)

	h := handlers.NewHandlers(svcs, store)

	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitPerMinute)))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
		})

		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		// Health check (public)
		v1.GET("/health", h.Health.Check)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes: destructive deletes and user administration
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.POST("/users/:user_id/restore", h.User.Restore)
				admin.POST("/users/:user_id/toggle_status", h.User.ToggleStatus)

				admin.DELETE("/leases/:lease_id", h.Lease.Delete)
				admin.DELETE("/tenants/:tenant_id", h.Tenant.Delete)
				admin.DELETE("/properties/:property_id", h.Property.Delete)
				admin.DELETE("/maintenance_charges/:charge_id", h.Maintenance.Delete)
			}

			// Staff routes: admins and managers manage the registry and
			// flip installment state
			staff := protected.Group("")
			staff.Use(middleware.RequireRole("admin", "manager"))
			{
				staff.GET("/users", h.User.Index)
				staff.GET("/users/:user_id", h.User.Show)

				staff.GET("/tenants", h.Tenant.Index)
				staff.POST("/tenants", h.Tenant.Create)
				staff.PUT("/tenants/:tenant_id", h.Tenant.Update)

				staff.POST("/properties", h.Property.Create)
				staff.PUT("/properties/:property_id", h.Property.Update)
				staff.POST("/properties/:property_id/image", h.Property.UploadImage)

				staff.POST("/leases", h.Lease.Create)
				staff.PUT("/leases/:lease_id", h.Lease.Update)
				staff.POST("/leases/:lease_id/document", h.Lease.UploadDocument)

				staff.PATCH("/installments/:installment_id/status", h.Installment.MarkStatus)

				staff.POST("/maintenance_charges", h.Maintenance.Create)
				staff.PUT("/maintenance_charges/:charge_id", h.Maintenance.Update)

				staff.GET("/leases/arrears", h.Lease.Arrears)
				staff.GET("/reports/arrears.csv", h.Report.ArrearsCSV)
			}

			// Authenticated reads: ownership filtering happens inside the
			// services, so tenants only ever see their own records
			protected.GET("/users/me", h.User.Me)
			protected.PUT("/users/me/password", h.User.ChangePassword)

			protected.GET("/leases", h.Lease.Index)
			protected.GET("/leases/stats", h.Lease.Stats)
			protected.GET("/leases/:lease_id", h.Lease.Show)
			protected.GET("/leases/:lease_id/installments", h.Installment.ByLease)
			protected.GET("/leases/:lease_id/installments/unpaid_count", h.Installment.UnpaidCount)
			protected.GET("/leases/:lease_id/document", h.Lease.DownloadDocument)
			protected.GET("/leases/:lease_id/statement", h.Report.RentStatement)
			protected.GET("/leases/:lease_id/schedule.xlsx", h.Report.ScheduleXLSX)

			protected.GET("/installments/unpaid", h.Installment.Unpaid)
			protected.GET("/installments/overdue", h.Installment.Overdue)
			protected.GET("/installments/:installment_id", h.Installment.Show)

			protected.GET("/tenants/:tenant_id", h.Tenant.Show)
			protected.GET("/tenants/:tenant_id/leases", h.Lease.ByTenant)

			protected.GET("/properties", h.Property.Index)
			protected.GET("/properties/:property_id", h.Property.Show)

			protected.GET("/maintenance_charges", h.Maintenance.Index)
			protected.GET("/maintenance_charges/:charge_id", h.Maintenance.Show)

			// Notifications. Static route first so "read_all" is not
			// matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/read_all", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/read", h.Notification.MarkAsRead)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Scan for overdue unpaid installments. The scan notifies only; it never
	// mutates installment state.
	interval := time.Duration(cfg.OverdueScanMinutes) * time.Minute
	worker.ScheduleEvery(interval, func(ctx context.Context) error {
		logger.Info("[Job] Scanning for overdue installments...")
		return svcs.Installment.NotifyOverdue(ctx)
	})

	// Purge expired refresh tokens daily
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Purging expired refresh tokens...")
		return svcs.Auth.PurgeExpiredTokens(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
