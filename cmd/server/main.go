package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	contractapp "github.com/realty/backend/internal/application/contract"
	ledgerapp "github.com/realty/backend/internal/application/ledger"
	propertyapp "github.com/realty/backend/internal/application/property"
	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/ledger"
	"github.com/realty/backend/internal/infrastructure/config"
	"github.com/realty/backend/internal/infrastructure/logger"
	"github.com/realty/backend/internal/infrastructure/persistence"
	"github.com/realty/backend/internal/infrastructure/scheduler"
	"github.com/realty/backend/internal/interfaces/http/handler"
	"github.com/realty/backend/internal/interfaces/http/middleware"
	"github.com/realty/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Realty Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	ledgerUoW := persistence.NewGormLedgerUnitOfWork(db.DB)

	// Initialize the ledger engine with the configured penalty policy
	engine, err := ledger.NewEngine(ledger.LedgerPolicy{
		PenaltyRatePerMonth: cfg.Ledger.PenaltyRatePerMonth,
	})
	if err != nil {
		log.Fatal("Invalid ledger policy", zap.Error(err))
	}

	// Initialize application services
	contractService := contractapp.NewContractService(contractRepo, propertyRepo)
	paymentService := ledgerapp.NewPaymentService(contractRepo, transactionRepo, commissionRepo, ledgerUoW, engine, log)
	propertyService := propertyapp.NewPropertyService(propertyRepo, contractRepo,
		propertyapp.WithDefaultThresholds(cfg.Ledger.ConstructionTriggerPercent, cfg.Ledger.TurnoverReadinessPercent))

	// Initialize handlers
	contractHandler := handler.NewContractHandler(contractService)
	ledgerHandler := handler.NewLedgerHandler(paymentService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engineHTTP := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engineHTTP.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engineHTTP.Use(middleware.RequestID())
	engineHTTP.Use(logger.Recovery(log))
	engineHTTP.Use(logger.GinMiddleware(log))
	engineHTTP.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engineHTTP.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engineHTTP.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engineHTTP.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engineHTTP.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engineHTTP, router.WithAPIVersion("v1"))

	// Property domain (listings, construction milestones)
	propertyRoutes := router.NewDomainGroup("property", "/properties")
	propertyRoutes.POST("", propertyHandler.Create)
	propertyRoutes.GET("", propertyHandler.List)
	propertyRoutes.GET("/:id", propertyHandler.Get)
	propertyRoutes.GET("/:id/triggers", propertyHandler.EvaluateTriggers)
	propertyRoutes.POST("/:id/construction/start", propertyHandler.StartConstruction)
	propertyRoutes.POST("/:id/turnover/ready", propertyHandler.MarkTurnoverReady)

	// Contract domain (lifecycle, schedule, ledger)
	contractRoutes := router.NewDomainGroup("contract", "/contracts")
	contractRoutes.POST("", contractHandler.Create)
	contractRoutes.GET("", contractHandler.List)
	contractRoutes.GET("/number/:number", contractHandler.GetByNumber)
	contractRoutes.GET("/:id", contractHandler.Get)
	contractRoutes.POST("/:id/submit", contractHandler.Submit)
	contractRoutes.POST("/:id/sign", contractHandler.Sign)
	contractRoutes.POST("/:id/terminate", contractHandler.Terminate)
	contractRoutes.POST("/:id/cancel", contractHandler.Cancel)
	contractRoutes.POST("/:id/expire", contractHandler.Expire)
	contractRoutes.GET("/:id/schedule", contractHandler.GetSchedule)
	contractRoutes.GET("/:id/progress", contractHandler.GetProgress)
	contractRoutes.POST("/:id/payments", ledgerHandler.ApplyPayment)
	contractRoutes.POST("/:id/reversals", ledgerHandler.Reverse)
	contractRoutes.POST("/:id/refunds", ledgerHandler.Refund)
	contractRoutes.GET("/:id/transactions", ledgerHandler.ListTransactions)
	contractRoutes.GET("/:id/commissions", ledgerHandler.ListCommissions)
	contractRoutes.POST("/:id/commissions/:record_id/payout", ledgerHandler.PayoutCommission)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(propertyRoutes).
		Register(contractRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engineHTTP.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engineHTTP,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Background sweeper moving lapsed ACTIVE contracts to EXPIRED
	sweeper := scheduler.NewExpirySweeper(
		scheduler.ExpirySweeperConfig{
			Enabled:       cfg.Scheduler.ExpirySweepEnabled,
			SweepInterval: cfg.Scheduler.ExpirySweepInterval,
			SweepTimeout:  cfg.Scheduler.ExpirySweepTimeout,
		},
		scheduler.FinderFunc(func(ctx context.Context, asOf time.Time) ([]uuid.UUID, error) {
			status := contract.StatusActive
			filter := contract.Filter{Status: &status, EndedBefore: &asOf}
			filter.Page = 1
			filter.PageSize = 500
			contracts, _, err := contractRepo.FindAll(ctx, filter)
			if err != nil {
				return nil, err
			}
			ids := make([]uuid.UUID, 0, len(contracts))
			for i := range contracts {
				ids = append(ids, contracts[i].ID)
			}
			return ids, nil
		}),
		scheduler.ExpireFunc(func(ctx context.Context, id uuid.UUID) error {
			_, err := contractService.ExpireOverdue(ctx, id)
			return err
		}),
		log,
	)
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start expiry sweeper", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sweeper.Stop(ctx); err != nil {
		log.Error("Expiry sweeper did not stop cleanly", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
