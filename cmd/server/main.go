package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockledger/backend/internal/application/catalog"
	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	csvimport "github.com/stockledger/backend/internal/infrastructure/import"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stockledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/stockledger/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Stock Ledger API
//	@version		1.0
//	@description	Warehouse inventory: catalog, stock movements and pending intake batches.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewForEnvironment(cfg.App.Env, &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stock ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("driver", cfg.Database.Driver),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema migrated")
	}

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	specRepo := persistence.NewGormSpecRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	batchRepo := persistence.NewGormPendingBatchRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Services
	catalogService := catalogapp.NewCatalogService(categoryRepo, itemRepo, specRepo, variantRepo, log.Named("catalog"))
	userService := catalogapp.NewUserService(userRepo)
	ledgerService := inventoryapp.NewLedgerService(variantRepo, movementRepo, userRepo, txScope, log.Named("ledger"))
	ledgerService.SetHistoryPageSize(cfg.Inventory.HistoryPageSize)
	rowParser := csvimport.NewRowParser(csvimport.WithUnspecifiedSupplier(cfg.Inventory.UnspecifiedSupplier))
	pendingService := inventoryapp.NewPendingService(itemRepo, specRepo, variantRepo, batchRepo, txScope, rowParser, log.Named("intake"))
	reportService := inventoryapp.NewReportService(variantRepo, movementRepo, userRepo, categoryRepo)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	systemUser, err := userService.EnsureSystemUser(startupCtx, cfg.Inventory.SystemUserName)
	if err != nil {
		log.Fatal("Failed to ensure system user", zap.Error(err))
	}

	storeFactory := cache.NewSubmissionStoreFactory(cfg.Redis, cache.WithLogger(log))
	submissionStore, err := storeFactory.CreateStore(startupCtx)
	if err != nil {
		log.Fatal("Failed to create submission store", zap.Error(err))
	}
	defer func() {
		if err := submissionStore.Close(); err != nil {
			log.Error("Error closing submission store", zap.Error(err))
		}
	}()

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtMiddleware := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		Validator: jwtService,
		Logger:    log,
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogger(log, logger.WithSkipPaths("/health")))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Uploads get their own, larger limit
	bodyLimit := cfg.HTTP.MaxBodySize
	if cfg.HTTP.MaxUploadSize > bodyLimit {
		bodyLimit = cfg.HTTP.MaxUploadSize
	}
	engine.Use(middleware.BodyLimit(bodyLimit))

	engine.GET("/health", handler.NewHealthHandler(db).Health)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var routerOpts []router.RouterOption
	if cfg.Auth.Enabled {
		routerOpts = append(routerOpts, router.WithAuth(jwtMiddleware))
	} else {
		log.Warn("Back-office authentication is disabled")
	}
	if cfg.Idempotency.Enabled {
		routerOpts = append(routerOpts, router.WithSubmissionGuard(middleware.SubmissionGuard(submissionStore, shared.SubmissionConfig{
			Enabled: true,
			TTL:     cfg.Idempotency.TTL,
			Header:  cfg.Idempotency.Header,
		})))
	}

	r := router.NewRouter(engine, routerOpts...)
	router.RegisterAPI(r, router.Handlers{
		Catalog: handler.NewCatalogHandler(catalogService, userService, reportService),
		Stock:   handler.NewStockHandler(ledgerService, reportService, cfg.Inventory.WarehouseMarker),
		Intake:  handler.NewIntakeHandler(pendingService, systemUser, cfg.HTTP.MaxUploadSize),
	})
	r.Setup()
	log.Info("Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
