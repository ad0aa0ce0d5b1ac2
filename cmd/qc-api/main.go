package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/qc-report-api/api/swagger"
	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/handler"
	"github.com/noah-isme/qc-report-api/internal/middleware"
	"github.com/noah-isme/qc-report-api/internal/repository"
	"github.com/noah-isme/qc-report-api/internal/service"
	"github.com/noah-isme/qc-report-api/pkg/authprovider"
	"github.com/noah-isme/qc-report-api/pkg/cache"
	"github.com/noah-isme/qc-report-api/pkg/config"
	"github.com/noah-isme/qc-report-api/pkg/database"
	"github.com/noah-isme/qc-report-api/pkg/export"
	"github.com/noah-isme/qc-report-api/pkg/logger"
	"github.com/noah-isme/qc-report-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/qc-report-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/qc-report-api/pkg/middleware/requestid"
	"github.com/noah-isme/qc-report-api/pkg/storage"
)

// @title QC Report API
// @version 1.0.0
// @description Inspection records, supplier statistics and account administration for the QC report system
// @BasePath /api
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open record store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	if cfg.Database.Driver == config.DriverSQLite {
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to ensure schema", zap.Error(err))
		}
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var redisClient *redis.Client
	if cfg.QC2.Enabled && cfg.QC2.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, workbook cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	provider := authprovider.NewClient(authprovider.Options{
		BaseURL:        cfg.Auth.ProviderURL,
		AnonKey:        cfg.Auth.AnonKey,
		ServiceRoleKey: cfg.Auth.ServiceRoleKey,
		Timeout:        10 * time.Second,
	})

	gate := service.NewIdentityGate(sessionResolver(cfg, provider, logr), service.NewAdminAllowlist(cfg.Auth.AdminEmails), logr)

	recordRepo := repository.NewRecordRepository(db)
	recordSvc := service.NewRecordService(recordRepo, validate, metrics, logr)
	exportSvc := service.NewExportService(recordSvc,
		export.NewCSVExporter(cfg.Export.CSVBOM),
		export.NewPDFExporter(cfg.Export.PDFFont),
		validate, logr)
	statisticsSvc := service.NewStatisticsService(recordRepo, metrics, logr)
	provisioningSvc := service.NewProvisioningService(provider, mailer.New(cfg.Mail.ResendAPIKey, cfg.Mail.From), cfg.App.BaseURL, validate, metrics, logr)

	sqlServer := cfg.SQLServer
	productRepo := repository.NewProductRepository(func(ctx context.Context) (*sqlx.DB, error) {
		connectCtx, cancel := context.WithTimeout(ctx, sqlServer.ConnectTimeout)
		defer cancel()
		return database.NewSQLServer(connectCtx, sqlServer)
	}, sqlServer.RequestTimeout, logr)
	productSvc := service.NewProductService(productRepo, dto.SQLServerTarget{
		Server:   sqlServer.Server,
		Database: sqlServer.Database,
		Port:     sqlServer.Port,
	}, validate, metrics, logr)

	handlers := handler.Handlers{
		Admin:      handler.NewAdminHandler(provisioningSvc),
		Records:    handler.NewRecordHandler(recordSvc, exportSvc),
		Statistics: handler.NewStatisticsHandler(statisticsSvc),
		Products:   handler.NewProductHandler(productSvc),
		Metrics:    handler.NewMetricsHandler(metrics, db.PingContext),
	}
	if cfg.QC2.Enabled {
		cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.QC2.CacheTTL, logr, redisClient != nil)
		workbookSvc := service.NewWorkbookService(storage.NewDirectory(cfg.QC2.Dir), cacheSvc, logr)
		handlers.Workbook = handler.NewWorkbookHandler(workbookSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, gate, handlers, logr.Named("audit"))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("db_driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func sessionResolver(cfg *config.Config, provider *authprovider.Client, logr *zap.Logger) service.SessionResolver {
	if cfg.Auth.VerifyMode == config.VerifyRemote || cfg.Auth.JWTSecret == "" {
		if cfg.Auth.VerifyMode != config.VerifyRemote {
			logr.Warn("AUTH_JWT_SECRET not set, verifying sessions against the identity provider")
		}
		return service.NewRemoteSessionResolver(provider)
	}
	return service.NewLocalSessionResolver(authprovider.NewTokenVerifier(cfg.Auth.JWTSecret))
}
