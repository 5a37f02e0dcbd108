package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/internal/repository"
	"github.com/noah-isme/collab-league-api/internal/service"
	"github.com/noah-isme/collab-league-api/pkg/cache"
	"github.com/noah-isme/collab-league-api/pkg/config"
	"github.com/noah-isme/collab-league-api/pkg/database"
	"github.com/noah-isme/collab-league-api/pkg/logger"
)

// @title Collab League API
// @version 1.0.0
// @description Marketplace where businesses send collaboration requests to creators and run the resulting campaigns.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(db.DB)
		if err != nil {
			return err
		}
		if err := database.MigrateUp(migrator, logr); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			// Redis is optional; the API runs uncached without it.
			logr.Warn("redis unavailable, view cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	app := buildApp(cfg, logr, db, redisClient)
	router := newRouter(cfg, logr, app)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// app holds the wired services behind the HTTP layer.
type app struct {
	db        *sqlx.DB
	redis     *redis.Client
	metrics   *service.MetricsService
	identity  *service.IdentityService
	auth      *service.AuthService
	profiles  *service.ProfileService
	requests  *service.RequestService
	campaigns *service.CampaignService
	discovery *service.DiscoveryService
	dashboard *service.DashboardService
	admin     *service.AdminService
	export    *service.ExportService
}

func buildApp(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *app {
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	collab := repository.NewCollaborationRepository(db)
	notes := repository.NewNoteRepository(db)
	discoveryRepo := repository.NewDiscoveryRepository(db)
	stats := repository.NewStatsRepository(db)
	audit := repository.NewAuditRepository(db)

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	viewCache := service.NewCacheService(cacheRepo, metrics, cfg.ViewCache.TTL, logr, cfg.ViewCache.Enabled && cacheRepo != nil)

	validate := service.NewValidator()
	identity := service.NewIdentityService(profiles, logr)

	return &app{
		db:       db,
		redis:    redisClient,
		metrics:  metrics,
		identity: identity,
		auth: service.NewAuthService(users, identity, audit, validate, logr, service.AuthConfig{
			AccessTokenSecret:  cfg.JWT.Secret,
			AccessTokenExpiry:  cfg.JWT.Expiration,
			RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
			PasswordResetTTL:   cfg.Auth.PasswordResetTTL,
			Issuer:             cfg.JWT.Issuer,
			SingleSession:      cfg.Auth.SingleSession,
		}),
		profiles:  service.NewProfileService(identity, profiles, users, audit, viewCache, validate, logr),
		requests:  service.NewRequestService(identity, collab, profiles, audit, viewCache, metrics, validate, logr),
		campaigns: service.NewCampaignService(identity, collab, notes, audit, viewCache, metrics, validate, logr),
		discovery: service.NewDiscoveryService(discoveryRepo, profiles, viewCache, logr, service.DiscoveryServiceConfig{
			DefaultLimit: cfg.Discovery.PageSize,
			CacheTTL:     cfg.Discovery.CacheTTL,
		}),
		dashboard: service.NewDashboardService(service.DashboardServiceParams{
			Actors:   identity,
			Stats:    stats,
			Requests: collab,
			Notes:    notes,
			Cache:    viewCache,
			Logger:   logr,
			Config: service.DashboardServiceConfig{
				CacheTTL:      cfg.Dashboard.CacheTTL,
				ActivityLimit: cfg.Dashboard.ActivityLimit,
			},
		}),
		admin:  service.NewAdminService(identity, stats, users, profiles, audit, viewCache, logr),
		export: service.NewExportService(identity, collab, nil, nil, validate, logr),
	}
}
