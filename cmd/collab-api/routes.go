package main

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/collab-league-api/api/swagger"
	"github.com/noah-isme/collab-league-api/internal/handler"
	"github.com/noah-isme/collab-league-api/internal/middleware"
	"github.com/noah-isme/collab-league-api/pkg/config"
	"github.com/noah-isme/collab-league-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/collab-league-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/collab-league-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.WithResponseMeta())

	deps := map[string]handler.Pinger{"postgres": handler.PingFunc(a.db.PingContext)}
	if a.redis != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return a.redis.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(a.metrics, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET(metricsPath(cfg.Metrics.Path), metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(a.auth)
	profileHandler := handler.NewProfileHandler(a.profiles)
	requestHandler := handler.NewRequestHandler(a.requests)
	campaignHandler := handler.NewCampaignHandler(a.campaigns)
	discoveryHandler := handler.NewDiscoveryHandler(a.discovery)
	dashboardHandler := handler.NewDashboardHandler(a.dashboard)
	adminHandler := handler.NewAdminHandler(a.admin, a.export)

	api := r.Group(cfg.APIPrefix, middleware.Policy(a.auth, a.identity, routePolicy(cfg.APIPrefix)))

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/change-password", authHandler.ChangePassword)
	auth.GET("/me", authHandler.Me)

	creators := api.Group("/creators")
	creators.GET("", discoveryHandler.Search)
	creators.GET("/:ref", discoveryHandler.Get)

	profile := api.Group("/profile")
	profile.GET("", profileHandler.Get)
	profile.GET("/completion", profileHandler.Completion)
	profile.POST("/creator", profileHandler.CreateCreator)
	profile.PUT("/creator", profileHandler.UpdateCreator)
	profile.POST("/business", profileHandler.CreateBusiness)
	profile.PUT("/business", profileHandler.UpdateBusiness)

	requests := api.Group("/requests")
	requests.POST("", requestHandler.Create)
	requests.GET("/incoming", requestHandler.Incoming)
	requests.GET("/sent", requestHandler.Sent)
	requests.GET("/:id", requestHandler.Get)
	requests.POST("/:id/respond", requestHandler.Respond)
	requests.POST("/:id/cancel", requestHandler.Cancel)

	campaigns := api.Group("/campaigns")
	campaigns.GET("", campaignHandler.List)
	campaigns.GET("/:id", campaignHandler.Get)
	campaigns.PATCH("/:id/status", campaignHandler.UpdateStatus)
	campaigns.GET("/:id/notes", campaignHandler.ListNotes)
	campaigns.POST("/:id/notes", campaignHandler.AddNote)

	api.GET("/dashboard", dashboardHandler.Get)

	admin := api.Group("/admin")
	admin.GET("/overview", adminHandler.Overview)
	admin.GET("/users", adminHandler.Users)
	admin.GET("/campaigns", campaignHandler.List)
	admin.GET("/campaigns/export", adminHandler.ExportCampaigns)
	admin.POST("/creators/:id/toggle-active", adminHandler.ToggleCreator)
	admin.POST("/businesses/:id/toggle-verified", adminHandler.ToggleBusiness)
	admin.GET("/metrics", metricsHandler.Snapshot)

	return r
}

func metricsPath(path string) string {
	if path == "" {
		return "/metrics"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
