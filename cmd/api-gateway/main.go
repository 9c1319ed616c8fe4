package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kelasku/kelasku-api/api/swagger"
	"github.com/kelasku/kelasku-api/internal/handler"
	"github.com/kelasku/kelasku-api/internal/middleware"
	"github.com/kelasku/kelasku-api/internal/models"
	"github.com/kelasku/kelasku-api/internal/repository"
	"github.com/kelasku/kelasku-api/internal/service"
	"github.com/kelasku/kelasku-api/pkg/cache"
	"github.com/kelasku/kelasku-api/pkg/config"
	"github.com/kelasku/kelasku-api/pkg/database"
	"github.com/kelasku/kelasku-api/pkg/logger"
	corsmiddleware "github.com/kelasku/kelasku-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kelasku/kelasku-api/pkg/middleware/requestid"
	"github.com/kelasku/kelasku-api/pkg/payment"
)

// @title Kelasku API
// @version 1.0.0
// @description E-learning catalog, purchase and entitlement backend
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	orderRepo := repository.NewPaymentOrderRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	catalogSvc := service.NewCatalogService(categoryRepo, topicRepo, nil, logr)

	var accessCache *service.AccessCacheService
	if cfg.Access.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		accessCache = service.NewAccessCacheService(redisClient, cfg.Access.CacheTTL, logr)
	}

	notificationSvc := service.NewNotificationService(cfg.Notifications, logr)
	notificationSvc.Start(context.Background())
	defer notificationSvc.Stop()

	gateway := payment.NewClient(cfg.Payment, logr)

	purchaseDeps := service.PurchaseServiceDeps{
		Categories:  categoryRepo,
		Topics:      topicRepo,
		Enrollments: enrollmentRepo,
		Orders:      orderRepo,
		Users:       userRepo,
		Gateway:     gateway,
		Notifier:    notificationSvc,
		Metrics:     metricsSvc,
		Currency:    cfg.Payment.Currency,
		Logger:      logr,
	}
	if accessCache != nil {
		purchaseDeps.Invalidator = accessCache
	}
	purchaseSvc := service.NewPurchaseService(purchaseDeps)

	var accessSvc *service.AccessService
	if accessCache != nil {
		accessSvc = service.NewAccessService(topicRepo, enrollmentRepo, accessCache, logr)
	} else {
		accessSvc = service.NewAccessService(topicRepo, enrollmentRepo, nil, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	categoryHandler := handler.NewCategoryHandler(catalogSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	accessHandler := handler.NewAccessHandler(accessSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		api.GET("/categories", categoryHandler.List)
		api.GET("/categories/:id", categoryHandler.Get)
		api.GET("/categories/:id/requirements", categoryHandler.Requirements)
		api.GET("/categories/:id/topics", categoryHandler.ListTopics)

		admin := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("/categories", categoryHandler.Create)
			admin.PUT("/categories/:id", categoryHandler.Update)
			admin.POST("/categories/:id/topics", categoryHandler.AddTopic)
		}

		authed := api.Group("", middleware.JWT(authSvc))
		{
			authed.POST("/purchases", purchaseHandler.Initiate)
			authed.POST("/purchases/verify", purchaseHandler.Verify)
			authed.GET("/purchases/:orderId/receipt", purchaseHandler.Receipt)
			authed.GET("/topics/:id/access", accessHandler.CheckTopic)
			authed.GET("/categories/:id/accessible-topics", accessHandler.AccessibleTopics)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
