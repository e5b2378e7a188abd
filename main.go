package main

import (
	"context"
	"fmt"
	"log"
	"os"

	apirest "github.com/armoryops/armoryd/api/rest"
	"github.com/armoryops/armoryd/api/sse"
	"github.com/armoryops/armoryd/audit"
	"github.com/armoryops/armoryd/availability"
	"github.com/armoryops/armoryd/cache"
	"github.com/armoryops/armoryd/catalog"
	"github.com/armoryops/armoryd/config"
	dbadapter "github.com/armoryops/armoryd/db"
	"github.com/armoryops/armoryd/inventory"
	mw "github.com/armoryops/armoryd/middleware"
	"github.com/armoryops/armoryd/model"
	"github.com/armoryops/armoryd/scheduler"
	"github.com/armoryops/armoryd/staging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.JWTSecret == "" {
		log.Fatal("security.jwt_secret must be set")
	}
	if len(cfg.Security.AdminIPs) == 0 {
		logger.Warn("security.admin_ips is empty; admin endpoints accept any source address")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Catalog seed sync ----
	catalogLoader := catalog.NewLoader(cfg.Catalog.SeedDir, db, logger)
	if err := catalogLoader.Sync(context.Background()); err != nil {
		logger.Warn("catalog seed sync failed", zap.Error(err))
	}

	// ---- Services ----
	invSvc := inventory.NewService(db, logger)
	lookup, err := availability.New(cfg.Availability, db)
	if err != nil {
		log.Fatalf("availability: %v", err)
	}
	manager := staging.NewManager(lookup, invSvc, pubsub, cfg.Staging, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("staging_sweep", cfg.Staging.SweepInterval, func() {
		manager.SweepExpired()
	})
	sched.AddTicker("catalog_resync", cfg.Catalog.ResyncInterval, func() {
		if err := catalogLoader.Sync(context.Background()); err != nil {
			logger.Warn("catalog resync failed", zap.Error(err))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security)
	armoryH := apirest.NewArmoryHandler(db, invSvc, lookup)
	catalogH := apirest.NewCatalogHandler(db)
	stagingH := apirest.NewStagingHandler(db, manager, auditSvc)
	caseH := apirest.NewCaseHandler(db, auditSvc)
	adminH := apirest.NewAdminHandler(db, manager, sched, auditSvc, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		armoriesG := api.Group("/armories")
		armoriesG.Use(mw.Auth(cfg.Security, c))
		armoriesG.GET("", armoryH.List)
		armoriesG.POST("", mw.RequireRole(model.RoleAdmin), armoryH.Create)
		armoriesG.GET("/:id", armoryH.Get)
		armoriesG.GET("/:id/inventory", armoryH.Inventory)
		armoriesG.GET("/:id/availability", armoryH.Availability)
		armoriesG.POST("/:id/batches", stagingH.CreateBatch)

		catalogG := api.Group("/catalog")
		catalogG.Use(mw.Auth(cfg.Security, c))
		catalogG.GET("/weapons", catalogH.Weapons)
		catalogG.GET("/ammunition", catalogH.Ammunition)
		catalogG.GET("/equipment", catalogH.Equipment)

		batchesG := api.Group("/batches")
		batchesG.Use(mw.Auth(cfg.Security, c))
		batchesG.GET("/:id", stagingH.GetBatch)
		batchesG.POST("/:id/lines", stagingH.AddLine)
		batchesG.PATCH("/:id/lines/:line_id", stagingH.UpdateLine)
		batchesG.DELETE("/:id/lines/:line_id", stagingH.RemoveLine)
		batchesG.POST("/:id/commit",
			mw.RequireRole(model.RoleAdmin, model.RoleArmourer), stagingH.Commit)

		casesG := api.Group("/cases")
		casesG.Use(mw.Auth(cfg.Security, c))
		casesG.GET("", caseH.List)
		casesG.POST("", caseH.Create)
		casesG.GET("/:id", caseH.Get)
		casesG.PUT("/:id/status", caseH.UpdateStatus)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Security.AdminIPs))
		adminG.Use(mw.Auth(cfg.Security, c), mw.RequireRole(model.RoleAdmin))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/accounts", adminH.ListAccounts)
		adminG.PUT("/accounts/:id/role", adminH.SetRole)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)
	r.GET("/events", sseH.ServeSSE)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
