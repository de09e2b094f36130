package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	authentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/auth/entity"
	authhandler "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/auth/handler"
	authrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/auth/repository"
	authservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/auth/service"
	catalogentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/entity"
	cataloghandler "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/handler"
	catalogrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/repository"
	catalogservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/config"
	dashboardhandler "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/dashboard/handler"
	dashboardservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/dashboard/service"
	inventity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/entity"
	invhandler "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/handler"
	invrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/repository"
	invservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/middleware"
	ordersentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	ordershandler "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/handler"
	ordersrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	ordersservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/sse"
	supplyentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/entity"
	supplyhandler "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/handler"
	supplyrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/repository"
	supplyservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type appHandlers struct {
	Auth      *authhandler.AuthHandler
	Orders    *ordershandler.Handlers
	Supply    *supplyhandler.Handlers
	Inventory *invhandler.InventoryHandler
	Catalog   *cataloghandler.CatalogHandler
	Dashboard *dashboardhandler.DashboardHandler
	SSE       *sse.Handler
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting base-mayorista service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&authentity.User{},
		&ordersentity.Order{},
		&ordersentity.OrderItem{},
		&ordersentity.PackageRecord{},
		&ordersentity.Incident{},
		&ordersentity.TimelineEvent{},
		&supplyentity.Supplier{},
		&supplyentity.SupplierOperation{},
		&inventity.InventoryItem{},
		&inventity.InventoryMovement{},
		&catalogentity.CatalogListing{},
		&catalogentity.Customer{},
		&catalogentity.Route{},
		&catalogentity.Locality{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("MinIO unavailable, evidence upload disabled", zap.Error(err))
			minioClient = nil
		}
	}

	orderRepos := ordersrepo.NewRepositories(db)
	supplyRepos := supplyrepo.NewRepositories(db)
	inventoryRepo := invrepo.NewInventoryRepository(db)
	userRepo := authrepo.NewUserRepository(db)
	catalogRepo := catalogrepo.NewCatalogRepository(db)

	hub := sse.NewHub()

	authSvc := authservice.NewAuthService(userRepo, rdb, cfg)
	orderSvc := ordersservice.NewOrderService(orderRepos, db, zapLogger, hub)
	incidentSvc := ordersservice.NewIncidentService(orderRepos, zapLogger, hub, minioClient, cfg.MinIO.Bucket, cfg.MinIO.PublicURL)
	inventorySvc := invservice.NewInventoryService(inventoryRepo, zapLogger)
	supplierSvc := supplyservice.NewSupplierService(supplyRepos.Supplier)
	reconcilerSvc := supplyservice.NewReconcilerService(supplyRepos, orderRepos, inventorySvc, zapLogger)
	catalogSvc := catalogservice.NewCatalogService(catalogRepo)
	dashboardSvc := dashboardservice.NewDashboardService(db, rdb, zapLogger)

	if err := authSvc.EnsureAdminUser(context.Background(), cfg.Admin.Username, cfg.Admin.Password); err != nil {
		zapLogger.Warn("Admin seed failed", zap.Error(err))
	}

	handlers := &appHandlers{
		Auth:      authhandler.NewAuthHandler(authSvc),
		Orders:    ordershandler.NewHandlers(orderSvc, incidentSvc),
		Supply:    supplyhandler.NewHandlers(supplierSvc, reconcilerSvc),
		Inventory: invhandler.NewInventoryHandler(inventorySvc),
		Catalog:   cataloghandler.NewCatalogHandler(catalogSvc),
		Dashboard: dashboardhandler.NewDashboardHandler(dashboardSvc),
		SSE:       sse.NewHandler(hub),
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *appHandlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// SSE stream authenticates through the query param token.
		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.POST("/users", middleware.RequireRole("admin"), h.Auth.CreateUser)

			orders := authorized.Group("/orders")
			{
				orders.GET("", h.Orders.Order.ListOrders)
				orders.POST("", h.Orders.Order.CreateOrder)
				orders.GET("/:id", h.Orders.Order.GetOrder)
				orders.PUT("/:id/status", h.Orders.Order.UpdateStatus)
				orders.PUT("/:id/items", h.Orders.Order.UpdateItems)
				orders.PUT("/:id/items/:itemId/confirmation", h.Orders.Order.UpdateItemConfirmation)
				orders.PUT("/:id/planned-packages", h.Orders.Order.SetPlannedPackages)
				orders.POST("/:id/packages", h.Orders.Order.AssemblePackage)
				orders.PUT("/:id/packages/:packageId/state", h.Orders.Order.UpdatePackageState)
				orders.POST("/:id/delivery-payment", h.Orders.Order.RegisterDeliveryPayment)
				orders.GET("/:id/events", h.Orders.Order.ListEvents)
				orders.GET("/:id/primary-action", h.Orders.Order.GetPrimaryAction)
				orders.GET("/:id/checklist", h.Orders.Order.GetActionChecklist)
				orders.GET("/:id/fulfillment", h.Orders.Order.GetFulfillmentSummary)

				orders.GET("/:id/incidents", h.Orders.Incident.ListIncidents)
				orders.POST("/:id/incidents", h.Orders.Incident.CreateIncident)
				orders.PUT("/:id/incidents/:incidentId", h.Orders.Incident.UpdateIncident)
				orders.POST("/:id/incidents/:incidentId/resolve", h.Orders.Incident.ResolveIncident)
				orders.POST("/:id/incidents/:incidentId/evidence", h.Orders.Incident.UploadEvidence)

				orders.GET("/:id/supply-operations", h.Supply.Operation.ListByOrder)
				orders.POST("/:id/supply-operations", h.Supply.Operation.UpsertFromOrder)
			}

			suppliers := authorized.Group("/suppliers")
			{
				suppliers.GET("", h.Supply.Supplier.ListSuppliers)
				suppliers.POST("", h.Supply.Supplier.CreateSupplier)
				suppliers.GET("/:id", h.Supply.Supplier.GetSupplier)
				suppliers.PUT("/:id", h.Supply.Supplier.UpdateSupplier)
			}

			supplyOps := authorized.Group("/supply-operations")
			{
				supplyOps.GET("", h.Supply.Operation.ListOperations)
				supplyOps.GET("/export", h.Supply.Operation.ExportWorklist)
				supplyOps.GET("/:id", h.Supply.Operation.GetOperation)
				supplyOps.PUT("/:id/status", h.Supply.Operation.AdvanceStatus)
				supplyOps.POST("/:id/receive", h.Supply.Operation.ReceiveAndAllocate)
			}

			inventory := authorized.Group("/inventory")
			{
				inventory.GET("", h.Inventory.ListItems)
				inventory.POST("", h.Inventory.UpsertItem)
				inventory.GET("/movements", h.Inventory.ListMovements)
				inventory.POST("/inbound", h.Inventory.ReceiveInbound)
				inventory.POST("/reserve", h.Inventory.ReserveStock)
				inventory.POST("/release", h.Inventory.ReleaseStock)
				inventory.GET("/:id", h.Inventory.GetItem)
				inventory.POST("/:id/adjust", middleware.RequirePermission("inventory:adjust"), h.Inventory.Adjust)
			}

			catalog := authorized.Group("/catalog")
			{
				catalog.GET("/listings", h.Catalog.ListListings)
				catalog.POST("/listings", h.Catalog.UpsertListing)
				catalog.GET("/listings/:id", h.Catalog.GetListing)
				catalog.PUT("/listings/:id/active", h.Catalog.SetListingActive)

				catalog.GET("/customers", h.Catalog.ListCustomers)
				catalog.POST("/customers", h.Catalog.UpsertCustomer)
				catalog.GET("/customers/:id", h.Catalog.GetCustomer)

				catalog.GET("/routes", h.Catalog.ListRoutes)
				catalog.POST("/routes", h.Catalog.UpsertRoute)

				catalog.GET("/localities", h.Catalog.ListLocalities)
				catalog.POST("/localities", h.Catalog.UpsertLocality)
			}

			authorized.GET("/dashboard/summary", h.Dashboard.GetSummary)
		}
	}
}
