package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/merchstock/backend/internal/application/catalog"
	ledgerapp "github.com/merchstock/backend/internal/application/ledger"
	logisticsapp "github.com/merchstock/backend/internal/application/logistics"
	tradeapp "github.com/merchstock/backend/internal/application/trade"
	"github.com/merchstock/backend/internal/domain/catalog"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/merchstock/backend/internal/infrastructure/cache"
	"github.com/merchstock/backend/internal/infrastructure/config"
	"github.com/merchstock/backend/internal/infrastructure/event"
	"github.com/merchstock/backend/internal/infrastructure/logger"
	"github.com/merchstock/backend/internal/infrastructure/persistence"
	"github.com/merchstock/backend/internal/infrastructure/strategy/allocation"
	"github.com/merchstock/backend/internal/interfaces/http/handler"
	"github.com/merchstock/backend/internal/interfaces/http/middleware"
	"github.com/merchstock/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const appVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting merchstock backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Optional Redis-backed stock snapshot cache
	var snapshotCache ledgerapp.SnapshotCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisStockCache(&cfg.Redis, cfg.Cache.SnapshotTTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		snapshotCache = redisCache
		log.Info("Stock snapshot cache enabled",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Cache.SnapshotTTL),
		)
	}

	// Domain event bus; reorder alerts are consumed here for now
	bus := event.NewInMemoryBus(log)
	bus.Subscribe(catalog.EventTypeProductBelowReorderLevel, func(_ context.Context, e shared.DomainEvent) {
		log.Warn("Product fell below reorder level",
			zap.String("product_id", e.AggregateID().String()),
		)
	})

	// Application services share one transaction scope
	scope := persistence.NewGormTransactionScope(db.DB)
	productService := catalogapp.NewProductService(scope, log)
	ledgerService := ledgerapp.NewStockLedgerService(scope, bus, snapshotCache, log)
	orderService := tradeapp.NewOrderService(scope, ledgerService, log)
	purchaseOrderService := tradeapp.NewPurchaseOrderService(scope, log)
	shipmentService := logisticsapp.NewShipmentService(scope, ledgerService, allocation.NewAllocator(), log)

	// HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	stockHandler := handler.NewStockHandler(ledgerService)
	orderHandler := handler.NewOrderHandler(orderService)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderService)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, appVersion)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check stays outside API versioning
	engine.GET("/health", healthHandler(db))

	// Catalog domain (products)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/alerts/below-reorder", productHandler.ListBelowReorderLevel)
	catalogRoutes.GET("/products/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)

	// Stock ledger domain (movements, receiving, adjustments, snapshots)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/movements", stockHandler.PostMovement)
	ledgerRoutes.GET("/movements", stockHandler.ListMovements)
	ledgerRoutes.GET("/movements/:id", stockHandler.GetMovement)
	ledgerRoutes.DELETE("/movements/:id", stockHandler.DeleteMovement)
	ledgerRoutes.POST("/receive", stockHandler.BulkReceive)
	ledgerRoutes.POST("/adjustments", stockHandler.AdjustStock)
	ledgerRoutes.GET("/products/:product_id/snapshot", stockHandler.GetSnapshot)

	// Trade domain (sales orders, purchase orders)
	tradeRoutes := router.NewDomainGroup("trade", "/trade")
	tradeRoutes.POST("/orders", orderHandler.Create)
	tradeRoutes.GET("/orders", orderHandler.List)
	tradeRoutes.GET("/orders/stats/summary", orderHandler.StatusSummary)
	tradeRoutes.GET("/orders/:id", orderHandler.GetByID)
	tradeRoutes.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	tradeRoutes.PUT("/orders/:id/items", orderHandler.ReplaceItems)
	tradeRoutes.POST("/orders/:id/payments", orderHandler.RecordPayment)
	tradeRoutes.DELETE("/orders/:id", orderHandler.Delete)
	tradeRoutes.POST("/purchase-orders", purchaseOrderHandler.Create)
	tradeRoutes.GET("/purchase-orders", purchaseOrderHandler.List)
	tradeRoutes.GET("/purchase-orders/:id", purchaseOrderHandler.GetByID)
	tradeRoutes.PUT("/purchase-orders/:id/status", purchaseOrderHandler.UpdateStatus)
	tradeRoutes.PUT("/purchase-orders/:id/items", purchaseOrderHandler.ReplaceItems)
	tradeRoutes.POST("/purchase-orders/:id/payments", purchaseOrderHandler.RecordPayment)
	tradeRoutes.DELETE("/purchase-orders/:id", purchaseOrderHandler.Delete)

	// Logistics domain (inbound shipments)
	logisticsRoutes := router.NewDomainGroup("logistics", "/logistics")
	logisticsRoutes.POST("/shipments", shipmentHandler.Create)
	logisticsRoutes.GET("/shipments", shipmentHandler.List)
	logisticsRoutes.GET("/shipments/:id", shipmentHandler.GetByID)
	logisticsRoutes.PUT("/shipments/:id/charges", shipmentHandler.UpdateCharges)
	logisticsRoutes.PUT("/shipments/:id/status", shipmentHandler.UpdateStatus)
	logisticsRoutes.POST("/shipments/:id/payments", shipmentHandler.RecordPayment)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(catalogRoutes).
		Register(ledgerRoutes).
		Register(tradeRoutes).
		Register(logisticsRoutes).
		Register(systemRoutes).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports process and database liveness
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
