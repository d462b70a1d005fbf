// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/domain/auth"
	"github.com/your-org/bakery-storefront/internal/domain/cart"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
	"github.com/your-org/bakery-storefront/internal/domain/chat"
	"github.com/your-org/bakery-storefront/internal/domain/checkout"
	"github.com/your-org/bakery-storefront/internal/domain/journal"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/domain/payment"
	"github.com/your-org/bakery-storefront/internal/domain/review"
	"github.com/your-org/bakery-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/bakery-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/bakery-storefront/internal/interfaces/http"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/device"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/routes"
	"github.com/your-org/bakery-storefront/internal/pkg/logger"
	"github.com/your-org/bakery-storefront/internal/pkg/pdf"
	"github.com/your-org/bakery-storefront/internal/pkg/telemetry"
	"github.com/your-org/bakery-storefront/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	appLogger := logger.New(cfg)

	shutdownTracing, err := telemetry.InitTracing(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// The checkout journal is optional
	var (
		gormDB   *gorm.DB
		runStore journal.Journal = journal.Nop{}
	)
	if cfg.JournalEnabled() {
		db, err := postgres.NewConnection(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		migration := postgres.NewMigration(db.GetDB())
		if err := migration.RunAutoMigrations(); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.Printf("Warning: Index creation failed: %v", err)
		}

		gormDB = db.GetDB()
		runStore = journal.NewRepository(gormDB)
	} else {
		log.Println("ℹ️  Checkout journal disabled (DB_HOST not set)")
	}

	// Remote API and domain services
	client := api.NewClient(cfg, appLogger)
	sessions := session.NewManager(session.NewRedisStore(redisClient, cfg.Session.TTL), appLogger)

	orders := order.NewService(client, appLogger)
	catalogService := catalog.NewService(client, catalog.NewRedisCache(redisClient, cfg.Catalog.CacheTTL), appLogger)
	chatService := chat.NewService(client)

	services := &routes.Services{
		Auth:     auth.NewService(client, sessions, appLogger),
		Catalog:  catalogService,
		Orders:   orders,
		Checkout: checkout.NewService(orders, catalogService, cart.NewLines(client), runStore, cfg.Checkout.Compensate, appLogger),
		Payments: payment.NewService(client, orders, payment.NewGateway(cfg.Gateway), payment.NewRegistry(), appLogger),
		Reviews:  review.NewService(client, appLogger),
		PDF:      pdf.NewService(cfg),
	}

	// Background polling stops with this context
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	devices := device.NewRegistry(sessions, client, orders, chatService, cfg.Chat, appLogger)
	devices.SetBaseContext(baseCtx)
	devices.StartEviction(baseCtx, cfg.Session.IdleTTL)

	log.Println("✅ All systems operational!")

	// Create and start HTTP server
	server := http.NewServer(cfg, gormDB, redisClient.Redis, devices, services, middleware.NewRedisLocker(redisClient.Redis), appLogger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")
	cancelBase()

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	if err := shutdownTracing(ctx); err != nil {
		log.Printf("Failed to flush traces: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}
