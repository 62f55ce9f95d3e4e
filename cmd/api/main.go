package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"badboys-inventory-api/internal/cache"
	"badboys-inventory-api/internal/catalog"
	"badboys-inventory-api/internal/config"
	"badboys-inventory-api/internal/handler"
	"badboys-inventory-api/internal/inventory"
	"badboys-inventory-api/internal/notify"
	"badboys-inventory-api/internal/repository"
	"badboys-inventory-api/internal/router"
	"badboys-inventory-api/internal/service"
	"badboys-inventory-api/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Badboys Inventory API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Item-definition catalog
	cat, err := catalog.LoadFile(cfg.App.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Relational store
	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	// Cache backend
	var cacheBackend cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, running without cache: %v", err)
			cacheBackend = cache.NewNoop()
		} else {
			cacheBackend = redisCache
			log.Println("Redis cache initialized")
		}
	case "none":
		cacheBackend = cache.NewNoop()
	default: // memory
		cacheBackend = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}
	defer cacheBackend.Close()

	gateway := cache.NewInventoryGateway(cacheBackend, cfg.Cache.TTL)

	// Repositories
	userRepo := repository.NewSQLUserRepository()
	ledgerRepo := repository.NewSQLLedgerRepository()
	listingRepo := repository.NewSQLListingRepository()
	economyRepo := repository.NewSQLEconomyRepository()

	// Side-effect infrastructure
	outbox := service.NewOutbox(0)
	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout)

	limits := inventory.Limits{
		MaxItems:            cfg.Economy.InventoryMaxItems,
		StorageUnitMaxItems: cfg.Economy.StorageUnitMaxItems,
	}

	// Services
	identityService := service.NewIdentityService(st, ledgerRepo)
	inventoryService := service.NewInventoryService(st, userRepo, economyRepo, gateway)
	marketplaceService := service.NewMarketplaceService(st, userRepo, listingRepo, economyRepo, identityService, cat, gateway, outbox)
	shopService := service.NewShopService(st, userRepo, economyRepo, ledgerRepo, identityService, cat, gateway, outbox, notifier, limits, nil)
	tradeUpService := service.NewTradeUpService(st, userRepo, identityService, cat, gateway, outbox, limits, nil)

	// Expired-listing sweeper
	sweeper := service.NewSweeper(marketplaceService, cfg.Economy.SweepInterval)
	sweeper.Start()

	// Handlers
	healthHandler := handler.New(st, cfg.App.Version)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, identityService, tradeUpService)
	listingTTL := time.Duration(cfg.Economy.ListingTTLDays) * 24 * time.Hour
	marketHandler := handler.NewMarketHandler(marketplaceService, listingTTL)
	shopHandler := handler.NewShopHandler(shopService)

	// Router
	r := router.New(router.Config{
		Handler:          healthHandler,
		InventoryHandler: inventoryHandler,
		MarketHandler:    marketHandler,
		ShopHandler:      shopHandler,
	})

	// HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	sweeper.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Drain post-commit tasks before the store closes under them.
	outbox.Close()

	log.Println("Server stopped")
}
