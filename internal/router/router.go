package router

import (
	"badboys-inventory-api/internal/handler"
	"badboys-inventory-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	InventoryHandler *handler.InventoryHandler
	MarketHandler    *handler.MarketHandler
	ShopHandler      *handler.ShopHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.InventoryHandler != nil {
			r.Post("/users/{user_id}/connect", cfg.InventoryHandler.Connect)
			r.Get("/users/{user_id}/balance", cfg.InventoryHandler.GetBalance)
			r.Get("/users/{user_id}/transactions", cfg.InventoryHandler.GetTransactions)

			r.Route("/inventory/{user_id}", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.GetInventory)
				r.Post("/tradeup", cfg.InventoryHandler.TradeUp)
				if cfg.ShopHandler != nil {
					r.Post("/unlock", cfg.ShopHandler.Unlock)
				}
			})

			r.Route("/items/{item_uuid}", func(r chi.Router) {
				r.Get("/", cfg.InventoryHandler.GetItemIdentity)
				r.Get("/history", cfg.InventoryHandler.GetItemHistory)
			})
		}

		if cfg.MarketHandler != nil {
			r.Route("/market", func(r chi.Router) {
				r.Get("/listings", cfg.MarketHandler.BrowseListings)
				r.Post("/listings", cfg.MarketHandler.CreateListing)
				r.Get("/listings/{listing_id}", cfg.MarketHandler.GetListing)
				r.Post("/listings/{listing_id}/cancel", cfg.MarketHandler.CancelListing)
				r.Post("/listings/{listing_id}/purchase", cfg.MarketHandler.PurchaseListing)
				r.Get("/items/{item_id}/prices", cfg.MarketHandler.PriceHistory)
			})
		}

		if cfg.ShopHandler != nil {
			r.Route("/shop", func(r chi.Router) {
				r.Get("/items", cfg.ShopHandler.ListItems)
				r.Post("/purchase", cfg.ShopHandler.Purchase)
			})
		}
	})

	return r
}
