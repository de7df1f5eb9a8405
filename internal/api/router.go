package api

import (
	"net/http"

	"github.com/damilare/otc-exchange/internal/api/handler"
	"github.com/damilare/otc-exchange/internal/api/middleware"
	"github.com/damilare/otc-exchange/internal/api/spec"
	"github.com/damilare/otc-exchange/internal/config"
	"github.com/damilare/otc-exchange/internal/idempotency"
	"github.com/damilare/otc-exchange/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Deps carries the wired services the router hands to handlers.
type Deps struct {
	DB          *pgxpool.Pool
	Redis       redis.Cmdable
	Catalog     *service.CatalogService
	Pricing     *service.PricingService
	Quotes      *service.QuoteService
	Wallets     *service.WalletResolver
	Orders      *service.OrderService
	Stats       *service.StatsService
	Feed        *service.PriceFeed
	Idempotency *idempotency.Store
}

type Router struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   Deps
}

func NewRouter(cfg *config.Config, logger *zap.Logger, deps Deps) *Router {
	return &Router{cfg: cfg, logger: logger, deps: deps}
}

// Routes assembles the full HTTP surface.
func (api *Router) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	healthHandler := handler.NewHealthHandler(api.deps.DB, api.deps.Redis)
	assetHandler := handler.NewAssetHandler(&handler.CatalogDeps{
		Catalog: api.deps.Catalog,
		Wallets: api.deps.Wallets,
		Pricing: api.deps.Pricing,
	})
	quoteHandler := handler.NewQuoteHandler(api.deps.Quotes)
	orderHandler := handler.NewOrderHandler(api.deps.Orders)
	adminHandler := handler.NewAdminHandler(api.deps.Catalog, api.deps.Orders, api.deps.Stats)
	priceStream := handler.NewPriceStreamHandler(api.deps.Feed)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))

		r.Get("/healthz", healthHandler.Live)
		r.Get("/readyz", healthHandler.Ready)

		r.Get("/v1/assets", assetHandler.ListAssets)
		r.Get("/v1/assets/{symbol}", assetHandler.GetAsset)
		r.Get("/v1/assets/{symbol}/networks", assetHandler.ListNetworks)
		r.Get("/v1/assets/{symbol}/wallet", assetHandler.GetWallet)
		r.Get("/v1/banks", assetHandler.ListBankAccounts)
		r.Post("/v1/quotes", quoteHandler.CreateQuote)
	})

	r.Get("/ws/prices", priceStream.Stream)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.With(middleware.IdempotencyMiddleware(api.deps.Idempotency, api.logger)).
			Post("/v1/orders", orderHandler.CreateOrder)
		r.Get("/v1/orders", orderHandler.ListOrders)
		r.Get("/v1/orders/{id}", orderHandler.GetOrder)
		r.Post("/v1/orders/{id}/proof", orderHandler.AttachProof)
		r.Post("/v1/orders/{id}/cancel", orderHandler.CancelOrder)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.RequireRole("admin"))
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		r.Route("/v1/admin", func(r chi.Router) {
			r.Get("/assets", adminHandler.ListAllAssets)
			r.Post("/coins", adminHandler.UpsertCoin)
			r.Post("/tokens", adminHandler.UpsertToken)
			r.Delete("/assets/{symbol}", adminHandler.DeleteAsset)

			r.Get("/banks", adminHandler.ListBankAccounts)
			r.Post("/banks", adminHandler.UpsertBankAccount)
			r.Delete("/banks/{id}", adminHandler.DeleteBankAccount)

			r.Get("/wallets", adminHandler.ListWallets)
			r.Post("/wallets", adminHandler.UpsertWallet)
			r.Delete("/wallets/{id}", adminHandler.DeleteWallet)

			r.Get("/orders", adminHandler.ListAllOrders)
			r.Post("/orders/{id}/resolve", adminHandler.ResolveOrder)

			r.Get("/stats", adminHandler.Stats)
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID", "Idempotency-Replayed"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler(r)
}
