// Package api wires the HTTP router: middleware, docs, metrics and the
// versioned JSON endpoints over the notifier engine.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/gardenwatch/internal/api/handler"
	"github.com/albapepper/gardenwatch/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and
// routes. metrics may be nil.
func NewRouter(deps handler.Deps, cfg *config.Config, metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	deps.Config = cfg
	h := handler.New(deps)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Prometheus scrape endpoint
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Websocket stream, outside gzip: upgrades need the raw writer
		r.Get("/stream", h.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5)) // gzip

			// Catalog
			r.Get("/catalog/items", h.GetItems)
			r.Get("/catalog/weather", h.GetWeatherCatalog)
			r.Get("/catalog/weather/resolve", h.ResolveWeather)

			// Shop
			r.Get("/rows", h.GetRows)
			r.Get("/shop", h.GetShop)
			r.Get("/purchases", h.GetPurchases)

			// Weather
			r.Get("/weather", h.GetWeather)
			r.Put("/weather/{id}/notify", h.PutWeatherNotify)

			// Item preferences
			r.Get("/prefs/{id}", h.GetPref)
			r.Put("/prefs/{id}", h.PutPref)
			r.Delete("/prefs/{id}", h.DeletePref)

			// Audio rules
			r.Get("/rules", h.GetRules)
			r.Get("/rules/{id}", h.GetRule)
			r.Patch("/rules/{id}", h.PatchRule)
			r.Delete("/rules/{id}", h.DeleteRule)
			r.Get("/context-defaults/{context}", h.GetContextDefaults)
			r.Put("/context-defaults/{context}", h.PutContextDefaults)

			// Feed ingest
			r.Post("/feeds/{channel}", h.PostFeed)

			// Audio
			r.Get("/sounds", h.GetSounds)
			r.Delete("/alerts", h.StopAllAlerts)
			r.Delete("/alerts/{id}", h.StopAlert)
		})
	})

	return r
}
