// Package handler provides HTTP handlers for all API endpoints. Read
// handlers render engine state to JSON once and serve it from the ETag cache
// until the state changes; write handlers go straight to the engine.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/gardenwatch/internal/api/respond"
	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/cache"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/config"
	"github.com/albapepper/gardenwatch/internal/db"
	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/listener"
)

// Deps are the collaborators shared by all handlers. Pool may be nil when
// no database is configured. Listening reports whether a LISTEN session
// feeds Feeds from the pool.
type Deps struct {
	Engine    *engine.Engine
	Player    *audio.Player
	Catalog   *catalog.Catalog
	Cache     *cache.Cache
	Pool      *db.Pool
	Feeds     *listener.Feeds
	Listening bool
	Config    *config.Config
	Logger    *slog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	eng       *engine.Engine
	player    *audio.Player
	cat       *catalog.Catalog
	cache     *cache.Cache
	pool      *db.Pool
	feeds     *listener.Feeds
	listening bool
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	c := d.Cache
	if c == nil {
		c = cache.New(false)
	}
	return &Handler{
		eng:       d.Engine,
		player:    d.Player,
		cat:       d.Catalog,
		cache:     c,
		pool:      d.Pool,
		feeds:     d.Feeds,
		listening: d.Listening,
		cfg:       d.Config,
		logger:    logger,
		now:       now,
	}
}

// serveCached answers from the cache when it holds key, otherwise renders
// build's result, stores it and answers with it. If-None-Match is honoured
// either way.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, build func() (any, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := build()
	if err != nil {
		h.logger.Error("Failed to build response", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to build response")
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to encode response")
		return
	}

	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// pathID returns the unescaped {id} URL parameter.
func pathID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and the state channels exposed on the stream.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Gardenwatch API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"stream":  "/api/v1/stream",
		"channels": []string{
			StreamRows, StreamShops, StreamPurchases, StreamWeather, StreamRules, StreamAlert,
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status, engine state and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"engine":    h.eng.Started(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity. Reports "disabled" when no database is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "disabled",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": h.now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
