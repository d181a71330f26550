package handler

import (
	"io"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/gardenwatch/internal/api/respond"
	"github.com/albapepper/gardenwatch/internal/listener"
)

const maxFeedPayload = 256 << 10

// PostFeed accepts a raw feed payload. With a database the payload goes
// through pg_notify so every listener (this one included) sees it and it
// survives restarts; without one it is dispatched in process.
// @Summary Publish a feed payload
// @Tags feeds
// @Accept json
// @Param channel path string true "Feed channel" Enums(shop_snapshot, purchase_snapshot, tool_inventory, weather_changed)
// @Success 202
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /feeds/{channel} [post]
func (h *Handler) PostFeed(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	if !slices.Contains(listener.Channels, channel) {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_CHANNEL", "Unknown feed channel "+channel)
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFeedPayload))
	if err != nil || len(payload) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "A payload is required")
		return
	}

	if h.pool != nil && h.listening {
		if err := listener.Publish(r.Context(), h.pool.Pool, channel, string(payload)); err != nil {
			h.logger.Error("Failed to publish feed payload", "channel", channel, "error", err)
			respond.WriteError(w, http.StatusServiceUnavailable, "PUBLISH_FAILED", "Failed to publish payload")
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if h.feeds == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "NO_FEEDS", "Feed ingest is not configured")
		return
	}
	if err := h.feeds.Dispatch(channel, string(payload)); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Payload could not be decoded", err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
