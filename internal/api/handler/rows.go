package handler

import (
	"net/http"
	"strings"

	"github.com/albapepper/gardenwatch/internal/api/respond"
	"github.com/albapepper/gardenwatch/internal/cache"
	"github.com/albapepper/gardenwatch/internal/engine"
)

// RowsResponse is the body of GET /rows. Counts always describe the whole
// shop; Rows honour the filter.
type RowsResponse struct {
	Rows      []engine.Row  `json:"rows"`
	Counts    engine.Counts `json:"counts"`
	Signature string        `json:"signature"`
	Filter    engine.Filter `json:"filter"`
}

// GetRows returns the notifier rows for the items currently in the shop.
// @Summary Notifier rows
// @Description Returns one row per item in the current shop snapshot, merged with its alert preference. Rows keep shop order.
// @Tags shop
// @Produce json
// @Param type query string false "Section" Enums(Seed, Egg, Tool, Decor)
// @Param rarity query string false "Rarity, case-insensitive"
// @Success 200 {object} RowsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /rows [get]
func (h *Handler) GetRows(w http.ResponseWriter, r *http.Request) {
	section, ok := parseSectionParam(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_TYPE", "type must be one of Seed, Egg, Tool, Decor")
		return
	}
	f := engine.Filter{Type: section, Rarity: strings.TrimSpace(r.URL.Query().Get("rarity"))}

	key := cache.PrefixRows + string(f.Type) + ":" + strings.ToLower(f.Rarity)
	h.serveCached(w, r, key, cache.TTLLive, func() (any, error) {
		st := h.eng.Get(r.Context())
		return RowsResponse{
			Rows:      engine.FilterRows(st.Rows, f),
			Counts:    st.Counts,
			Signature: st.Signature,
			Filter:    f,
		}, nil
	})
}

// GetShop returns the latest raw shop snapshot.
// @Summary Shop snapshot
// @Description Returns the last shop snapshot the engine accepted.
// @Tags shop
// @Produce json
// @Success 200 {object} feed.Shop
// @Failure 404 {object} respond.ErrorResponse
// @Router /shop [get]
func (h *Handler) GetShop(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.eng.Shop(); !ok {
		respond.WriteError(w, http.StatusNotFound, "NO_SNAPSHOT", "No shop snapshot received yet")
		return
	}
	h.serveCached(w, r, cache.PrefixShop+"snapshot", cache.TTLLive, func() (any, error) {
		shop, _ := h.eng.Shop()
		return shop, nil
	})
}

// GetPurchases returns the latest raw purchase snapshot.
// @Summary Purchase snapshot
// @Description Returns the purchase counts of the current restock cycle.
// @Tags shop
// @Produce json
// @Success 200 {object} feed.Purchases
// @Failure 404 {object} respond.ErrorResponse
// @Router /purchases [get]
func (h *Handler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.eng.Purchases(); !ok {
		respond.WriteError(w, http.StatusNotFound, "NO_SNAPSHOT", "No purchase snapshot received yet")
		return
	}
	h.serveCached(w, r, cache.PrefixShop+"purchases", cache.TTLLive, func() (any, error) {
		buys, _ := h.eng.Purchases()
		return buys, nil
	})
}
