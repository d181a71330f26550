package handler

import (
	"net/http"
	"strings"

	"github.com/albapepper/gardenwatch/internal/api/respond"
	"github.com/albapepper/gardenwatch/internal/cache"
	"github.com/albapepper/gardenwatch/internal/catalog"
)

// GetItems returns the static item catalog.
// @Summary Item catalog
// @Description Returns every known item with its section, display name and rarity. Optional filters narrow by section or rarity.
// @Tags catalog
// @Produce json
// @Param type query string false "Section" Enums(Seed, Egg, Tool, Decor)
// @Param rarity query string false "Rarity, case-insensitive"
// @Success 200 {array} catalog.Item
// @Failure 400 {object} respond.ErrorResponse
// @Router /catalog/items [get]
func (h *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	section, ok := parseSectionParam(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_TYPE", "type must be one of Seed, Egg, Tool, Decor")
		return
	}
	rarity := strings.TrimSpace(r.URL.Query().Get("rarity"))

	key := cache.PrefixCatalog + "items:" + string(section) + ":" + strings.ToLower(rarity)
	h.serveCached(w, r, key, cache.TTLCatalog, func() (any, error) {
		out := make([]catalog.Item, 0)
		for _, it := range h.cat.Items() {
			if section != "" && it.Type != section {
				continue
			}
			if rarity != "" && !strings.EqualFold(it.Rarity, rarity) {
				continue
			}
			out = append(out, it)
		}
		return out, nil
	})
}

// GetWeatherCatalog returns the static weather definitions.
// @Summary Weather catalog
// @Description Returns every weather definition with its cycle metadata and mutations.
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.WeatherDefinition
// @Router /catalog/weather [get]
func (h *Handler) GetWeatherCatalog(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.PrefixCatalog+"weather", cache.TTLCatalog, func() (any, error) {
		return h.cat.Weather(), nil
	})
}

// ResolveWeather maps a raw feed value onto a weather definition.
// @Summary Resolve a raw weather value
// @Description Resolves a raw feed value by id, display name or atom. Unresolved values return 404 with a spelling suggestion when one is close enough.
// @Tags catalog
// @Produce json
// @Param raw query string true "Raw weather value"
// @Success 200 {object} catalog.WeatherDefinition
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /catalog/weather/resolve [get]
func (h *Handler) ResolveWeather(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	if strings.TrimSpace(raw) == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_RAW", "raw query parameter is required")
		return
	}
	def, ok := h.cat.ResolveWeather(raw)
	if !ok {
		detail := ""
		if s, found := h.cat.SuggestWeather(raw); found {
			detail = "did you mean " + s + "?"
		}
		respond.WriteErrorDetail(w, http.StatusNotFound, "UNKNOWN_WEATHER", "No weather matches "+raw, detail)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, def)
}

// GetSounds lists the selectable alert sounds and the loops playing now.
// @Summary Alert sounds
// @Description Returns the sounds rules may select and the ids whose alert loop is running.
// @Tags audio
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sounds [get]
func (h *Handler) GetSounds(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"sounds": h.player.Sounds(),
		"active": h.player.ActiveLoops(),
	})
}

// StopAlert stops the alert loop for one id.
// @Summary Stop an alert loop
// @Tags audio
// @Param id path string true "Item or weather id"
// @Success 204
// @Router /alerts/{id} [delete]
func (h *Handler) StopAlert(w http.ResponseWriter, r *http.Request) {
	h.player.StopLoop(pathID(r))
	respond.WriteNoContent(w)
}

// StopAllAlerts stops every alert loop.
// @Summary Stop every alert loop
// @Tags audio
// @Success 204
// @Router /alerts [delete]
func (h *Handler) StopAllAlerts(w http.ResponseWriter, r *http.Request) {
	h.player.StopAll()
	respond.WriteNoContent(w)
}

// parseSectionParam reads the optional type query parameter. An empty value
// matches every section.
func parseSectionParam(r *http.Request) (catalog.Section, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" {
		return "", true
	}
	return catalog.ParseSection(v)
}
