package handler

import (
	"net/http"

	"github.com/albapepper/gardenwatch/internal/api/respond"
	"github.com/albapepper/gardenwatch/internal/cache"
	"github.com/albapepper/gardenwatch/internal/weather"
)

// WeatherRow is a weather row with its probability estimate.
type WeatherRow struct {
	weather.Row
	Probability weather.Display `json:"probability"`
}

// WeatherResponse is the body of GET /weather.
type WeatherResponse struct {
	CurrentID string       `json:"currentId,omitempty"`
	Raw       string       `json:"raw,omitempty"`
	Rows      []WeatherRow `json:"rows"`
}

// NotifyRequest toggles weather alerts.
type NotifyRequest struct {
	Enabled *bool `json:"enabled"`
}

// GetWeather returns every weather row with its probability estimate.
// @Summary Weather rows
// @Description Returns one row per weather definition with alert preference, last sighting and an estimate of how likely it is to be next.
// @Tags weather
// @Produce json
// @Success 200 {object} WeatherResponse
// @Router /weather [get]
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.PrefixWeather+"rows", cache.TTLLive, func() (any, error) {
		st := h.eng.WeatherState()
		now := h.now()
		rows := make([]WeatherRow, 0, len(st.Rows))
		for _, row := range st.Rows {
			rows = append(rows, WeatherRow{Row: row, Probability: weather.ComputeProbabilityDisplay(row, now)})
		}
		return WeatherResponse{CurrentID: st.CurrentID, Raw: st.Raw, Rows: rows}, nil
	})
}

// PutWeatherNotify enables or disables alerts for one weather condition.
// @Summary Toggle weather alerts
// @Tags weather
// @Accept json
// @Produce json
// @Param id path string true "Weather id or key"
// @Param body body NotifyRequest true "Toggle"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /weather/{id}/notify [put]
func (h *Handler) PutWeatherNotify(w http.ResponseWriter, r *http.Request) {
	def, ok := h.cat.WeatherByID(pathID(r))
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "UNKNOWN_WEATHER", "No weather with id "+pathID(r))
		return
	}
	var req NotifyRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	if req.Enabled == nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "enabled is required")
		return
	}

	h.eng.SetWeatherNotify(def.ID, *req.Enabled)
	h.cache.Invalidate(cache.PrefixWeather)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"id":            def.ID,
		"notifyEnabled": h.eng.WeatherNotify(def.ID),
	})
}
