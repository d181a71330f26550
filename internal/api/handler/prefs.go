package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/gardenwatch/internal/api/respond"
	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/cache"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/prefs"
)

// PrefResponse is the effective preference of one item.
type PrefResponse struct {
	ID     string `json:"id"`
	Popup  bool   `json:"popup"`
	Capped bool   `json:"capped"`
}

// PrefRequest sets item flags.
type PrefRequest struct {
	Popup *bool `json:"popup"`
}

// RuleResponse is one stored audio rule.
type RuleResponse struct {
	ID   string     `json:"id"`
	Rule prefs.Rule `json:"rule"`
}

// --------------------------------------------------------------------------
// Item preferences
// --------------------------------------------------------------------------

// GetPref returns the effective preference of an item.
// @Summary Item preference
// @Description A capped tool always reads as disabled.
// @Tags prefs
// @Produce json
// @Param id path string true "Item id, e.g. Seed:Carrot"
// @Success 200 {object} PrefResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /prefs/{id} [get]
func (h *Handler) GetPref(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.prefResponse(id))
}

// PutPref stores the flags of an item.
// @Summary Set item preference
// @Description Enabling the popup of a capped tool is ignored; the response carries the effective value.
// @Tags prefs
// @Accept json
// @Produce json
// @Param id path string true "Item id"
// @Param body body PrefRequest true "Flags"
// @Success 200 {object} PrefResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /prefs/{id} [put]
func (h *Handler) PutPref(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	if _, known := h.cat.Item(id); !known {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Unknown item "+id)
		return
	}
	var req PrefRequest
	if err := respond.DecodeJSON(w, r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	if req.Popup == nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "popup is required")
		return
	}

	h.eng.SetPopup(id, *req.Popup)
	h.cache.Invalidate(cache.PrefixRows)
	respond.WriteJSONObject(w, http.StatusOK, h.prefResponse(id))
}

// DeletePref clears every stored flag of an item.
// @Summary Clear item preference
// @Tags prefs
// @Param id path string true "Item id"
// @Success 204
// @Failure 400 {object} respond.ErrorResponse
// @Router /prefs/{id} [delete]
func (h *Handler) DeletePref(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	h.eng.ClearPrefs(id)
	h.cache.Invalidate(cache.PrefixRows)
	respond.WriteNoContent(w)
}

func (h *Handler) itemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := pathID(r)
	if _, _, ok := catalog.SplitID(id); !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id must look like Section:rawId")
		return "", false
	}
	return id, true
}

func (h *Handler) prefResponse(id string) PrefResponse {
	return PrefResponse{ID: id, Popup: h.eng.Pref(id).Popup, Capped: h.eng.IsIDCapped(id)}
}

// --------------------------------------------------------------------------
// Rules
// --------------------------------------------------------------------------

// GetRules returns every stored audio rule.
// @Summary Audio rules
// @Tags rules
// @Produce json
// @Success 200 {object} map[string]prefs.Rule
// @Router /rules [get]
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.PrefixPrefs+"rules", cache.TTLPrefs, func() (any, error) {
		return h.eng.AllRules(), nil
	})
}

// GetRule returns the audio rule of one id.
// @Summary Audio rule
// @Tags rules
// @Produce json
// @Param id path string true "Item or weather id"
// @Success 200 {object} RuleResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /rules/{id} [get]
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ruleID(w, r)
	if !ok {
		return
	}
	rule, found := h.eng.Rule(id)
	if !found {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No rule for "+id)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, RuleResponse{ID: id, Rule: rule})
}

// PatchRule merges a partial rule. A field set to null, "" or an invalid
// value is removed; absent fields are kept.
// @Summary Update audio rule
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Item or weather id"
// @Param body body prefs.RulePatch true "Partial rule"
// @Success 200 {object} RuleResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /rules/{id} [patch]
func (h *Handler) PatchRule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ruleID(w, r)
	if !ok {
		return
	}
	var patch prefs.RulePatch
	if err := respond.DecodeJSON(w, r, &patch); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}

	h.eng.SetRule(id, patch)
	h.cache.Invalidate(cache.PrefixPrefs)
	rule, _ := h.eng.Rule(id)
	respond.WriteJSONObject(w, http.StatusOK, RuleResponse{ID: id, Rule: rule})
}

// DeleteRule removes the audio rule of one id.
// @Summary Delete audio rule
// @Tags rules
// @Param id path string true "Item or weather id"
// @Success 204
// @Failure 400 {object} respond.ErrorResponse
// @Router /rules/{id} [delete]
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ruleID(w, r)
	if !ok {
		return
	}
	h.eng.ClearRule(id)
	h.cache.Invalidate(cache.PrefixPrefs)
	respond.WriteNoContent(w)
}

func (h *Handler) ruleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := h.eng.RuleID(pathID(r))
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id must be an item id or a known weather id")
		return "", false
	}
	return id, true
}

// --------------------------------------------------------------------------
// Context defaults
// --------------------------------------------------------------------------

// GetContextDefaults returns the effective playback defaults of a context.
// @Summary Context playback defaults
// @Tags rules
// @Produce json
// @Param context path string true "Alert context" Enums(shops, weather)
// @Success 200 {object} audio.Settings
// @Failure 400 {object} respond.ErrorResponse
// @Router /context-defaults/{context} [get]
func (h *Handler) GetContextDefaults(w http.ResponseWriter, r *http.Request) {
	c, ok := contextParam(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.eng.ContextStopDefaults(c))
}

// PutContextDefaults stores the playback defaults of a context. Weather
// alerts always stop manually whatever is stored.
// @Summary Set context playback defaults
// @Tags rules
// @Accept json
// @Produce json
// @Param context path string true "Alert context" Enums(shops, weather)
// @Param body body prefs.StopDefaults true "Defaults"
// @Success 200 {object} audio.Settings
// @Failure 400 {object} respond.ErrorResponse
// @Router /context-defaults/{context} [put]
func (h *Handler) PutContextDefaults(w http.ResponseWriter, r *http.Request) {
	c, ok := contextParam(w, r)
	if !ok {
		return
	}
	var d prefs.StopDefaults
	if err := respond.DecodeJSON(w, r, &d); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	h.eng.SetContextStopDefaults(c, d)
	respond.WriteJSONObject(w, http.StatusOK, h.eng.ContextStopDefaults(c))
}

func contextParam(w http.ResponseWriter, r *http.Request) (audio.Context, bool) {
	c := audio.Context(chi.URLParam(r, "context"))
	if !c.Valid() {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_CONTEXT", "context must be shops or weather")
		return "", false
	}
	return c, true
}
