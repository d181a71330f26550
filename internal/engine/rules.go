package engine

import (
	"maps"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/prefs"
	"github.com/albapepper/gardenwatch/internal/toolcap"
)

// Pref is the effective preference of one item.
type Pref struct {
	Popup bool `json:"popup"`
}

// --------------------------------------------------------------------------
// Item preferences
// --------------------------------------------------------------------------

// Pref returns the effective preference for an item id. A capped tool reads
// as disabled whatever its stored flag.
func (e *Engine) Pref(id string) Pref {
	sec, _, ok := catalog.SplitID(id)
	if !ok {
		return Pref{}
	}
	tools := e.currentTools()
	return Pref{Popup: effectivePopup(id, sec, e.store.Flags(id), tools)}
}

// SetPopup stores the popup flag for an item. Enabling a capped tool is
// ignored. Rows are always renotified.
func (e *Engine) SetPopup(id string, enabled bool) {
	e.SetPrefs(id, Pref{Popup: enabled})
}

// SetPrefs stores every flag of p for an item. Ids the catalog does not
// know are ignored.
func (e *Engine) SetPrefs(id string, p Pref) {
	if _, ok := e.cat.Item(id); !ok {
		e.logger.Debug("Ignoring preference for unknown item", "item_id", id)
		return
	}
	var fetched []toolcap.Item
	if p.Popup && !e.Started() {
		fetched = e.currentTools()
	}
	e.run(func(ps *pass) {
		tools := fetched
		if e.started {
			tools = e.tools
		}
		flags := e.store.Flags(id)
		if p.Popup {
			if toolcap.Capped(id, tools) {
				e.logger.Debug("Ignoring popup for capped tool", "item_id", id)
				return
			}
			flags = flags.With(prefs.FlagPopup)
		} else {
			flags = flags.Without(prefs.FlagPopup)
		}
		e.store.SetFlags(id, flags)
		e.renotifyRows()
	})
}

// ClearPrefs removes every stored flag for an item. An id that is neither in
// the catalog nor stored is a no-op; stored flags of an item that left the
// catalog can still be cleared.
func (e *Engine) ClearPrefs(id string) {
	if _, ok := e.cat.Item(id); !ok && e.store.Flags(id) == 0 {
		return
	}
	e.run(func(ps *pass) {
		e.store.SetFlags(id, 0)
		e.renotifyRows()
	})
}

// ClearAllPrefs removes the stored flags of every item.
func (e *Engine) ClearAllPrefs() {
	e.run(func(ps *pass) {
		e.store.ClearFlags()
		e.renotifyRows()
	})
}

// IsIDCapped reports whether a tool id has reached its cap.
func (e *Engine) IsIDCapped(id string) bool {
	return toolcap.Capped(id, e.currentTools())
}

// renotifyRows republishes the rows after a preference write. Must be called
// with e.mu held.
func (e *Engine) renotifyRows() {
	if e.started && e.hasShop {
		e.refreshRows(renotifyAlways)
	}
}

// currentTools returns the cached tool inventory, or fetches it when the
// engine is not running.
func (e *Engine) currentTools() []toolcap.Item {
	e.mu.Lock()
	if e.started {
		defer e.mu.Unlock()
		return e.tools
	}
	e.mu.Unlock()
	tools, _ := fetchNow(e, "tools", e.toolSrc)
	return tools
}

// --------------------------------------------------------------------------
// Rules
// --------------------------------------------------------------------------

// RuleID validates a rule id and returns its canonical form. Item ids are
// kept as given; weather ids and bare weather keys map to the definition id.
func (e *Engine) RuleID(id string) (string, bool) {
	if _, _, ok := catalog.SplitID(id); ok {
		return id, true
	}
	if def, ok := e.cat.WeatherByID(id); ok {
		return def.ID, true
	}
	return "", false
}

// Rule returns the stored rule for id.
func (e *Engine) Rule(id string) (prefs.Rule, bool) {
	if canon, ok := e.RuleID(id); ok {
		id = canon
	}
	return e.store.Rule(id)
}

// SetRule merges patch into the rule for id. Subscribers receive the full
// rule map when the stored rule changed.
func (e *Engine) SetRule(id string, patch prefs.RulePatch) {
	id, ok := e.RuleID(id)
	if !ok {
		return
	}
	e.run(func(p *pass) {
		if e.store.PatchRule(id, patch) {
			e.stageRules()
		}
	})
}

// ClearRule removes the rule for id.
func (e *Engine) ClearRule(id string) {
	if canon, ok := e.RuleID(id); ok {
		id = canon
	}
	e.run(func(p *pass) {
		if e.store.ClearRule(id) {
			e.stageRules()
		}
	})
}

// AllRules returns a copy of the rule map.
func (e *Engine) AllRules() map[string]prefs.Rule {
	return e.store.AllRules()
}

// OnRulesChange registers cb for rule map updates.
func (e *Engine) OnRulesChange(cb func(map[string]prefs.Rule)) func() {
	return e.rulesCh.Subscribe(func(m map[string]prefs.Rule) { cb(maps.Clone(m)) })
}

// OnRulesChangeNow delivers the rule map, then registers cb.
func (e *Engine) OnRulesChangeNow(cb func(map[string]prefs.Rule)) func() {
	wrapped := func(m map[string]prefs.Rule) { cb(maps.Clone(m)) }
	return subscribeNow(e, e.rulesCh, func() (map[string]prefs.Rule, bool) {
		return e.store.AllRules(), true
	}, wrapped)
}

// stageRules must be called with e.mu held.
func (e *Engine) stageRules() {
	e.rulesCh.Stage(e.store.AllRules())
}

// --------------------------------------------------------------------------
// Playback defaults
// --------------------------------------------------------------------------

// ContextStopDefaults returns the effective stop mode and loop interval for
// a context.
func (e *Engine) ContextStopDefaults(c audio.Context) audio.Settings {
	return e.store.ResolveDefaults(c, e.audio.PlaybackSettings(c))
}

// SetContextStopDefaults stores the defaults for a context.
func (e *Engine) SetContextStopDefaults(c audio.Context, d prefs.StopDefaults) {
	e.store.SetDefaults(c, d)
}

// Overrides resolves the trigger overrides for id in context c: the rule's
// fields first, then the context defaults. Weather alerts always stop
// manually.
func (e *Engine) Overrides(id string, c audio.Context) audio.Overrides {
	return e.overrides(id, c)
}

func (e *Engine) overrides(id string, c audio.Context) audio.Overrides {
	rule, _ := e.store.Rule(id)
	def := e.ContextStopDefaults(c)
	ov := rule.Overrides()
	if ov.Mode == "" {
		ov.Mode = audio.PlaybackOneShot
	}
	if ov.StopMode == "" {
		ov.StopMode = def.StopMode
	}
	if c == audio.ContextWeather {
		ov.StopMode = audio.StopManual
	}
	if ov.LoopIntervalMs == 0 {
		ov.LoopIntervalMs = def.LoopIntervalMs
	}
	return ov
}
