package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/prefs"
	"github.com/albapepper/gardenwatch/internal/weather"
)

// Weather is the value of the weather channel.
type Weather struct {
	Rows      []weather.Row `json:"rows"`
	CurrentID string        `json:"currentId,omitempty"`
	Raw       string        `json:"raw,omitempty"`
	Signature string        `json:"-"`
}

func (e *Engine) onWeather(gen uint64, raw string) {
	e.run(func(p *pass) {
		if !e.live(gen) {
			return
		}
		e.applyWeather(raw, p)
	})
}

// applyWeather resolves a raw weather value and records its side effects.
// Must be called with e.mu held.
func (e *Engine) applyWeather(raw string, p *pass) {
	if e.hasRawWeather && raw == e.rawWeather {
		return
	}
	e.rawWeather, e.hasRawWeather = raw, true
	prev := e.currentWeather

	def, ok := e.cat.ResolveWeather(raw)
	if !ok {
		if suggestion, found := e.cat.SuggestWeather(raw); found {
			e.logger.Warn("Unknown weather value", "raw", raw, "suggestion", suggestion)
		} else {
			e.logger.Warn("Unknown weather value", "raw", raw)
		}
		e.currentWeather = ""
		if prev != "" {
			p.after(func() { e.audio.StopLoop(prev) })
		}
		e.refreshWeather(false)
		return
	}

	now := e.now().UnixMilli()
	e.store.UpdateWeather(def.ID, func(w prefs.WeatherPref) prefs.WeatherPref {
		w.LastSeen = now
		return w
	})

	if prev != "" && prev != def.ID {
		p.after(func() { e.audio.StopLoop(prev) })
	}
	e.currentWeather = def.ID

	if e.store.Weather(def.ID).Notify {
		id, ov := def.ID, e.overrides(def.ID, audio.ContextWeather)
		p.after(func() {
			if err := e.audio.Trigger(context.Background(), id, ov, audio.ContextWeather); err != nil {
				e.logger.Error("Weather alert failed", "weather_id", id, "error", err)
			}
		})
	}
	if e.stats != nil {
		key := def.Key
		p.after(func() { e.stats.IncrementWeatherStat(key) })
	}

	e.logger.Info("Weather changed", "weather_id", def.ID, "raw", raw, "previous", prev)
	e.refreshWeather(false)
}

// buildWeather joins the static definitions with the stored preferences.
func (e *Engine) buildWeather(current string) Weather {
	defs := e.cat.Weather()
	stored := e.store.AllWeather()
	rows := make([]weather.Row, 0, len(defs))
	for _, d := range defs {
		pref := stored[d.ID]
		row := weather.Row{
			ID:            d.ID,
			Name:          d.Name,
			NotifyEnabled: pref.Notify,
			IsCurrent:     d.ID == current,
			Cycle:         d.Cycle,
			Weight:        d.Weight,
			Mutations:     d.Mutations,
		}
		if pref.LastSeen != 0 {
			seen := pref.LastSeen
			row.LastSeen = &seen
		}
		rows = append(rows, row)
	}
	return Weather{Rows: rows, CurrentID: current, Signature: weatherSignature(rows)}
}

// weatherSignature covers every mutable row field.
func weatherSignature(rows []weather.Row) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r.ID)
		b.WriteByte(',')
		b.WriteString(strconv.FormatBool(r.NotifyEnabled))
		b.WriteByte(',')
		if r.LastSeen != nil {
			b.WriteString(strconv.FormatInt(*r.LastSeen, 10))
		}
		b.WriteByte(',')
		b.WriteString(strconv.FormatBool(r.IsCurrent))
		b.WriteByte(';')
	}
	return b.String()
}

// refreshWeather stages the weather rows when their signature changed. Must
// be called with e.mu held.
func (e *Engine) refreshWeather(force bool) {
	w := e.buildWeather(e.currentWeather)
	w.Raw = e.rawWeather
	if !force && e.weatherPublished && w.Signature == e.weatherSig {
		return
	}
	e.weatherSig = w.Signature
	e.weatherPublished = true
	e.weatherCh.Stage(w)
}

// WeatherState returns the weather rows. Before Start they are computed from
// the stored preferences alone, with no current weather.
func (e *Engine) WeatherState() Weather {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started && e.weatherPublished {
		w, _ := e.weatherCh.Current()
		return w
	}
	return e.buildWeather(e.currentWeather)
}

// OnWeatherChange registers cb for weather row updates.
func (e *Engine) OnWeatherChange(cb func(Weather)) func() { return e.weatherCh.Subscribe(cb) }

// OnWeatherChangeNow delivers the current weather rows, then registers cb.
func (e *Engine) OnWeatherChangeNow(cb func(Weather)) func() {
	return subscribeNow(e, e.weatherCh, func() (Weather, bool) {
		return e.WeatherState(), true
	}, cb)
}

// WeatherNotify reports whether alerts are enabled for a weather id.
func (e *Engine) WeatherNotify(id string) bool {
	def, ok := e.cat.WeatherByID(id)
	if !ok {
		return false
	}
	return e.store.Weather(def.ID).Notify
}

// SetWeatherNotify enables or disables alerts for a weather id. Unknown ids
// are ignored.
func (e *Engine) SetWeatherNotify(id string, enabled bool) {
	def, ok := e.cat.WeatherByID(id)
	if !ok {
		e.logger.Debug("Ignoring notify for unknown weather", "weather_id", id)
		return
	}
	e.run(func(p *pass) {
		changed := e.store.UpdateWeather(def.ID, func(w prefs.WeatherPref) prefs.WeatherPref {
			w.Notify = enabled
			return w
		})
		if changed && e.started {
			e.refreshWeather(false)
		}
	})
}

// CurrentWeather returns the id of the active weather, or "".
func (e *Engine) CurrentWeather() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentWeather
}
