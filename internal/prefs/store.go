// Package prefs is the persisted preference and rule store. It keeps four
// maps (item flags, weather preferences, audio rules, context stop defaults),
// loads each one lazily on first use and writes the whole map back after
// every mutation.
package prefs

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/kv"
)

// Storage keys, one per map.
const (
	KeyPrefs           = "prefs"
	KeyWeather         = "weather"
	KeyRules           = "rules"
	KeyContextDefaults = "context_defaults"
)

const saveTimeout = 5 * time.Second

// --------------------------------------------------------------------------
// Value types
// --------------------------------------------------------------------------

// Flags is the per-item preference bit set, persisted as a number.
type Flags uint32

const (
	// FlagPopup enables alerts for an item.
	FlagPopup Flags = 1 << iota
)

func (f Flags) Has(x Flags) bool { return f&x == x }
func (f Flags) With(x Flags) Flags { return f | x }
func (f Flags) Without(x Flags) Flags { return f &^ x }

// WeatherPref is the persisted state of one weather condition.
type WeatherPref struct {
	Notify   bool  `json:"notify,omitempty"`
	LastSeen int64 `json:"lastSeen,omitempty"`
}

// IsZero reports whether w would be omitted on save.
func (w WeatherPref) IsZero() bool { return !w.Notify && w.LastSeen == 0 }

// StopDefaults are the stored per-context playback defaults.
type StopDefaults struct {
	StopMode       audio.StopMode `json:"stopMode,omitempty"`
	LoopIntervalMs int            `json:"loopIntervalMs,omitempty"`
}

func (d StopDefaults) sanitized() StopDefaults {
	switch d.StopMode {
	case audio.StopManual, audio.StopPurchase:
	default:
		d.StopMode = ""
	}
	d.LoopIntervalMs = storedInterval(d.LoopIntervalMs)
	return d
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

type lazyMap[K ~string, V any] struct {
	key    string
	loaded bool
	m      map[K]V
}

// Store is safe for concurrent use. Storage failures are logged and
// swallowed: the in-memory maps stay authoritative for the process.
type Store struct {
	kv     kv.Store
	logger *slog.Logger

	mu       sync.Mutex
	flags    lazyMap[string, Flags]
	weather  lazyMap[string, WeatherPref]
	rules    lazyMap[string, Rule]
	defaults lazyMap[audio.Context, StopDefaults]
}

// New returns a store over backend. Nothing is read until first use.
func New(backend kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:       backend,
		logger:   logger,
		flags:    lazyMap[string, Flags]{key: KeyPrefs},
		weather:  lazyMap[string, WeatherPref]{key: KeyWeather},
		rules:    lazyMap[string, Rule]{key: KeyRules},
		defaults: lazyMap[audio.Context, StopDefaults]{key: KeyContextDefaults},
	}
}

// ensure loads lm at most once, even when the read fails. Must be called
// with s.mu held.
func ensure[K ~string, V any](s *Store, lm *lazyMap[K, V], clean func(V) (V, bool)) {
	if lm.loaded {
		return
	}
	lm.loaded = true
	lm.m = make(map[K]V)

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	data, ok, err := s.kv.Get(ctx, lm.key)
	if err != nil {
		s.logger.Error("Failed to load preferences", "key", lm.key, "error", err)
		return
	}
	if !ok || len(data) == 0 {
		return
	}
	var stored map[K]V
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("Malformed preferences, resetting", "key", lm.key, "error", err)
		return
	}
	for k, v := range stored {
		if v, keep := clean(v); keep {
			lm.m[k] = v
		}
	}
}

// save writes lm back. Must be called with s.mu held.
func save[K ~string, V any](s *Store, lm *lazyMap[K, V]) {
	data, err := json.Marshal(lm.m)
	if err != nil {
		s.logger.Error("Failed to encode preferences", "key", lm.key, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.kv.Put(ctx, lm.key, data); err != nil {
		s.logger.Error("Failed to save preferences", "key", lm.key, "error", err)
	}
}

func cleanFlags(f Flags) (Flags, bool) { return f, f != 0 }

func cleanWeather(w WeatherPref) (WeatherPref, bool) { return w, !w.IsZero() }

func cleanRule(r Rule) (Rule, bool) {
	r = r.sanitized()
	return r, !r.IsZero()
}

func cleanDefaults(d StopDefaults) (StopDefaults, bool) {
	d = d.sanitized()
	return d, d != StopDefaults{}
}

// --------------------------------------------------------------------------
// Item flags
// --------------------------------------------------------------------------

// Flags returns the stored flags for id.
func (s *Store) Flags(id string) Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.flags, cleanFlags)
	return s.flags.m[id]
}

// SetFlags stores f for id, deleting the entry when f is empty. It reports
// whether the stored value changed.
func (s *Store) SetFlags(id string, f Flags) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.flags, cleanFlags)
	if s.flags.m[id] == f {
		return false
	}
	if f == 0 {
		delete(s.flags.m, id)
	} else {
		s.flags.m[id] = f
	}
	save(s, &s.flags)
	return true
}

// AllFlags returns a copy of every stored flag set.
func (s *Store) AllFlags() map[string]Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.flags, cleanFlags)
	return maps.Clone(s.flags.m)
}

// ClearFlags removes every stored flag set.
func (s *Store) ClearFlags() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.flags, cleanFlags)
	clear(s.flags.m)
	save(s, &s.flags)
}

// --------------------------------------------------------------------------
// Weather
// --------------------------------------------------------------------------

// Weather returns the stored preference for a weather id.
func (s *Store) Weather(id string) WeatherPref {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.weather, cleanWeather)
	return s.weather.m[id]
}

// UpdateWeather applies fn to the stored preference of id and saves when the
// result differs.
func (s *Store) UpdateWeather(id string, fn func(WeatherPref) WeatherPref) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.weather, cleanWeather)
	prev := s.weather.m[id]
	next := fn(prev)
	if next == prev {
		return false
	}
	if next.IsZero() {
		delete(s.weather.m, id)
	} else {
		s.weather.m[id] = next
	}
	save(s, &s.weather)
	return true
}

// AllWeather returns a copy of every stored weather preference.
func (s *Store) AllWeather() map[string]WeatherPref {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.weather, cleanWeather)
	return maps.Clone(s.weather.m)
}

// --------------------------------------------------------------------------
// Rules
// --------------------------------------------------------------------------

// Rule returns the stored rule for id and whether one exists.
func (s *Store) Rule(id string) (Rule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.rules, cleanRule)
	r, ok := s.rules.m[id]
	return r, ok
}

// PatchRule merges p into the rule for id. An empty result removes the
// rule. It reports whether the stored rule changed.
func (s *Store) PatchRule(id string, p RulePatch) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.rules, cleanRule)
	prev := s.rules.m[id]
	next := prev.Apply(p)
	if next == prev {
		return false
	}
	if next.IsZero() {
		delete(s.rules.m, id)
	} else {
		s.rules.m[id] = next
	}
	save(s, &s.rules)
	return true
}

// ClearRule removes the rule for id.
func (s *Store) ClearRule(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.rules, cleanRule)
	if _, ok := s.rules.m[id]; !ok {
		return false
	}
	delete(s.rules.m, id)
	save(s, &s.rules)
	return true
}

// AllRules returns a copy of the rule map.
func (s *Store) AllRules() map[string]Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.rules, cleanRule)
	return maps.Clone(s.rules.m)
}

// --------------------------------------------------------------------------
// Context defaults
// --------------------------------------------------------------------------

// StoredDefaults returns the raw stored defaults for c.
func (s *Store) StoredDefaults(c audio.Context) StopDefaults {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.defaults, cleanDefaults)
	return s.defaults.m[c]
}

// SetDefaults stores d for c after sanitizing it. Unknown contexts are
// ignored.
func (s *Store) SetDefaults(c audio.Context, d StopDefaults) bool {
	if !c.Valid() {
		return false
	}
	d = d.sanitized()
	s.mu.Lock()
	defer s.mu.Unlock()
	ensure(s, &s.defaults, cleanDefaults)
	if s.defaults.m[c] == d {
		return false
	}
	if d == (StopDefaults{}) {
		delete(s.defaults.m, c)
	} else {
		s.defaults.m[c] = d
	}
	save(s, &s.defaults)
	return true
}

// ResolveDefaults returns the effective defaults for c: stored value, then
// the audio subsystem setting, then manual at the minimum interval. The
// weather context never stops on purchase.
func (s *Store) ResolveDefaults(c audio.Context, sub audio.Settings) audio.Settings {
	stored := s.StoredDefaults(c)
	out := audio.Settings{StopMode: stored.StopMode, LoopIntervalMs: stored.LoopIntervalMs}
	if out.StopMode == "" {
		out.StopMode = sub.StopMode
	}
	if out.StopMode != audio.StopPurchase {
		out.StopMode = audio.StopManual
	}
	if out.LoopIntervalMs == 0 {
		out.LoopIntervalMs = sub.LoopIntervalMs
	}
	out.LoopIntervalMs = max(out.LoopIntervalMs, audio.MinLoopIntervalMs)
	if c == audio.ContextWeather {
		out.StopMode = audio.StopManual
	}
	return out
}
