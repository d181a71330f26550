package catalog

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// Cycle metadata
// --------------------------------------------------------------------------

// CycleKind is the recurrence model attached to a weather definition.
type CycleKind int

const (
	CycleUnknown CycleKind = iota
	CycleWeather           // bounded start window
	CycleLunar             // periodic orbit
	CycleBase              // permanent fallback weather
)

func (k CycleKind) String() string {
	switch k {
	case CycleWeather:
		return "weather"
	case CycleLunar:
		return "lunar"
	case CycleBase:
		return "base"
	default:
		return "unknown"
	}
}

// MarshalText keeps the kind readable in API payloads.
func (k CycleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Cycle describes how a weather condition recurs. Window and period values
// are minutes. Only the fields of the active Kind are meaningful; RawKind keeps
// the catalog's own label for display.
type Cycle struct {
	Kind           CycleKind `json:"kind"`
	RawKind        string    `json:"rawKind,omitempty"`
	StartWindowMin float64   `json:"startWindowMin,omitempty"`
	StartWindowMax float64   `json:"startWindowMax,omitempty"`
	PeriodMinutes  float64   `json:"periodMinutes,omitempty"`
}

// WeatherDefinition is one immutable weather catalog entry.
type WeatherDefinition struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	Name      string   `json:"name"`
	Atom      string   `json:"atom"`
	Cycle     *Cycle   `json:"cycle,omitempty"`
	Weight    *float64 `json:"cycleWeight,omitempty"`
	Mutations []string `json:"mutations"`
}

// WeatherID builds the definition id for a catalog key.
func WeatherID(key string) string {
	return "Weather:" + key
}

// --------------------------------------------------------------------------
// YAML records
// --------------------------------------------------------------------------

// WeatherRecord is one entry of the weather YAML catalog.
type WeatherRecord struct {
	Key       string       `yaml:"key"`
	Name      string       `yaml:"name"`
	Atom      string       `yaml:"atom"`
	Weight    *float64     `yaml:"weight"`
	Cycle     *CycleRecord `yaml:"cycle"`
	Mutations []string     `yaml:"mutations"`
}

// CycleRecord is the raw cycle block of a WeatherRecord.
type CycleRecord struct {
	Kind           string   `yaml:"kind"`
	StartWindowMin *float64 `yaml:"start_window_min"`
	StartWindowMax *float64 `yaml:"start_window_max"`
	PeriodMinutes  *float64 `yaml:"period_minutes"`
}

func decodeWeather(data []byte) ([]WeatherRecord, error) {
	var recs []WeatherRecord
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode weather catalog: %w", err)
	}
	return recs, nil
}

func (r WeatherRecord) definition() (WeatherDefinition, error) {
	key := strings.TrimSpace(r.Key)
	if key == "" {
		return WeatherDefinition{}, fmt.Errorf("weather entry %q has no key", r.Name)
	}
	def := WeatherDefinition{
		ID:        WeatherID(key),
		Key:       key,
		Name:      strings.TrimSpace(r.Name),
		Atom:      strings.TrimSpace(r.Atom),
		Cycle:     r.Cycle.parse(),
		Mutations: append([]string{}, r.Mutations...),
	}
	if def.Name == "" {
		def.Name = key
	}
	if r.Weight != nil {
		w := *r.Weight
		def.Weight = &w
	}
	return def, nil
}

func (r *CycleRecord) parse() *Cycle {
	if r == nil {
		return nil
	}
	raw := strings.TrimSpace(r.Kind)
	c := &Cycle{Kind: CycleUnknown, RawKind: raw}
	switch strings.ToLower(raw) {
	case "weather":
		if r.StartWindowMin == nil || r.StartWindowMax == nil {
			return c
		}
		c.Kind = CycleWeather
		c.StartWindowMin = *r.StartWindowMin
		c.StartWindowMax = *r.StartWindowMax
	case "lunar":
		c.Kind = CycleLunar
		if r.PeriodMinutes != nil {
			c.PeriodMinutes = *r.PeriodMinutes
		}
	case "base":
		c.Kind = CycleBase
	}
	return c
}

// --------------------------------------------------------------------------
// Resolution
// --------------------------------------------------------------------------

// Weather returns every definition in catalog order.
func (c *Catalog) Weather() []WeatherDefinition {
	out := make([]WeatherDefinition, len(c.weather))
	copy(out, c.weather)
	return out
}

// WeatherByID finds a definition by its id or bare key.
func (c *Catalog) WeatherByID(id string) (WeatherDefinition, bool) {
	idx, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return WeatherDefinition{}, false
	}
	return c.weather[idx], true
}

// ResolveWeather maps a raw feed value onto a definition. The trimmed value is
// tried against the id, display name and atom indices; on a miss the value is
// retried with all whitespace removed.
func (c *Catalog) ResolveWeather(raw string) (WeatherDefinition, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return WeatherDefinition{}, false
	}
	if idx, ok := c.lookup(v); ok {
		return c.weather[idx], true
	}
	stripped := strings.Join(strings.Fields(v), "")
	if stripped != v {
		if idx, ok := c.lookup(stripped); ok {
			return c.weather[idx], true
		}
	}
	return WeatherDefinition{}, false
}

func (c *Catalog) lookup(v string) (int, bool) {
	k := strings.ToLower(v)
	for _, index := range []map[string]int{c.byID, c.byName, c.byAtom} {
		if idx, ok := index[k]; ok {
			return idx, true
		}
	}
	return 0, false
}

// SuggestWeather returns the display name closest to an unresolved value.
func (c *Catalog) SuggestWeather(raw string) (string, bool) {
	v := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if len(v) < 3 {
		return "", false
	}
	best, bestDist := "", -1
	for _, def := range c.weather {
		for _, cand := range []string{def.Key, def.Atom, strings.ReplaceAll(def.Name, " ", "")} {
			if cand == "" {
				continue
			}
			dist := levenshtein.ComputeDistance(v, strings.ToLower(cand))
			if dist > suggestLimit(len(cand)) {
				continue
			}
			if bestDist < 0 || dist < bestDist {
				best, bestDist = def.Name, dist
			}
		}
	}
	return best, bestDist >= 0
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
