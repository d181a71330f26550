// Package catalog holds the static game data the notifier resolves feed values
// against: the four shop item catalogs and the weather catalog. Both are built
// once at boot and are read-only afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
)

//go:embed data/items.csv
var defaultItemsCSV []byte

//go:embed data/weather.yaml
var defaultWeatherYAML []byte

// --------------------------------------------------------------------------
// Sections and ids
// --------------------------------------------------------------------------

// Section is one of the four shop sections. It doubles as the item type.
type Section string

const (
	SectionSeed  Section = "Seed"
	SectionEgg   Section = "Egg"
	SectionTool  Section = "Tool"
	SectionDecor Section = "Decor"
)

// Sections lists every shop section in display order.
var Sections = []Section{SectionSeed, SectionEgg, SectionTool, SectionDecor}

// ParseSection matches a section name case-insensitively.
func ParseSection(s string) (Section, bool) {
	for _, sec := range Sections {
		if strings.EqualFold(string(sec), strings.TrimSpace(s)) {
			return sec, true
		}
	}
	return "", false
}

// ItemID builds the universal "{Section}:{rawId}" key.
func ItemID(section Section, raw string) string {
	return string(section) + ":" + raw
}

// SplitID is the inverse of ItemID.
func SplitID(id string) (Section, string, bool) {
	prefix, raw, ok := strings.Cut(id, ":")
	if !ok || raw == "" {
		return "", "", false
	}
	sec, ok := ParseSection(prefix)
	if !ok || string(sec) != prefix {
		return "", "", false
	}
	return sec, raw, true
}

// --------------------------------------------------------------------------
// Catalog
// --------------------------------------------------------------------------

// Item is the static metadata of one purchasable item.
type Item struct {
	ID     string  `json:"id"`
	Type   Section `json:"type"`
	Name   string  `json:"name"`
	Rarity string  `json:"rarity,omitempty"`
}

// ItemRecord is one row of the items CSV.
type ItemRecord struct {
	Section string `csv:"section"`
	ID      string `csv:"id"`
	Name    string `csv:"name"`
	Rarity  string `csv:"rarity"`
}

// Catalog is the immutable item index plus weather resolver.
type Catalog struct {
	items   map[string]Item
	weather []WeatherDefinition
	byID    map[string]int
	byName  map[string]int
	byAtom  map[string]int
}

// Load reads the item and weather catalogs. Empty paths select the embedded
// defaults.
func Load(itemsFile, weatherFile string) (*Catalog, error) {
	itemsData, err := readOr(itemsFile, defaultItemsCSV)
	if err != nil {
		return nil, err
	}
	weatherData, err := readOr(weatherFile, defaultWeatherYAML)
	if err != nil {
		return nil, err
	}

	var items []ItemRecord
	if err := gocsv.UnmarshalBytes(itemsData, &items); err != nil {
		return nil, fmt.Errorf("decode items catalog: %w", err)
	}
	weather, err := decodeWeather(weatherData)
	if err != nil {
		return nil, err
	}
	return New(items, weather)
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load("", "")
}

// New indexes the given records. Duplicate ids are rejected.
func New(items []ItemRecord, weather []WeatherRecord) (*Catalog, error) {
	c := &Catalog{
		items:  make(map[string]Item, len(items)),
		byID:   make(map[string]int, len(weather)*2),
		byName: make(map[string]int, len(weather)),
		byAtom: make(map[string]int, len(weather)),
	}

	for _, rec := range items {
		sec, ok := ParseSection(rec.Section)
		if !ok {
			return nil, fmt.Errorf("item %q: unknown section %q", rec.ID, rec.Section)
		}
		raw := strings.TrimSpace(rec.ID)
		if raw == "" {
			return nil, fmt.Errorf("item in section %s has no id", sec)
		}
		id := ItemID(sec, raw)
		if _, dup := c.items[id]; dup {
			return nil, fmt.Errorf("duplicate catalog item %s", id)
		}
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			name = raw
		}
		c.items[id] = Item{ID: id, Type: sec, Name: name, Rarity: strings.TrimSpace(rec.Rarity)}
	}

	for _, rec := range weather {
		def, err := rec.definition()
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[strings.ToLower(def.ID)]; dup {
			return nil, fmt.Errorf("duplicate weather definition %s", def.ID)
		}
		idx := len(c.weather)
		c.weather = append(c.weather, def)
		c.byID[strings.ToLower(def.ID)] = idx
		c.byID[strings.ToLower(def.Key)] = idx
		if def.Name != "" {
			c.byName[strings.ToLower(def.Name)] = idx
		}
		if def.Atom != "" {
			c.byAtom[strings.ToLower(def.Atom)] = idx
		}
	}
	return c, nil
}

// Item looks up static metadata for a CatalogItemId.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Describe returns the catalog metadata for id, or a fallback built from the
// id itself for items the catalog does not know yet.
func (c *Catalog) Describe(section Section, raw string) Item {
	id := ItemID(section, raw)
	if it, ok := c.items[id]; ok {
		return it
	}
	return Item{ID: id, Type: section, Name: raw}
}

// Items returns every catalog item sorted by id.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func readOr(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return bytes.Clone(fallback), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return data, nil
}
