// Package feed defines the raw shapes of the live game feeds (shop
// inventory, purchases, tool inventory, current weather) and an in-memory
// observable that holds the latest value of each.
package feed

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/albapepper/gardenwatch/internal/catalog"
)

// ErrNoValue is returned by Get before the first value arrives.
var ErrNoValue = errors.New("feed has no value yet")

// --------------------------------------------------------------------------
// Shop snapshot
// --------------------------------------------------------------------------

// Item is one purchasable stack in a shop section. Only the id field matching
// the section is set.
type Item struct {
	ItemType     string `json:"itemType,omitempty"`
	Species      string `json:"species,omitempty"`
	EggID        string `json:"eggId,omitempty"`
	ToolID       string `json:"toolId,omitempty"`
	DecorID      string `json:"decorId,omitempty"`
	InitialStock int    `json:"initialStock,omitempty"`
}

// RawID returns the section-specific id of the item.
func (it Item) RawID(section catalog.Section) string {
	switch section {
	case catalog.SectionSeed:
		return it.Species
	case catalog.SectionEgg:
		return it.EggID
	case catalog.SectionTool:
		return it.ToolID
	case catalog.SectionDecor:
		return it.DecorID
	}
	return ""
}

// Section is one shop section: its stock and restock countdown.
type Section struct {
	Inventory           []Item  `json:"inventory"`
	SecondsUntilRestock float64 `json:"secondsUntilRestock"`
}

// Shop is a full shop snapshot.
type Shop struct {
	Seed  Section `json:"seed"`
	Egg   Section `json:"egg"`
	Tool  Section `json:"tool"`
	Decor Section `json:"decor"`
}

// Section returns the section for a catalog section.
func (s Shop) Section(sec catalog.Section) Section {
	switch sec {
	case catalog.SectionSeed:
		return s.Seed
	case catalog.SectionEgg:
		return s.Egg
	case catalog.SectionTool:
		return s.Tool
	case catalog.SectionDecor:
		return s.Decor
	}
	return Section{}
}

// IDs lists every CatalogItemId present, in section then stock order, without
// duplicates.
func (s Shop) IDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, sec := range catalog.Sections {
		for _, it := range s.Section(sec).Inventory {
			raw := it.RawID(sec)
			if raw == "" {
				continue
			}
			id := catalog.ItemID(sec, raw)
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Purchases
// --------------------------------------------------------------------------

// Purchases counts what was bought in the current restock cycle, per section
// and raw id.
type Purchases struct {
	Seed  map[string]int `json:"seed,omitempty"`
	Egg   map[string]int `json:"egg,omitempty"`
	Tool  map[string]int `json:"tool,omitempty"`
	Decor map[string]int `json:"decor,omitempty"`
}

// Count returns the purchase count for a CatalogItemId.
func (p Purchases) Count(id string) int {
	sec, raw, ok := catalog.SplitID(id)
	if !ok {
		return 0
	}
	var m map[string]int
	switch sec {
	case catalog.SectionSeed:
		m = p.Seed
	case catalog.SectionEgg:
		m = p.Egg
	case catalog.SectionTool:
		m = p.Tool
	case catalog.SectionDecor:
		m = p.Decor
	}
	return m[raw]
}

// IDs lists every purchased CatalogItemId, sorted.
func (p Purchases) IDs() []string {
	var out []string
	for sec, m := range map[catalog.Section]map[string]int{
		catalog.SectionSeed: p.Seed, catalog.SectionEgg: p.Egg,
		catalog.SectionTool: p.Tool, catalog.SectionDecor: p.Decor,
	} {
		for raw, n := range m {
			if n > 0 {
				out = append(out, catalog.ItemID(sec, raw))
			}
		}
	}
	sort.Strings(out)
	return out
}

// --------------------------------------------------------------------------
// Observable
// --------------------------------------------------------------------------

// Feed holds the latest value of one source and notifies listeners when a new
// value is set.
type Feed[T any] struct {
	name string

	mu    sync.Mutex
	value T
	has   bool
	subs  map[uint64]func(T)
	next  uint64
}

// New returns an empty feed.
func New[T any](name string) *Feed[T] {
	return &Feed[T]{name: name, subs: make(map[uint64]func(T))}
}

// Name returns the feed name.
func (f *Feed[T]) Name() string { return f.name }

// Get returns the latest value, or ErrNoValue.
func (f *Feed[T]) Get(_ context.Context) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.has {
		var zero T
		return zero, ErrNoValue
	}
	return f.value, nil
}

// OnChange registers cb for future values.
func (f *Feed[T]) OnChange(cb func(T)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = cb
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Set stores v and calls every listener outside the lock.
func (f *Feed[T]) Set(v T) {
	f.mu.Lock()
	f.value, f.has = v, true
	subs := make([]func(T), 0, len(f.subs))
	for _, cb := range f.subs {
		subs = append(subs, cb)
	}
	f.mu.Unlock()
	for _, cb := range subs {
		cb(v)
	}
}

// Listeners returns the number of registered listeners.
func (f *Feed[T]) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
