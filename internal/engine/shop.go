package engine

import (
	"context"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/feed"
	"github.com/albapepper/gardenwatch/internal/prefs"
	"github.com/albapepper/gardenwatch/internal/toolcap"
)

// Row is one item currently in the shop, merged with its preference.
type Row struct {
	ID              string          `json:"id"`
	Type            catalog.Section `json:"type"`
	Name            string          `json:"name"`
	Rarity          string          `json:"rarity,omitempty"`
	PopupEnabled    bool            `json:"popupEnabled"`
	FollowedEnabled bool            `json:"followedEnabled"`
}

// Counts summarises a row list.
type Counts struct {
	Items    int `json:"items"`
	Followed int `json:"followed"`
}

// State is the value of the rows channel.
type State struct {
	Rows      []Row  `json:"rows"`
	Counts    Counts `json:"counts"`
	Signature string `json:"signature"`
}

// Filter narrows a row list. Empty fields match everything.
type Filter struct {
	Type   catalog.Section `json:"type,omitempty"`
	Rarity string          `json:"rarity,omitempty"`
}

// FilterRows returns the rows matching f, in order. Rarity compares
// case-insensitively.
func FilterRows(rows []Row, f Filter) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Rarity != "" && !strings.EqualFold(r.Rarity, f.Rarity) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// renotify decides when a row refresh reaches the rows channel.
type renotify int

const (
	// renotifyStructural publishes only when the id set changed.
	renotifyStructural renotify = iota
	// renotifyContent also publishes when any row field changed.
	renotifyContent
	// renotifyAlways publishes unconditionally.
	renotifyAlways
)

// buildRows derives the row list from a shop snapshot. Rows follow section
// then stock order; repeated ids keep their first position.
func buildRows(cat *catalog.Catalog, shop feed.Shop, tools []toolcap.Item, flags map[string]prefs.Flags) []Row {
	var rows []Row
	seen := make(map[string]bool)
	for _, sec := range catalog.Sections {
		for _, it := range shop.Section(sec).Inventory {
			raw := it.RawID(sec)
			if raw == "" {
				continue
			}
			id := catalog.ItemID(sec, raw)
			if seen[id] {
				continue
			}
			seen[id] = true
			meta := cat.Describe(sec, raw)
			popup := effectivePopup(id, sec, flags[id], tools)
			rows = append(rows, Row{
				ID:              id,
				Type:            sec,
				Name:            meta.Name,
				Rarity:          meta.Rarity,
				PopupEnabled:    popup,
				FollowedEnabled: popup,
			})
		}
	}
	return rows
}

func effectivePopup(id string, sec catalog.Section, f prefs.Flags, tools []toolcap.Item) bool {
	if !f.Has(prefs.FlagPopup) {
		return false
	}
	return sec != catalog.SectionTool || !toolcap.Capped(id, tools)
}

func countRows(rows []Row) Counts {
	c := Counts{Items: len(rows)}
	for _, r := range rows {
		if r.FollowedEnabled {
			c.Followed++
		}
	}
	return c
}

// signature is the sorted id list joined with "|".
func signature(rows []Row) string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func newState(rows []Row) State {
	return State{Rows: rows, Counts: countRows(rows), Signature: signature(rows)}
}

// --------------------------------------------------------------------------
// Reducers
// --------------------------------------------------------------------------

func (e *Engine) onShop(gen uint64, shop feed.Shop) {
	e.run(func(p *pass) {
		if !e.live(gen) {
			return
		}
		if e.hasShop && reflect.DeepEqual(e.shop, shop) {
			return
		}
		e.shop, e.hasShop = shop, true
		e.shopsCh.Stage(shop)
		e.refreshRows(renotifyStructural)
	})
}

func (e *Engine) onPurchases(gen uint64, buys feed.Purchases) {
	e.run(func(p *pass) {
		if !e.live(gen) {
			return
		}
		if e.hasBuys && reflect.DeepEqual(e.purchases, buys) {
			return
		}
		e.purchases, e.hasBuys = buys, true
		e.buysCh.Stage(buys)
	})
}

func (e *Engine) onTools(gen uint64, tools []toolcap.Item) {
	e.run(func(p *pass) {
		if !e.live(gen) {
			return
		}
		if reflect.DeepEqual(e.tools, tools) {
			return
		}
		e.tools = slices.Clone(tools)
		if e.hasShop {
			e.refreshRows(renotifyContent)
		}
	})
}

// refreshRows rebuilds the resident rows from the cached snapshot and stages
// per-item and rows-channel updates. Must be called with e.mu held.
func (e *Engine) refreshRows(mode renotify) {
	rows := buildRows(e.cat, e.shop, e.tools, e.store.AllFlags())

	next := make(map[string]Row, len(rows))
	contentChanged := false
	for _, r := range rows {
		next[r.ID] = r
		if prev, ok := e.rows[r.ID]; !ok || prev != r {
			contentChanged = true
			row := r
			e.items.Stage(r.ID, &row)
		}
	}
	for id := range e.rows {
		if _, ok := next[id]; !ok {
			contentChanged = true
			e.items.Retire(id, nil)
		}
	}
	e.rows = next

	state := newState(rows)
	structural := state.Signature != e.rowSig
	e.rowSig = state.Signature

	publish := structural || !e.rowsPublished
	switch mode {
	case renotifyContent:
		publish = publish || contentChanged
	case renotifyAlways:
		publish = true
	}
	if !publish {
		return
	}
	e.rowsPublished = true
	e.rowsCh.Stage(state)
	e.logger.Debug("Rows updated", "items", state.Counts.Items, "followed", state.Counts.Followed, "structural", structural)
}

// --------------------------------------------------------------------------
// Rows and raw channels
// --------------------------------------------------------------------------

// Get returns the current row state. Before Start it is computed on demand
// from the sources without touching the caches.
func (e *Engine) Get(ctx context.Context) State {
	e.mu.Lock()
	if e.started && e.hasShop {
		state, _ := e.rowsCh.Current()
		e.mu.Unlock()
		state.Rows = slices.Clone(state.Rows)
		return state
	}
	e.mu.Unlock()

	shop, ok := fetchCtx(ctx, e, "shop", e.shopSrc)
	if !ok {
		return newState(nil)
	}
	tools, _ := fetchCtx(ctx, e, "tools", e.toolSrc)
	return newState(buildRows(e.cat, shop, tools, e.store.AllFlags()))
}

// OnChange registers cb for row state updates.
func (e *Engine) OnChange(cb func(State)) func() { return e.rowsCh.Subscribe(cb) }

// OnChangeNow delivers the current row state to cb, then registers it.
func (e *Engine) OnChangeNow(cb func(State)) func() {
	return subscribeNow(e, e.rowsCh, func() (State, bool) {
		return e.Get(context.Background()), true
	}, cb)
}

// OnShopsChange registers cb for raw shop snapshots.
func (e *Engine) OnShopsChange(cb func(feed.Shop)) func() { return e.shopsCh.Subscribe(cb) }

// OnShopsChangeNow delivers the latest shop snapshot, then registers cb.
func (e *Engine) OnShopsChangeNow(cb func(feed.Shop)) func() {
	return subscribeNow(e, e.shopsCh, func() (feed.Shop, bool) {
		return fetchNow(e, "shop", e.shopSrc)
	}, cb)
}

// OnPurchasesChange registers cb for raw purchase snapshots.
func (e *Engine) OnPurchasesChange(cb func(feed.Purchases)) func() { return e.buysCh.Subscribe(cb) }

// OnPurchasesChangeNow delivers the latest purchase snapshot, then registers cb.
func (e *Engine) OnPurchasesChangeNow(cb func(feed.Purchases)) func() {
	return subscribeNow(e, e.buysCh, func() (feed.Purchases, bool) {
		return fetchNow(e, "purchases", e.purchaseSrc)
	}, cb)
}

// OnItemChange registers cb for updates of one row. cb receives nil when the
// item leaves the shop, after which the subscription is dropped.
func (e *Engine) OnItemChange(id string, cb func(*Row)) func() {
	return e.items.Subscribe(id, cb)
}

// Shop returns the cached shop snapshot.
func (e *Engine) Shop() (feed.Shop, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shop, e.hasShop
}

// Purchases returns the cached purchase snapshot.
func (e *Engine) Purchases() (feed.Purchases, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.purchases, e.hasBuys
}
