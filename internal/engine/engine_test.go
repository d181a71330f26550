package engine

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/feed"
	"github.com/albapepper/gardenwatch/internal/kv/memory"
	"github.com/albapepper/gardenwatch/internal/prefs"
	"github.com/albapepper/gardenwatch/internal/toolcap"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type trigger struct {
	ID        string
	Overrides audio.Overrides
	Context   audio.Context
}

type fakeAudio struct {
	mu       sync.Mutex
	triggers []trigger
	stops    []string
	settings map[audio.Context]audio.Settings
}

func (a *fakeAudio) Trigger(_ context.Context, id string, ov audio.Overrides, c audio.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.triggers = append(a.triggers, trigger{id, ov, c})
	return nil
}

func (a *fakeAudio) StopLoop(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stops = append(a.stops, id)
}

func (a *fakeAudio) PlaybackSettings(c audio.Context) audio.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings[c]
}

func (a *fakeAudio) Sounds() []string { return []string{"chime", "bell"} }

func (a *fakeAudio) snapshot() ([]trigger, []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]trigger(nil), a.triggers...), append([]string(nil), a.stops...)
}

type fakeStats struct {
	mu   sync.Mutex
	seen map[string]int
}

func (s *fakeStats) IncrementWeatherStat(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[raw]++
}

type harness struct {
	e       *Engine
	shop    *feed.Feed[feed.Shop]
	buys    *feed.Feed[feed.Purchases]
	tools   *feed.Feed[[]toolcap.Item]
	weather *feed.Feed[string]
	audio   *fakeAudio
	stats   *fakeStats
	store   *prefs.Store
	now     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	h := &harness{
		shop:    feed.New[feed.Shop]("shop"),
		buys:    feed.New[feed.Purchases]("purchases"),
		tools:   feed.New[[]toolcap.Item]("tools"),
		weather: feed.New[string]("weather"),
		audio:   &fakeAudio{settings: map[audio.Context]audio.Settings{}},
		stats:   &fakeStats{seen: map[string]int{}},
		store:   prefs.New(memory.New(), nil),
		now:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	h.e = New(Options{
		Catalog:   cat,
		Prefs:     h.store,
		Shop:      h.shop,
		Purchases: h.buys,
		Tools:     h.tools,
		Weather:   h.weather,
		Audio:     h.audio,
		Stats:     h.stats,
		Now:       func() time.Time { return h.now },
	})
	t.Cleanup(h.e.Stop)
	return h
}

func seeds(restock float64, species ...string) feed.Shop {
	var s feed.Shop
	for _, sp := range species {
		s.Seed.Inventory = append(s.Seed.Inventory, feed.Item{Species: sp, InitialStock: 3})
	}
	s.Seed.SecondsUntilRestock = restock
	return s
}

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

// --------------------------------------------------------------------------
// Shop reducer
// --------------------------------------------------------------------------

func TestRowsTrackLatestSnapshot(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot"))
	h.e.Start(context.Background())

	snapshots := [][]string{
		{"Carrot", "Tulip"},
		{"Tulip"},
		{},
		{"Corn", "Carrot", "Corn"},
	}
	for _, species := range snapshots {
		h.shop.Set(seeds(300, species...))
		got := rowIDs(h.e.Get(context.Background()).Rows)
		want := []string{}
		seen := map[string]bool{}
		for _, sp := range species {
			if !seen[sp] {
				seen[sp] = true
				want = append(want, catalog.ItemID(catalog.SectionSeed, sp))
			}
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("snapshot %v: rows %v, want %v", species, got, want)
		}
	}
}

func TestAddingItemIncrementsCounts(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot"))
	h.e.SetPopup("Seed:Carrot", true)
	h.e.Start(context.Background())

	before := h.e.Get(context.Background()).Counts
	if before != (Counts{Items: 1, Followed: 1}) {
		t.Fatalf("before = %+v", before)
	}

	h.shop.Set(seeds(300, "Carrot", "Tulip"))
	state := h.e.Get(context.Background())
	if state.Counts.Items != before.Items+1 || state.Counts.Followed != before.Followed {
		t.Errorf("counts = %+v", state.Counts)
	}
	var tulip *Row
	for i := range state.Rows {
		if state.Rows[i].ID == "Seed:Tulip" {
			tulip = &state.Rows[i]
		}
	}
	if tulip == nil {
		t.Fatal("Seed:Tulip row missing")
	}
	want := Row{ID: "Seed:Tulip", Type: catalog.SectionSeed, Name: "Tulip", Rarity: "Uncommon"}
	if *tulip != want {
		t.Errorf("tulip = %+v, want %+v", *tulip, want)
	}
}

func TestIdenticalIDSetDoesNotRenotify(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot", "Tulip"))
	h.e.Start(context.Background())

	var rowsNotified, shopsNotified int
	h.e.OnChange(func(State) { rowsNotified++ })
	h.e.OnShopsChange(func(feed.Shop) { shopsNotified++ })

	h.shop.Set(seeds(299, "Tulip", "Carrot"))
	h.shop.Set(seeds(298, "Carrot", "Tulip"))
	h.shop.Set(seeds(298, "Carrot", "Tulip")) // duplicate delivery

	if rowsNotified != 0 {
		t.Errorf("rows notified %d times for an unchanged id set", rowsNotified)
	}
	if shopsNotified != 2 {
		t.Errorf("shops notified %d times, want 2", shopsNotified)
	}
}

func TestPopupWriteAlwaysNotifies(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot"))
	h.e.Start(context.Background())

	var states []State
	h.e.OnChange(func(s State) { states = append(states, s) })

	h.e.SetPopup("Seed:Carrot", true)
	h.e.SetPopup("Seed:Carrot", true)
	h.e.SetPopup("Seed:Tulip", true) // not in the shop, still a preference write
	h.e.SetPopup("not-an-id", true)

	if len(states) != 3 {
		t.Fatalf("notifications = %d, want 3", len(states))
	}
	if states[0].Signature != "Seed:Carrot" || states[0].Counts.Followed != 1 {
		t.Errorf("state = %+v", states[0])
	}
	if !h.store.Flags("Seed:Tulip").Has(prefs.FlagPopup) {
		t.Error("flag for an absent item was not stored")
	}
}

func TestToolCapClampsAndRestores(t *testing.T) {
	h := newHarness(t)
	var shop feed.Shop
	shop.Tool.Inventory = []feed.Item{{ToolID: "Shovel"}, {ToolID: "PlanterPot"}}
	h.shop.Set(shop)
	h.tools.Set(nil)
	h.e.Start(context.Background())

	h.e.SetPopup("Tool:Shovel", true)
	if !h.e.Pref("Tool:Shovel").Popup {
		t.Fatal("popup should be enabled below the cap")
	}

	var notified int
	h.e.OnChange(func(State) { notified++ })

	h.tools.Set([]toolcap.Item{{ToolID: "Shovel", Quantity: 1}})
	if h.e.Pref("Tool:Shovel").Popup {
		t.Error("capped tool should read as disabled")
	}
	if !h.e.IsIDCapped("Tool:Shovel") {
		t.Error("IsIDCapped() = false")
	}
	if notified != 1 {
		t.Errorf("cap change notified %d times, want 1", notified)
	}
	if !h.store.Flags("Tool:Shovel").Has(prefs.FlagPopup) {
		t.Error("clamp must not change the stored flag")
	}

	h.tools.Set([]toolcap.Item{{ToolID: "Shovel", Quantity: 0}})
	if !h.e.Pref("Tool:Shovel").Popup {
		t.Error("un-capping should restore the stored flag")
	}
}

func TestEnablingCappedToolIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.tools.Set([]toolcap.Item{{ToolID: "WateringCan", Quantity: 99}})
	h.shop.Set(feed.Shop{})
	h.e.Start(context.Background())

	h.e.SetPopup("Tool:WateringCan", true)
	if h.store.Flags("Tool:WateringCan") != 0 {
		t.Error("enable request for a capped tool was stored")
	}

	h.tools.Set([]toolcap.Item{{ToolID: "WateringCan", Quantity: 98}})
	h.e.SetPopup("Tool:WateringCan", true)
	if !h.e.Pref("Tool:WateringCan").Popup {
		t.Error("enable below the cap should be stored")
	}
}

func TestItemSubscriptions(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Tulip"))
	h.e.Start(context.Background())

	var got []*Row
	h.e.OnItemChange("Seed:Tulip", func(r *Row) { got = append(got, r) })

	h.e.SetPopup("Seed:Tulip", true)
	h.shop.Set(seeds(300, "Carrot"))
	h.shop.Set(seeds(300, "Tulip")) // subscription already dropped

	if len(got) != 2 {
		t.Fatalf("got %d updates, want 2", len(got))
	}
	if got[0] == nil || !got[0].PopupEnabled {
		t.Errorf("first update = %+v", got[0])
	}
	if got[1] != nil {
		t.Errorf("second update = %+v, want nil", got[1])
	}
}

func TestSubscriberMayCallBack(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot"))
	h.e.Start(context.Background())

	var followed []int
	h.e.OnChange(func(s State) {
		followed = append(followed, s.Counts.Followed)
		if s.Counts.Followed == 0 && len(followed) == 1 {
			h.e.SetPopup("Seed:Carrot", true)
		}
	})
	h.shop.Set(seeds(300, "Carrot", "Tulip"))

	if !reflect.DeepEqual(followed, []int{0, 1}) {
		t.Errorf("followed = %v, want [0 1]", followed)
	}
}

func TestFilterRows(t *testing.T) {
	rows := []Row{
		{ID: "Seed:Tulip", Type: catalog.SectionSeed, Rarity: "Uncommon"},
		{ID: "Seed:Carrot", Type: catalog.SectionSeed, Rarity: "Common"},
		{ID: "Egg:CommonEgg", Type: catalog.SectionEgg, Rarity: "Common"},
	}
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"Seed:Tulip", "Seed:Carrot", "Egg:CommonEgg"}},
		{"type", Filter{Type: catalog.SectionSeed}, []string{"Seed:Tulip", "Seed:Carrot"}},
		{"rarity", Filter{Rarity: "common"}, []string{"Seed:Carrot", "Egg:CommonEgg"}},
		{"both", Filter{Type: catalog.SectionEgg, Rarity: "Common"}, []string{"Egg:CommonEgg"}},
		{"none", Filter{Type: catalog.SectionDecor}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rowIDs(FilterRows(rows, tt.filter)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterRows() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --------------------------------------------------------------------------
// Weather reducer
// --------------------------------------------------------------------------

func TestWeatherRainTriggersOnce(t *testing.T) {
	h := newHarness(t)
	h.e.SetWeatherNotify("Weather:Rain", true)
	h.weather.Set("Rain")
	h.e.Start(context.Background())

	triggers, _ := h.audio.snapshot()
	if len(triggers) != 1 {
		t.Fatalf("triggers = %+v, want exactly one", triggers)
	}
	if triggers[0].ID != "Weather:Rain" || triggers[0].Context != audio.ContextWeather {
		t.Errorf("trigger = %+v", triggers[0])
	}
	if triggers[0].Overrides.Mode != audio.PlaybackOneShot || triggers[0].Overrides.StopMode != audio.StopManual {
		t.Errorf("overrides = %+v", triggers[0].Overrides)
	}
	if got := h.store.Weather("Weather:Rain").LastSeen; got != h.now.UnixMilli() {
		t.Errorf("lastSeen = %d, want %d", got, h.now.UnixMilli())
	}
	if h.stats.seen["Rain"] != 1 {
		t.Errorf("stats = %v", h.stats.seen)
	}

	state := h.e.WeatherState()
	current := 0
	for _, r := range state.Rows {
		if r.IsCurrent {
			current++
			if r.ID != "Weather:Rain" || r.LastSeen == nil {
				t.Errorf("current row = %+v", r)
			}
		}
	}
	if current != 1 {
		t.Errorf("%d current rows", current)
	}

	h.weather.Set("Rain") // debounced
	if triggers, _ := h.audio.snapshot(); len(triggers) != 1 {
		t.Errorf("duplicate weather retriggered: %+v", triggers)
	}
}

func TestWeatherTransitions(t *testing.T) {
	h := newHarness(t)
	h.e.Start(context.Background())

	var notified int
	h.e.OnWeatherChange(func(Weather) { notified++ })

	h.weather.Set(" amber moon ")
	if got := h.e.CurrentWeather(); got != "Weather:AmberMoon" {
		t.Fatalf("current = %q", got)
	}
	h.weather.Set("Frost")
	h.weather.Set("Volcano")
	if got := h.e.CurrentWeather(); got != "" {
		t.Errorf("unresolved weather left current = %q", got)
	}
	h.weather.Set("Volcano")

	_, stops := h.audio.snapshot()
	if !reflect.DeepEqual(stops, []string{"Weather:AmberMoon", "Weather:Frost"}) {
		t.Errorf("stops = %v", stops)
	}
	if triggers, _ := h.audio.snapshot(); len(triggers) != 0 {
		t.Errorf("notify disabled but triggered: %+v", triggers)
	}
	if notified != 3 {
		t.Errorf("weather notified %d times, want 3", notified)
	}
}

func TestWeatherRuleOverrides(t *testing.T) {
	h := newHarness(t)
	h.e.SetWeatherNotify("Rain", true) // bare key resolves too
	h.e.SetRule("Weather:Rain", prefs.RulePatch{
		Sound:        prefs.To("bell"),
		PlaybackMode: prefs.To("loop"),
		StopMode:     prefs.To("purchase"),
	})
	h.e.SetContextStopDefaults(audio.ContextWeather, prefs.StopDefaults{LoopIntervalMs: 600})
	h.weather.Set("Rain")
	h.e.Start(context.Background())

	triggers, _ := h.audio.snapshot()
	if len(triggers) != 1 {
		t.Fatalf("triggers = %+v", triggers)
	}
	want := audio.Overrides{Sound: "bell", Mode: audio.PlaybackLoop, StopMode: audio.StopManual, LoopIntervalMs: 600}
	if triggers[0].Overrides != want {
		t.Errorf("overrides = %+v, want %+v", triggers[0].Overrides, want)
	}
}

// --------------------------------------------------------------------------
// Rules and defaults
// --------------------------------------------------------------------------

func TestRuleFieldRemoval(t *testing.T) {
	h := newHarness(t)
	var snapshots []map[string]prefs.Rule
	h.e.OnRulesChange(func(m map[string]prefs.Rule) { snapshots = append(snapshots, m) })

	h.e.SetRule("Seed:Tulip", prefs.RulePatch{Sound: prefs.To("x")})
	h.e.SetRule("Seed:Tulip", prefs.RulePatch{Sound: prefs.To("x")})
	h.e.SetRule("Seed:Tulip", prefs.RulePatch{Sound: prefs.Remove[string]()})
	h.e.SetRule("", prefs.RulePatch{Sound: prefs.To("x")})
	h.e.SetRule("Weather:Volcano", prefs.RulePatch{Sound: prefs.To("x")})

	if _, ok := h.e.Rule("Seed:Tulip"); ok {
		t.Error("rule should be gone after removing its only field")
	}
	if len(snapshots) != 2 {
		t.Fatalf("rule notifications = %d, want 2", len(snapshots))
	}
	if snapshots[0]["Seed:Tulip"].Sound != "x" || len(snapshots[1]) != 0 {
		t.Errorf("snapshots = %+v", snapshots)
	}
}

func TestRuleIDCanonicalisesWeatherKeys(t *testing.T) {
	h := newHarness(t)
	h.e.SetRule("rain", prefs.RulePatch{Sound: prefs.To("bell")})

	if r, ok := h.e.Rule("Weather:Rain"); !ok || r.Sound != "bell" {
		t.Fatalf("Rule(Weather:Rain) = %+v, %v", r, ok)
	}
	if _, ok := h.e.AllRules()["rain"]; ok {
		t.Error("rule stored under the bare key")
	}
	if _, ok := h.e.RuleID("Weather:Volcano"); ok {
		t.Error("unknown weather id accepted")
	}
	h.e.ClearRule("Rain")
	if len(h.e.AllRules()) != 0 {
		t.Errorf("rules after clear = %+v", h.e.AllRules())
	}
}

func TestContextStopDefaults(t *testing.T) {
	h := newHarness(t)
	h.audio.settings[audio.ContextShops] = audio.Settings{StopMode: audio.StopPurchase, LoopIntervalMs: 1000}

	if got := h.e.ContextStopDefaults(audio.ContextShops); got != (audio.Settings{StopMode: audio.StopPurchase, LoopIntervalMs: 1000}) {
		t.Errorf("shops = %+v", got)
	}
	h.e.SetContextStopDefaults(audio.ContextWeather, prefs.StopDefaults{StopMode: audio.StopPurchase, LoopIntervalMs: 50})
	if got := h.e.ContextStopDefaults(audio.ContextWeather); got != (audio.Settings{StopMode: audio.StopManual, LoopIntervalMs: 150}) {
		t.Errorf("weather = %+v", got)
	}

	h.e.SetRule("Seed:Tulip", prefs.RulePatch{LoopIntervalMs: prefs.To(400.0)})
	ov := h.e.Overrides("Seed:Tulip", audio.ContextShops)
	if ov.StopMode != audio.StopPurchase || ov.LoopIntervalMs != 400 || ov.Mode != audio.PlaybackOneShot {
		t.Errorf("overrides = %+v", ov)
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.e.Start(context.Background())
	h.e.Start(context.Background())
	for name, n := range map[string]int{
		"shop": h.shop.Listeners(), "purchases": h.buys.Listeners(),
		"tools": h.tools.Listeners(), "weather": h.weather.Listeners(),
	} {
		if n != 1 {
			t.Errorf("%s listeners = %d, want 1", name, n)
		}
	}
}

func TestStopTearsDown(t *testing.T) {
	h := newHarness(t)
	h.weather.Set("Rain")
	h.shop.Set(seeds(300, "Carrot"))
	stop := h.e.Start(context.Background())

	var notified int
	h.e.OnChange(func(State) { notified++ })
	stop()

	if h.e.Started() {
		t.Error("Started() after Stop")
	}
	if h.shop.Listeners()+h.weather.Listeners() != 0 {
		t.Error("listeners left behind")
	}
	if _, stops := h.audio.snapshot(); !reflect.DeepEqual(stops, []string{"Weather:Rain"}) {
		t.Errorf("stops = %v", stops)
	}
	h.shop.Set(seeds(300, "Tulip"))
	if notified != 0 {
		t.Error("callback after Stop reached subscribers")
	}

	h.e.Start(context.Background())
	if got := rowIDs(h.e.Get(context.Background()).Rows); !reflect.DeepEqual(got, []string{"Seed:Tulip"}) {
		t.Errorf("restart did not re-prime: %v", got)
	}
}

func TestRestartPicksUpPrefsWrittenWhileStopped(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Tulip"))
	h.e.Start(context.Background())
	h.e.Stop()

	h.e.SetPopup("Seed:Tulip", true)
	h.e.Start(context.Background())

	state := h.e.Get(context.Background())
	if len(state.Rows) != 1 || !state.Rows[0].PopupEnabled || state.Counts.Followed != 1 {
		t.Errorf("state after restart = %+v", state)
	}
	var replayed []State
	h.e.OnChangeNow(func(s State) { replayed = append(replayed, s) })
	if len(replayed) != 1 || replayed[0].Counts.Followed != 1 {
		t.Errorf("replayed = %+v", replayed)
	}

	h.e.Stop()
	h.e.ClearPrefs("Seed:Tulip")
	h.e.Start(context.Background())
	if got := h.e.Get(context.Background()); got.Counts.Followed != 0 || got.Rows[0].PopupEnabled {
		t.Errorf("state after clearing while stopped = %+v", got)
	}
}

func TestUnknownItemPrefsAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot"))
	h.e.Start(context.Background())

	var notified int
	h.e.OnChange(func(State) { notified++ })
	h.e.SetPopup("Seed:Nonexistent", true)
	h.e.ClearPrefs("Seed:Nonexistent")

	if notified != 0 {
		t.Errorf("notifications = %d, want 0", notified)
	}
	if len(h.store.AllFlags()) != 0 {
		t.Errorf("stored flags = %v", h.store.AllFlags())
	}

	// Flags of an item that has since left the catalog can still be cleared.
	h.store.SetFlags("Seed:Retired", prefs.FlagPopup)
	h.e.ClearPrefs("Seed:Retired")
	if h.store.Flags("Seed:Retired") != 0 {
		t.Error("stale flag was not cleared")
	}
}

func TestClearAllPrefs(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot", "Tulip"))
	h.e.Start(context.Background())
	h.e.SetPopup("Seed:Carrot", true)
	h.e.SetPopup("Seed:Tulip", true)

	var states []State
	h.e.OnChange(func(s State) { states = append(states, s) })
	h.e.ClearAllPrefs()

	if len(states) != 1 || states[0].Counts.Followed != 0 {
		t.Errorf("states = %+v", states)
	}
	if len(h.store.AllFlags()) != 0 {
		t.Errorf("stored flags = %v", h.store.AllFlags())
	}
}

func TestGetBeforeStart(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Tulip"))
	h.e.SetPopup("Seed:Tulip", true)

	state := h.e.Get(context.Background())
	if len(state.Rows) != 1 || !state.Rows[0].PopupEnabled || state.Counts.Followed != 1 {
		t.Errorf("state = %+v", state)
	}

	var replayed []State
	h.e.OnChangeNow(func(s State) { replayed = append(replayed, s) })
	if len(replayed) != 1 || replayed[0].Signature != "Seed:Tulip" {
		t.Errorf("replayed = %+v", replayed)
	}

	if h.e.Started() || h.shop.Listeners() != 0 {
		t.Error("Get must not start the engine")
	}
}

func TestSubscribeNowAfterStart(t *testing.T) {
	h := newHarness(t)
	h.shop.Set(seeds(300, "Carrot"))
	h.buys.Set(feed.Purchases{Seed: map[string]int{"Carrot": 1}})
	h.e.Start(context.Background())

	var shops []feed.Shop
	var buys []feed.Purchases
	h.e.OnShopsChangeNow(func(s feed.Shop) { shops = append(shops, s) })
	h.e.OnPurchasesChangeNow(func(p feed.Purchases) { buys = append(buys, p) })
	h.buys.Set(feed.Purchases{Seed: map[string]int{"Carrot": 2}})

	if len(shops) != 1 {
		t.Errorf("shops replay = %d", len(shops))
	}
	if len(buys) != 2 || buys[1].Count("Seed:Carrot") != 2 {
		t.Errorf("purchases = %+v", buys)
	}
}
