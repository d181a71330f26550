package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/kv/memory"
)

func stored(t *testing.T, m *memory.Store, key string) map[string]any {
	t.Helper()
	data, ok, err := m.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("Get(%q) = ok %v, err %v", key, ok, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("stored %q is not JSON: %v", key, err)
	}
	return out
}

func TestFlagsPersistAndDeleteWhenEmpty(t *testing.T) {
	m := memory.New()
	s := New(m, nil)

	if !s.SetFlags("Seed:Tulip", FlagPopup) {
		t.Fatal("first SetFlags should report a change")
	}
	if s.SetFlags("Seed:Tulip", FlagPopup) {
		t.Error("identical SetFlags should not report a change")
	}
	if got := stored(t, m, KeyPrefs); got["Seed:Tulip"] != float64(1) {
		t.Errorf("stored prefs = %v", got)
	}

	s.SetFlags("Seed:Tulip", FlagPopup.Without(FlagPopup))
	if got := stored(t, m, KeyPrefs); len(got) != 0 {
		t.Errorf("stored prefs after disable = %v, want {}", got)
	}
	if s.SetFlags("", FlagPopup) {
		t.Error("empty id should be a no-op")
	}
}

func TestClearFlags(t *testing.T) {
	m := memory.New()
	s := New(m, nil)
	s.SetFlags("Seed:Tulip", FlagPopup)
	s.SetFlags("Tool:Shovel", FlagPopup)

	s.ClearFlags()
	if got := s.AllFlags(); len(got) != 0 {
		t.Errorf("AllFlags() = %v", got)
	}
	if got := stored(t, m, KeyPrefs); len(got) != 0 {
		t.Errorf("stored prefs = %v, want {}", got)
	}
}

func TestRuleOverrides(t *testing.T) {
	r := Rule{Sound: "bell", PlaybackMode: audio.PlaybackLoop, StopMode: audio.StopPurchase, LoopIntervalMs: 2000}
	want := audio.Overrides{Sound: "bell", Mode: audio.PlaybackLoop, StopMode: audio.StopPurchase, LoopIntervalMs: 2000}
	if got := r.Overrides(); got != want {
		t.Errorf("Overrides() = %+v, want %+v", got, want)
	}
	if got := (Rule{}).Overrides(); got != (audio.Overrides{}) {
		t.Errorf("zero rule Overrides() = %+v", got)
	}
}

func TestLoadsOnce(t *testing.T) {
	m := memory.New()
	_ = m.Put(context.Background(), KeyPrefs, []byte(`{"Seed:Tulip":1,"Seed:Carrot":0}`))
	s := New(m, nil)

	if !s.Flags("Seed:Tulip").Has(FlagPopup) {
		t.Fatal("stored flag not loaded")
	}
	if _, ok := s.AllFlags()["Seed:Carrot"]; ok {
		t.Error("zero flags should be dropped on load")
	}

	// Later writes to the backend are not re-read.
	_ = m.Put(context.Background(), KeyPrefs, []byte(`{}`))
	if !s.Flags("Seed:Tulip").Has(FlagPopup) {
		t.Error("store re-read the backend")
	}
}

func TestMalformedJSONResets(t *testing.T) {
	m := memory.New()
	_ = m.Put(context.Background(), KeyRules, []byte(`{not json`))
	s := New(m, nil)
	if got := s.AllRules(); len(got) != 0 {
		t.Errorf("AllRules() = %v, want empty", got)
	}
}

func TestStorageErrorsAreSwallowed(t *testing.T) {
	m := memory.New()
	m.PutErr = errors.New("quota exceeded")
	s := New(m, nil)
	s.SetFlags("Seed:Tulip", FlagPopup)
	if !s.Flags("Seed:Tulip").Has(FlagPopup) {
		t.Error("in-memory state should survive a failed save")
	}
}

func TestWeatherOmitsEmptyEntries(t *testing.T) {
	m := memory.New()
	s := New(m, nil)
	s.UpdateWeather("Weather:Rain", func(w WeatherPref) WeatherPref {
		w.Notify = true
		return w
	})
	s.UpdateWeather("Weather:Frost", func(w WeatherPref) WeatherPref {
		w.LastSeen = 42
		return w
	})
	s.UpdateWeather("Weather:Rain", func(w WeatherPref) WeatherPref {
		w.Notify = false
		return w
	})
	got := stored(t, m, KeyWeather)
	if _, ok := got["Weather:Rain"]; ok {
		t.Errorf("empty entry persisted: %v", got)
	}
	frost, _ := got["Weather:Frost"].(map[string]any)
	if frost["lastSeen"] != float64(42) {
		t.Errorf("frost = %v", frost)
	}
	if _, ok := frost["notify"]; ok {
		t.Errorf("false notify should be omitted: %v", frost)
	}
}

func TestPatchRuleMergeWithDeletion(t *testing.T) {
	m := memory.New()
	s := New(m, nil)

	if !s.PatchRule("Seed:Tulip", RulePatch{Sound: To("bell"), LoopIntervalMs: To(99.6)}) {
		t.Fatal("expected change")
	}
	r, ok := s.Rule("Seed:Tulip")
	if !ok || r.Sound != "bell" || r.LoopIntervalMs != 150 {
		t.Fatalf("Rule() = %+v, %v", r, ok)
	}

	if s.PatchRule("Seed:Tulip", RulePatch{Sound: To("  bell ")}) {
		t.Error("trimmed identical sound should not count as a change")
	}

	s.PatchRule("Seed:Tulip", RulePatch{PlaybackMode: To("LOOP")})
	if r, _ := s.Rule("Seed:Tulip"); r.PlaybackMode != "" {
		t.Errorf("invalid playback mode stored: %+v", r)
	}

	s.PatchRule("Seed:Tulip", RulePatch{Sound: Remove[string](), LoopIntervalMs: Remove[float64]()})
	if _, ok := s.Rule("Seed:Tulip"); ok {
		t.Error("rule with no fields should be removed")
	}
	if got := stored(t, m, KeyRules); len(got) != 0 {
		t.Errorf("stored rules = %v", got)
	}
}

func TestSanitizeRuleOnLoad(t *testing.T) {
	m := memory.New()
	_ = m.Put(context.Background(), KeyRules, []byte(`{
		"a": {"sound": " chime ", "stopMode": "manual", "loopIntervalMs": 20},
		"b": {"playbackMode": "sometimes"}
	}`))
	s := New(m, nil)
	a, ok := s.Rule("a")
	if !ok || a.Sound != "chime" || a.StopMode != "" || a.LoopIntervalMs != 150 {
		t.Errorf("a = %+v", a)
	}
	if _, ok := s.Rule("b"); ok {
		t.Error("rule b has no valid field and should be dropped")
	}
}

func TestRulePatchUnmarshal(t *testing.T) {
	var p RulePatch
	if err := json.Unmarshal([]byte(`{"sound":null,"stopMode":"purchase","loopIntervalMs":"300"}`), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Sound.Set || p.Sound.Value != nil {
		t.Errorf("sound = %+v", p.Sound)
	}
	if p.PlaybackMode.Set {
		t.Error("absent key marked as set")
	}
	if p.LoopIntervalMs.Value == nil || *p.LoopIntervalMs.Value != 300 {
		t.Errorf("loopIntervalMs = %+v", p.LoopIntervalMs)
	}
	got := Rule{Sound: "bell"}.Apply(p)
	want := Rule{StopMode: audio.StopPurchase, LoopIntervalMs: 300}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestResolveDefaults(t *testing.T) {
	tests := []struct {
		name   string
		ctx    audio.Context
		stored StopDefaults
		sub    audio.Settings
		want   audio.Settings
	}{
		{"hardcoded floor", audio.ContextShops, StopDefaults{}, audio.Settings{}, audio.Settings{StopMode: audio.StopManual, LoopIntervalMs: 150}},
		{"subsystem default", audio.ContextShops, StopDefaults{}, audio.Settings{StopMode: audio.StopPurchase, LoopIntervalMs: 900}, audio.Settings{StopMode: audio.StopPurchase, LoopIntervalMs: 900}},
		{"stored wins", audio.ContextShops, StopDefaults{StopMode: audio.StopManual, LoopIntervalMs: 400}, audio.Settings{StopMode: audio.StopPurchase, LoopIntervalMs: 900}, audio.Settings{StopMode: audio.StopManual, LoopIntervalMs: 400}},
		{"weather forces manual", audio.ContextWeather, StopDefaults{StopMode: audio.StopPurchase}, audio.Settings{}, audio.Settings{StopMode: audio.StopManual, LoopIntervalMs: 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(memory.New(), nil)
			s.SetDefaults(tt.ctx, tt.stored)
			if got := s.ResolveDefaults(tt.ctx, tt.sub); got != tt.want {
				t.Errorf("ResolveDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
