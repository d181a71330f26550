package handler

import (
	"github.com/albapepper/gardenwatch/internal/cache"
	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/feed"
	"github.com/albapepper/gardenwatch/internal/prefs"
)

// Observer counts state channel broadcasts.
type Observer interface {
	ObserveNotify(channel string)
}

// Watch drops cached responses whenever the state they were rendered from is
// republished, and counts each broadcast on obs (which may be nil). The
// returned func unsubscribes.
func Watch(eng *engine.Engine, c *cache.Cache, obs Observer) func() {
	on := func(channel string, prefixes ...string) func() {
		return func() {
			for _, p := range prefixes {
				c.Invalidate(p)
			}
			if obs != nil {
				obs.ObserveNotify(channel)
			}
		}
	}
	rows := on(StreamRows, cache.PrefixRows)
	shops := on(StreamShops, cache.PrefixShop)
	buys := on(StreamPurchases, cache.PrefixShop)
	weather := on(StreamWeather, cache.PrefixWeather)
	rules := on(StreamRules, cache.PrefixPrefs)

	unsubs := []func(){
		eng.OnChange(func(engine.State) { rows() }),
		eng.OnShopsChange(func(feed.Shop) { shops() }),
		eng.OnPurchasesChange(func(feed.Purchases) { buys() }),
		eng.OnWeatherChange(func(engine.Weather) { weather() }),
		eng.OnRulesChange(func(map[string]prefs.Rule) { rules() }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
