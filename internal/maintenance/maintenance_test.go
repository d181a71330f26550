package maintenance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/feed"
	"github.com/albapepper/gardenwatch/internal/kv/memory"
	"github.com/albapepper/gardenwatch/internal/listener"
	"github.com/albapepper/gardenwatch/internal/prefs"
)

func newEngine(t *testing.T, feeds *listener.Feeds) *engine.Engine {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	eng := engine.New(engine.Options{
		Catalog:   cat,
		Prefs:     prefs.New(memory.New(), nil),
		Shop:      feeds.Shop,
		Purchases: feeds.Purchases,
		Tools:     feeds.Tools,
		Weather:   feeds.Weather,
		Audio:     audio.NewPlayer(audio.Options{}, nil),
	})
	t.Cleanup(eng.Stop)
	return eng
}

func TestDigest(t *testing.T) {
	feeds := listener.NewFeeds()
	var shop feed.Shop
	shop.Seed.Inventory = []feed.Item{{Species: "Tulip"}, {Species: "Carrot"}}
	feeds.Shop.Set(shop)
	feeds.Weather.Set("Rain")

	eng := newEngine(t, feeds)
	eng.SetPopup("Seed:Tulip", true)
	eng.SetWeatherNotify("Weather:Frost", true)
	eng.SetRule("Seed:Tulip", prefs.RulePatch{Sound: prefs.To("bell")})
	eng.Start(context.Background())

	got := Digest(context.Background(), eng, slog.Default())
	want := DigestSummary{Items: 2, Followed: 1, CurrentWeather: "Weather:Rain", WeatherAlerts: 1, Rules: 1}
	if got != want {
		t.Errorf("Digest() = %+v, want %+v", got, want)
	}
}

func TestStartRunsDigestAndStops(t *testing.T) {
	feeds := listener.NewFeeds()
	eng := newEngine(t, feeds)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		// Without a pool the database tasks are disabled.
		Start(ctx, Deps{Engine: eng}, Config{DigestInterval: 10 * time.Millisecond, CatchUpInterval: time.Millisecond}, slog.Default())
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
