// Package engine turns the live shop, purchase, tool and weather feeds into
// the notifier state: item rows merged with preferences, weather rows, and the
// audio rule map. Every reducer pass and mutation runs under one mutex;
// subscribers are called after it is released, so they may call back into
// the engine.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/feed"
	"github.com/albapepper/gardenwatch/internal/hub"
	"github.com/albapepper/gardenwatch/internal/prefs"
	"github.com/albapepper/gardenwatch/internal/toolcap"
)

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// Source is a live value with change notification.
type Source[T any] interface {
	Get(ctx context.Context) (T, error)
	OnChange(cb func(T)) (unsubscribe func())
}

// Audio is the playback collaborator.
type Audio interface {
	Trigger(ctx context.Context, id string, ov audio.Overrides, c audio.Context) error
	StopLoop(id string)
	PlaybackSettings(c audio.Context) audio.Settings
	Sounds() []string
}

// Stats receives weather sightings.
type Stats interface {
	IncrementWeatherStat(rawWeatherID string)
}

// Options wire an Engine. Catalog, Prefs, Shop, Weather and Audio are
// required; Purchases, Tools and Stats may be nil.
type Options struct {
	Catalog   *catalog.Catalog
	Prefs     *prefs.Store
	Shop      Source[feed.Shop]
	Purchases Source[feed.Purchases]
	Tools     Source[[]toolcap.Item]
	Weather   Source[string]
	Audio     Audio
	Stats     Stats
	Logger    *slog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// fetchTimeout bounds on-demand reads made outside Start.
const fetchTimeout = 5 * time.Second

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

// Engine owns every cache, flag and subscriber set of the notifier.
type Engine struct {
	cat         *catalog.Catalog
	store       *prefs.Store
	shopSrc     Source[feed.Shop]
	purchaseSrc Source[feed.Purchases]
	toolSrc     Source[[]toolcap.Item]
	weatherSrc  Source[string]
	audio       Audio
	stats       Stats
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	started bool
	gen     uint64
	unsubs  []func()

	shop      feed.Shop
	hasShop   bool
	purchases feed.Purchases
	hasBuys   bool
	tools     []toolcap.Item

	rows          map[string]Row
	rowSig        string
	rowsPublished bool

	rawWeather       string
	hasRawWeather    bool
	currentWeather   string
	weatherSig       string
	weatherPublished bool

	rowsCh    *hub.Channel[State]
	shopsCh   *hub.Channel[feed.Shop]
	buysCh    *hub.Channel[feed.Purchases]
	weatherCh *hub.Channel[Weather]
	rulesCh   *hub.Channel[map[string]prefs.Rule]
	items     *hub.Registry[string, *Row]
}

// New builds an engine. Nothing is fetched until Start.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cat:         opts.Catalog,
		store:       opts.Prefs,
		shopSrc:     opts.Shop,
		purchaseSrc: opts.Purchases,
		toolSrc:     opts.Tools,
		weatherSrc:  opts.Weather,
		audio:       opts.Audio,
		stats:       opts.Stats,
		logger:      logger,
		now:         now,
		rows:        make(map[string]Row),
		rowsCh:      hub.NewChannel[State](),
		shopsCh:     hub.NewChannel[feed.Shop](),
		buysCh:      hub.NewChannel[feed.Purchases](),
		weatherCh:   hub.NewChannel[Weather](),
		rulesCh:     hub.NewChannel[map[string]prefs.Rule](),
		items:       hub.NewRegistry[string, *Row](),
	}
}

// pass collects side effects that must run after the lock is released and
// staged values are delivered.
type pass struct {
	effects []func()
}

func (p *pass) after(fn func()) { p.effects = append(p.effects, fn) }

// run executes fn under the engine lock, then delivers staged values, then
// runs the collected side effects.
func (e *Engine) run(fn func(p *pass)) {
	var p pass
	e.mu.Lock()
	fn(&p)
	e.mu.Unlock()
	e.flush()
	for _, eff := range p.effects {
		eff()
	}
}

func (e *Engine) flush() {
	e.shopsCh.Flush()
	e.buysCh.Flush()
	e.rowsCh.Flush()
	e.items.Flush()
	e.weatherCh.Flush()
	e.rulesCh.Flush()
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Start wires the source listeners and primes every cache. It is idempotent;
// the returned func stops the engine.
func (e *Engine) Start(ctx context.Context) func() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return e.Stop
	}
	e.started = true
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	// Listeners first so nothing emitted during priming is lost; the
	// reducers are signature gated, so overlap only costs a no-op pass.
	var unsubs []func()
	unsubs = append(unsubs, e.shopSrc.OnChange(func(s feed.Shop) { e.onShop(gen, s) }))
	if e.purchaseSrc != nil {
		unsubs = append(unsubs, e.purchaseSrc.OnChange(func(p feed.Purchases) { e.onPurchases(gen, p) }))
	}
	if e.toolSrc != nil {
		unsubs = append(unsubs, e.toolSrc.OnChange(func(t []toolcap.Item) { e.onTools(gen, t) }))
	}
	unsubs = append(unsubs, e.weatherSrc.OnChange(func(w string) { e.onWeather(gen, w) }))

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		for _, u := range unsubs {
			u()
		}
		return e.Stop
	}
	e.unsubs = unsubs
	e.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s, ok := fetch(gctx, e, "shop", e.shopSrc); ok {
			e.onShop(gen, s)
		}
		return nil
	})
	if e.purchaseSrc != nil {
		g.Go(func() error {
			if p, ok := fetch(gctx, e, "purchases", e.purchaseSrc); ok {
				e.onPurchases(gen, p)
			}
			return nil
		})
	}
	if e.toolSrc != nil {
		g.Go(func() error {
			if t, ok := fetch(gctx, e, "tools", e.toolSrc); ok {
				e.onTools(gen, t)
			}
			return nil
		})
	}
	g.Go(func() error {
		if w, ok := fetch(gctx, e, "weather", e.weatherSrc); ok {
			e.onWeather(gen, w)
		}
		return nil
	})
	_ = g.Wait()

	e.run(func(p *pass) {
		if e.gen != gen {
			return
		}
		// A primed snapshot equal to the cached one is skipped by onShop, so
		// preference writes made while stopped are folded in here.
		if e.hasShop {
			e.refreshRows(renotifyContent)
		}
		e.stageRules()
		e.refreshWeather(false)
	})

	e.logger.Info("Notifier engine started")
	return e.Stop
}

// Stop removes the source listeners and halts the current weather loop.
// Caches are kept; a later Start re-fetches every source.
func (e *Engine) Stop() {
	var unsubs []func()
	e.run(func(p *pass) {
		if !e.started {
			return
		}
		e.started = false
		e.gen++
		unsubs, e.unsubs = e.unsubs, nil
		if cur := e.currentWeather; cur != "" {
			p.after(func() { e.audio.StopLoop(cur) })
		}
	})
	for _, u := range unsubs {
		u()
	}
	if unsubs != nil {
		e.logger.Info("Notifier engine stopped")
	}
}

// Started reports whether the engine is running.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// live reports whether a callback from generation gen may still act. Must be
// called with e.mu held.
func (e *Engine) live(gen uint64) bool {
	return e.started && e.gen == gen
}

func fetch[T any](ctx context.Context, e *Engine, name string, src Source[T]) (T, bool) {
	v, err := src.Get(ctx)
	if errors.Is(err, feed.ErrNoValue) {
		e.logger.Debug("Source has no value yet", "source", name)
		var zero T
		return zero, false
	}
	if err != nil {
		e.logger.Warn("Source fetch failed", "source", name, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

// fetchCtx reads src outside Start, for on-demand values. A nil source
// reports no value.
func fetchCtx[T any](ctx context.Context, e *Engine, name string, src Source[T]) (T, bool) {
	if src == nil {
		var zero T
		return zero, false
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	return fetch(ctx, e, name, src)
}

func fetchNow[T any](e *Engine, name string, src Source[T]) (T, bool) {
	return fetchCtx(context.Background(), e, name, src)
}

// subscribeNow replays the current value of ch when running, or an on-demand
// value otherwise, then registers cb.
func subscribeNow[T any](e *Engine, ch *hub.Channel[T], compute func() (T, bool), cb func(T)) func() {
	if e.Started() {
		return ch.SubscribeNow(cb)
	}
	if v, ok := compute(); ok {
		cb(v)
	}
	return ch.Subscribe(cb)
}
