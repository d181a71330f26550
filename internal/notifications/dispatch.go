package notifications

import (
	"context"
	"log/slog"

	"github.com/albapepper/gardenwatch/internal/feed"
)

type event struct {
	shop *feed.Shop
	buys *feed.Purchases
}

// Dispatcher turns engine snapshots into alerts. Snapshots are queued by the
// engine callbacks and handled in order by Run.
type Dispatcher struct {
	engine Engine
	player Player
	logger *slog.Logger
	queue  chan event

	// Owned by the Run goroutine.
	prevShop *feed.Shop
	prevBuys *feed.Purchases
}

// NewDispatcher builds a dispatcher. A nil logger uses slog.Default().
func NewDispatcher(eng Engine, player Player, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		engine: eng,
		player: player,
		logger: logger,
		queue:  make(chan event, queueSize),
	}
}

// Run subscribes to the engine and handles snapshots until ctx is cancelled.
// Intended to be called with `go`.
func (d *Dispatcher) Run(ctx context.Context) {
	unsubShops := d.engine.OnShopsChange(func(s feed.Shop) { d.enqueue(ctx, event{shop: &s}) })
	unsubBuys := d.engine.OnPurchasesChange(func(p feed.Purchases) { d.enqueue(ctx, event{buys: &p}) })
	defer unsubShops()
	defer unsubBuys()

	d.logger.Info("Shop alert dispatcher started")
	for {
		select {
		case ev := <-d.queue:
			d.handle(ctx, ev)
		case <-ctx.Done():
			d.logger.Info("Shop alert dispatcher stopped")
			return
		}
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, ev event) {
	select {
	case d.queue <- ev:
	case <-ctx.Done():
	default:
		d.logger.Warn("Alert queue full, dropping snapshot")
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev event) {
	switch {
	case ev.shop != nil:
		d.handleShop(ctx, *ev.shop)
	case ev.buys != nil:
		d.handlePurchases(*ev.buys)
	}
}
