package notifications

import (
	"context"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/feed"
)

// handleShop detects changes against the previous snapshot and alerts on
// followed items.
func (d *Dispatcher) handleShop(ctx context.Context, shop feed.Shop) {
	changes := DetectChanges(d.prevShop, shop)
	d.prevShop = &shop
	if len(changes) == 0 {
		return
	}

	var sent, failed, stopped int
	for _, c := range changes {
		switch c.Kind {
		case ChangeAppeared, ChangeRestocked:
			if !d.engine.Pref(c.ID).Popup {
				continue
			}
			if err := d.trigger(ctx, c.ID); err != nil {
				d.logger.Warn("alert failed", "item_id", c.ID, "error", err)
				failed++
				continue
			}
			sent++
		case ChangeDeparted:
			d.player.StopLoop(c.ID)
			stopped++
		}
	}
	if sent+failed > 0 {
		d.logger.Info("Shop alerts dispatched", "sent", sent, "failed", failed, "departed", stopped)
	}
}

// handlePurchases stops purchase-terminated loops for items just bought.
func (d *Dispatcher) handlePurchases(buys feed.Purchases) {
	bought := DetectPurchases(d.prevBuys, buys)
	d.prevBuys = &buys
	for _, id := range bought {
		if d.engine.Overrides(id, audio.ContextShops).StopMode != audio.StopPurchase {
			continue
		}
		d.player.StopLoop(id)
		d.logger.Debug("Alert stopped by purchase", "item_id", id)
	}
}

func (d *Dispatcher) trigger(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, triggerTimeout)
	defer cancel()
	return d.player.Trigger(ctx, id, d.engine.Overrides(id, audio.ContextShops), audio.ContextShops)
}
