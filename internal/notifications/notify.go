// Package notifications raises shop alerts for followed items.
//
// Pipeline: detect shop changes → keep followed items → trigger audio.
// Purchase snapshots stop looping alerts whose stop mode is purchase, and an
// item leaving the shop stops its loop.
package notifications

import (
	"context"
	"time"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/feed"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	queueSize      = 64
	triggerTimeout = 5 * time.Second
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// ChangeKind labels a detected shop change.
type ChangeKind string

const (
	ChangeAppeared  ChangeKind = "appeared"
	ChangeRestocked ChangeKind = "restocked"
	ChangeDeparted  ChangeKind = "departed"
)

// Change is one item-level shop movement.
type Change struct {
	Kind    ChangeKind
	ID      string
	Section catalog.Section
}

// Engine is the part of the notifier engine the dispatcher reads.
type Engine interface {
	OnShopsChange(cb func(feed.Shop)) func()
	OnPurchasesChange(cb func(feed.Purchases)) func()
	Pref(id string) engine.Pref
	Overrides(id string, c audio.Context) audio.Overrides
}

// Player plays and stops alerts.
type Player interface {
	Trigger(ctx context.Context, id string, ov audio.Overrides, c audio.Context) error
	StopLoop(id string)
}

// Compile-time check.
var _ Engine = (*engine.Engine)(nil)
