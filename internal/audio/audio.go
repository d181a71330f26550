// Package audio is the alert playback collaborator. It does not produce sound
// itself: it resolves what should play, keeps looping alerts alive on their
// own timers and emits play events to the registered outputs (log, metrics,
// websocket clients).
package audio

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Context selects which family of defaults an alert uses.
type Context string

const (
	ContextShops   Context = "shops"
	ContextWeather Context = "weather"
)

// Valid reports whether c is a known context.
func (c Context) Valid() bool { return c == ContextShops || c == ContextWeather }

// PlaybackMode is one-shot or looping playback.
type PlaybackMode string

const (
	PlaybackOneShot PlaybackMode = "oneshot"
	PlaybackLoop    PlaybackMode = "loop"
)

// StopMode decides what ends a looping alert.
type StopMode string

const (
	StopManual   StopMode = "manual"
	StopPurchase StopMode = "purchase"
)

// MinLoopIntervalMs is the shortest accepted loop interval.
const MinLoopIntervalMs = 150

// Overrides customise a single trigger. Zero fields use the context defaults.
type Overrides struct {
	Sound          string       `json:"sound,omitempty"`
	Mode           PlaybackMode `json:"mode,omitempty"`
	StopMode       StopMode     `json:"stopMode,omitempty"`
	LoopIntervalMs int          `json:"loopIntervalMs,omitempty"`
}

// Settings are the playback defaults of one context.
type Settings struct {
	StopMode       StopMode `json:"stopMode"`
	LoopIntervalMs int      `json:"loopIntervalMs"`
}

// EventKind labels an emitted Event.
type EventKind string

const (
	EventPlay      EventKind = "play"
	EventLoopStart EventKind = "loop_start"
	EventLoopStop  EventKind = "loop_stop"
)

// Event is one playback action.
type Event struct {
	Kind    EventKind `json:"kind"`
	ID      string    `json:"id"`
	Sound   string    `json:"sound,omitempty"`
	Context Context   `json:"context"`
	At      time.Time `json:"at"`
}

// Output receives playback events. Emit must not block for long; it runs on
// the trigger caller or a loop goroutine.
type Output interface {
	Emit(Event)
}

// OutputFunc adapts a function to Output.
type OutputFunc func(Event)

// Emit calls f.
func (f OutputFunc) Emit(e Event) { f(e) }

// --------------------------------------------------------------------------
// Player
// --------------------------------------------------------------------------

// Options configure a Player.
type Options struct {
	Sounds       []string
	DefaultSound string
	Defaults     map[Context]Settings
}

type loop struct {
	stop chan struct{}
	ctx  Context
}

// Player implements the audio collaborator contract.
type Player struct {
	logger *slog.Logger

	mu           sync.Mutex
	sounds       []string
	defaultSound string
	defaults     map[Context]Settings
	loops        map[string]*loop
	outputs      map[int]Output
	nextOut      int
	now          func() time.Time
}

// NewPlayer builds a player. A nil logger uses slog.Default().
func NewPlayer(opts Options, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Player{
		logger:       logger,
		sounds:       slices.Clone(opts.Sounds),
		defaultSound: opts.DefaultSound,
		defaults:     make(map[Context]Settings, len(opts.Defaults)),
		loops:        make(map[string]*loop),
		outputs:      make(map[int]Output),
		now:          time.Now,
	}
	for c, s := range opts.Defaults {
		p.defaults[c] = s
	}
	if p.defaultSound == "" && len(p.sounds) > 0 {
		p.defaultSound = p.sounds[0]
	}
	return p
}

// AddOutput registers o and returns a func removing it.
func (p *Player) AddOutput(o Output) func() {
	p.mu.Lock()
	id := p.nextOut
	p.nextOut++
	p.outputs[id] = o
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.outputs, id)
		p.mu.Unlock()
	}
}

// Sounds lists the selectable sounds.
func (p *Player) Sounds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sounds)
}

// PlaybackSettings returns the subsystem defaults for c. Unset contexts report
// a zero Settings, letting callers apply their own fallback.
func (p *Player) PlaybackSettings(c Context) Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.defaults[c]
}

// Trigger plays an alert for id. Looping alerts replace any loop already
// running for the same id and repeat until StopLoop.
func (p *Player) Trigger(_ context.Context, id string, ov Overrides, c Context) error {
	p.mu.Lock()
	sound := p.resolveSound(ov.Sound)
	interval := ov.LoopIntervalMs
	if interval <= 0 {
		interval = p.defaults[c].LoopIntervalMs
	}
	interval = max(interval, MinLoopIntervalMs)

	if ov.Mode != PlaybackLoop {
		p.mu.Unlock()
		p.emit(Event{Kind: EventPlay, ID: id, Sound: sound, Context: c, At: p.now()})
		return nil
	}

	prev := p.loops[id]
	l := &loop{stop: make(chan struct{}), ctx: c}
	p.loops[id] = l
	p.mu.Unlock()

	if prev != nil {
		close(prev.stop)
	}
	p.logger.Debug("Alert loop started", "id", id, "sound", sound, "interval_ms", interval)
	p.emit(Event{Kind: EventLoopStart, ID: id, Sound: sound, Context: c, At: p.now()})
	p.emit(Event{Kind: EventPlay, ID: id, Sound: sound, Context: c, At: p.now()})
	go p.runLoop(l, id, sound, time.Duration(interval)*time.Millisecond)
	return nil
}

func (p *Player) runLoop(l *loop, id, sound string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.emit(Event{Kind: EventPlay, ID: id, Sound: sound, Context: l.ctx, At: p.now()})
		case <-l.stop:
			return
		}
	}
}

// StopLoop halts the loop for id, if any.
func (p *Player) StopLoop(id string) {
	p.mu.Lock()
	l, ok := p.loops[id]
	if ok {
		delete(p.loops, id)
	}
	p.mu.Unlock()
	if !ok {
		return
	}
	close(l.stop)
	p.emit(Event{Kind: EventLoopStop, ID: id, Context: l.ctx, At: p.now()})
}

// StopAll halts every loop.
func (p *Player) StopAll() {
	p.mu.Lock()
	ids := make([]string, 0, len(p.loops))
	for id := range p.loops {
		ids = append(ids, id)
	}
	p.mu.Unlock()
	for _, id := range ids {
		p.StopLoop(id)
	}
}

// ActiveLoops lists ids with a running loop, sorted.
func (p *Player) ActiveLoops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.loops))
	for id := range p.loops {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// resolveSound must be called with p.mu held.
func (p *Player) resolveSound(requested string) string {
	if requested != "" && (len(p.sounds) == 0 || slices.Contains(p.sounds, requested)) {
		return requested
	}
	if requested != "" {
		p.logger.Warn("Unknown alert sound, using default", "sound", requested, "default", p.defaultSound)
	}
	return p.defaultSound
}

func (p *Player) emit(e Event) {
	p.mu.Lock()
	outs := make([]Output, 0, len(p.outputs))
	for _, o := range p.outputs {
		outs = append(outs, o)
	}
	p.mu.Unlock()
	for _, o := range outs {
		o.Emit(e)
	}
}

// LogOutput writes every event to logger at debug level, plays at info.
func LogOutput(logger *slog.Logger) Output {
	return OutputFunc(func(e Event) {
		level := slog.LevelDebug
		if e.Kind == EventLoopStart || (e.Kind == EventPlay && e.Context == ContextWeather) {
			level = slog.LevelInfo
		}
		logger.Log(context.Background(), level, "Alert",
			"kind", e.Kind, "id", e.ID, "sound", e.Sound, "context", e.Context)
	})
}
