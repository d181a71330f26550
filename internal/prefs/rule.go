package prefs

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/albapepper/gardenwatch/internal/audio"
)

// Rule is the audio rule for one item or weather id. Empty fields fall back
// to the context defaults; the zero Rule means "no rule".
type Rule struct {
	Sound          string             `json:"sound,omitempty"`
	PlaybackMode   audio.PlaybackMode `json:"playbackMode,omitempty"`
	StopMode       audio.StopMode     `json:"stopMode,omitempty"`
	LoopIntervalMs int                `json:"loopIntervalMs,omitempty"`
}

// IsZero reports whether r carries no field.
func (r Rule) IsZero() bool { return r == Rule{} }

// Overrides converts r into trigger overrides.
func (r Rule) Overrides() audio.Overrides {
	return audio.Overrides{
		Sound:          r.Sound,
		Mode:           r.PlaybackMode,
		StopMode:       r.StopMode,
		LoopIntervalMs: r.LoopIntervalMs,
	}
}

// sanitized drops every field that would not survive a patch.
func (r Rule) sanitized() Rule {
	return Rule{
		Sound:          sanitizeSound(string(r.Sound)),
		PlaybackMode:   sanitizePlayback(string(r.PlaybackMode)),
		StopMode:       sanitizeStop(string(r.StopMode)),
		LoopIntervalMs: storedInterval(r.LoopIntervalMs),
	}
}

func storedInterval(ms int) int {
	if ms == 0 {
		return 0
	}
	return sanitizeInterval(float64(ms))
}

// Field is one optional patch field. Set means the key was present in the
// patch; a nil Value then removes the stored field.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Keep leaves the stored field untouched.
func Keep[T any]() Field[T] { return Field[T]{} }

// To sets the field to v, subject to sanitization.
func To[T any](v T) Field[T] { return Field[T]{Set: true, Value: &v} }

// Remove deletes the stored field.
func Remove[T any]() Field[T] { return Field[T]{Set: true} }

// RulePatch is a partial rule update. Raw values are kept so that invalid
// input still counts as present and removes the stored field.
type RulePatch struct {
	Sound          Field[string]
	PlaybackMode   Field[string]
	StopMode       Field[string]
	LoopIntervalMs Field[float64]
}

// UnmarshalJSON decodes a patch object. Keys that are present mark their
// field as set even when the value is null or of the wrong type.
func (p *RulePatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = RulePatch{}
	if v, ok := raw["sound"]; ok {
		p.Sound = Field[string]{Set: true, Value: decodeString(v)}
	}
	if v, ok := raw["playbackMode"]; ok {
		p.PlaybackMode = Field[string]{Set: true, Value: decodeString(v)}
	}
	if v, ok := raw["stopMode"]; ok {
		p.StopMode = Field[string]{Set: true, Value: decodeString(v)}
	}
	if v, ok := raw["loopIntervalMs"]; ok {
		p.LoopIntervalMs = Field[float64]{Set: true, Value: decodeNumber(v)}
	}
	return nil
}

func decodeString(raw json.RawMessage) *string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func decodeNumber(raw json.RawMessage) *float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	if s := decodeString(raw); s != nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64); err == nil {
			return &f
		}
	}
	return nil
}

// Apply merges p into r. A present field with a valid value is set; a
// present field whose value is missing or invalid is removed.
func (r Rule) Apply(p RulePatch) Rule {
	if p.Sound.Set {
		r.Sound = ""
		if p.Sound.Value != nil {
			r.Sound = sanitizeSound(*p.Sound.Value)
		}
	}
	if p.PlaybackMode.Set {
		r.PlaybackMode = ""
		if p.PlaybackMode.Value != nil {
			r.PlaybackMode = sanitizePlayback(*p.PlaybackMode.Value)
		}
	}
	if p.StopMode.Set {
		r.StopMode = ""
		if p.StopMode.Value != nil {
			r.StopMode = sanitizeStop(*p.StopMode.Value)
		}
	}
	if p.LoopIntervalMs.Set {
		r.LoopIntervalMs = 0
		if p.LoopIntervalMs.Value != nil {
			r.LoopIntervalMs = sanitizeInterval(*p.LoopIntervalMs.Value)
		}
	}
	return r
}

func sanitizeSound(s string) string { return strings.TrimSpace(s) }

func sanitizePlayback(s string) audio.PlaybackMode {
	switch m := audio.PlaybackMode(s); m {
	case audio.PlaybackOneShot, audio.PlaybackLoop:
		return m
	}
	return ""
}

// Only purchase is stored; manual is the implicit default.
func sanitizeStop(s string) audio.StopMode {
	if audio.StopMode(s) == audio.StopPurchase {
		return audio.StopPurchase
	}
	return ""
}

// sanitizeInterval returns 0 (absent) for non-finite input.
func sanitizeInterval(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return max(int(math.Round(f)), audio.MinLoopIntervalMs)
}

// MarshalJSON encodes only the set fields. Removals encode as null.
func (p RulePatch) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, set bool, v any) error {
		if !set {
			return nil
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}
	if err := write("sound", p.Sound.Set, p.Sound.Value); err != nil {
		return nil, err
	}
	if err := write("playbackMode", p.PlaybackMode.Set, p.PlaybackMode.Value); err != nil {
		return nil, err
	}
	if err := write("stopMode", p.StopMode.Set, p.StopMode.Value); err != nil {
		return nil, err
	}
	if err := write("loopIntervalMs", p.LoopIntervalMs.Set, p.LoopIntervalMs.Value); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
