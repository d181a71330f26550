// Package weather holds the weather row model and the probability estimator
// that turns sparse sightings plus cycle metadata into a display estimate.
package weather

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/albapepper/gardenwatch/internal/catalog"
)

// Row is the derived state of one weather condition.
type Row struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	NotifyEnabled bool           `json:"notifyEnabled"`
	LastSeen      *int64         `json:"lastSeen"`
	IsCurrent     bool           `json:"isCurrent"`
	Cycle         *catalog.Cycle `json:"cycle,omitempty"`
	Weight        *float64       `json:"cycleWeight,omitempty"`
	Mutations     []string       `json:"mutations"`
}

// Display is the estimator output. Value is nil when there is no numeric
// estimate.
type Display struct {
	Label       string   `json:"label"`
	Tooltip     string   `json:"tooltip"`
	Value       *float64 `json:"value"`
	Approximate bool     `json:"approximate,omitempty"`
}

const (
	labelActive  = "Active"
	labelNoData  = "No data"
	labelDefault = "Default"
)

// ComputeProbabilityDisplay estimates how likely row is to be the next
// weather, as of now.
func ComputeProbabilityDisplay(row Row, now time.Time) Display {
	if row.IsCurrent {
		return Display{Label: labelActive, Tooltip: "Currently active", Value: ptr(1)}
	}

	if row.LastSeen == nil {
		if row.Weight != nil {
			return approximate(*row.Weight, "Never seen. "+describeWeight(*row.Weight))
		}
		return Display{Label: labelNoData, Tooltip: "Never seen and no cycle weight"}
	}

	elapsed := max(float64(now.UnixMilli()-*row.LastSeen)/float64(time.Minute/time.Millisecond), 0)
	seen := "Last seen " + describeElapsed(elapsed)

	kind := catalog.CycleUnknown
	if row.Cycle != nil {
		kind = row.Cycle.Kind
	}

	switch kind {
	case catalog.CycleWeather:
		c := row.Cycle
		ready := windowReadiness(elapsed, c.StartWindowMin, c.StartWindowMax)
		tip := []string{seen, fmt.Sprintf("Starts %s-%s after the last one", describeMinutes(c.StartWindowMin), describeMinutes(c.StartWindowMax))}
		return estimate(ready, row.Weight, tip)

	case catalog.CycleLunar:
		c := row.Cycle
		ready := 0.0
		if c.PeriodMinutes > 0 {
			ready = clamp01(elapsed / c.PeriodMinutes)
		}
		tip := []string{seen, "Cycle every " + describeMinutes(c.PeriodMinutes)}
		return estimate(ready, row.Weight, tip)

	case catalog.CycleBase:
		return Display{Label: labelDefault, Tooltip: seen + "\nShown whenever no other weather is active"}

	case catalog.CycleUnknown:
		if row.Weight != nil {
			return approximate(*row.Weight, seen+"\n"+describeWeight(*row.Weight))
		}
		return Display{Label: labelNoData, Tooltip: seen + "\nNo cycle information"}

	default:
		panic(fmt.Sprintf("weather: unhandled cycle kind %d", kind))
	}
}

// windowReadiness maps elapsed minutes onto [0,1] across the start window. A
// degenerate window is a step at min.
func windowReadiness(elapsed, lo, hi float64) float64 {
	if hi <= lo {
		if elapsed >= lo {
			return 1
		}
		return 0
	}
	return clamp01((elapsed - lo) / (hi - lo))
}

func estimate(ready float64, weight *float64, tip []string) Display {
	v := ready
	if weight != nil {
		v = *weight * ready
		tip = append(tip, describeWeight(*weight))
	}
	v = clamp01(v)
	return Display{Label: percent(v), Tooltip: strings.Join(tip, "\n"), Value: &v}
}

func approximate(weight float64, tip string) Display {
	v := clamp01(weight)
	return Display{Label: "~" + percent(v), Tooltip: tip, Value: &v, Approximate: true}
}

func percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}

func ptr(v float64) *float64 { return &v }

func describeWeight(w float64) string {
	return fmt.Sprintf("Cycle weight %s", percent(clamp01(w)))
}

func describeElapsed(minutes float64) string {
	if minutes < 1 {
		return "just now"
	}
	return describeMinutes(minutes) + " ago"
}

func describeMinutes(minutes float64) string {
	m := int(math.Round(minutes))
	switch {
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m < 24*60:
		if m%60 == 0 {
			return fmt.Sprintf("%dh", m/60)
		}
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	default:
		return fmt.Sprintf("%dd %dh", m/(24*60), (m%(24*60))/60)
	}
}
