package weather

import (
	"strings"
	"testing"
	"time"

	"github.com/albapepper/gardenwatch/internal/catalog"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func minutesAgo(m float64) *int64 {
	v := now.Add(-time.Duration(m * float64(time.Minute))).UnixMilli()
	return &v
}

func weight(w float64) *float64 { return &w }

func TestCurrentIsAlwaysActive(t *testing.T) {
	cycles := []*catalog.Cycle{
		nil,
		{Kind: catalog.CycleWeather, StartWindowMin: 20, StartWindowMax: 35},
		{Kind: catalog.CycleLunar, PeriodMinutes: 240},
		{Kind: catalog.CycleBase},
	}
	for _, c := range cycles {
		d := ComputeProbabilityDisplay(Row{IsCurrent: true, Cycle: c, Weight: weight(0.1), LastSeen: minutesAgo(1)}, now)
		if d.Value == nil || *d.Value != 1 || d.Label != "Active" {
			t.Errorf("cycle %+v: got %+v", c, d)
		}
	}
}

func TestNeverSeenWithWeightIsApproximate(t *testing.T) {
	d := ComputeProbabilityDisplay(Row{Weight: weight(0.2)}, now)
	if d.Label != "~20%" || !d.Approximate || d.Value == nil || *d.Value != 0.2 {
		t.Errorf("got %+v", d)
	}
}

func TestProbabilityDisplay(t *testing.T) {
	window := &catalog.Cycle{Kind: catalog.CycleWeather, StartWindowMin: 20, StartWindowMax: 40}
	lunar := &catalog.Cycle{Kind: catalog.CycleLunar, PeriodMinutes: 240}

	tests := []struct {
		name  string
		row   Row
		label string
		value float64 // -1 means nil
	}{
		{"never seen no weight", Row{}, "No data", -1},
		{"before window", Row{Cycle: window, LastSeen: minutesAgo(10)}, "0%", 0},
		{"mid window", Row{Cycle: window, LastSeen: minutesAgo(30)}, "50%", 0.5},
		{"mid window weighted", Row{Cycle: window, Weight: weight(0.5), LastSeen: minutesAgo(30)}, "25%", 0.25},
		{"after window", Row{Cycle: window, LastSeen: minutesAgo(90)}, "100%", 1},
		{"degenerate window before", Row{Cycle: &catalog.Cycle{Kind: catalog.CycleWeather, StartWindowMin: 30, StartWindowMax: 30}, LastSeen: minutesAgo(29)}, "0%", 0},
		{"degenerate window after", Row{Cycle: &catalog.Cycle{Kind: catalog.CycleWeather, StartWindowMin: 30, StartWindowMax: 30}, LastSeen: minutesAgo(30)}, "100%", 1},
		{"lunar quarter", Row{Cycle: lunar, LastSeen: minutesAgo(60)}, "25%", 0.25},
		{"lunar weighted full", Row{Cycle: lunar, Weight: weight(0.33), LastSeen: minutesAgo(500)}, "33%", 0.33},
		{"lunar zero period", Row{Cycle: &catalog.Cycle{Kind: catalog.CycleLunar}, LastSeen: minutesAgo(60)}, "0%", 0},
		{"base", Row{Cycle: &catalog.Cycle{Kind: catalog.CycleBase}, LastSeen: minutesAgo(5)}, "Default", -1},
		{"unknown with weight", Row{Cycle: &catalog.Cycle{Kind: catalog.CycleUnknown, RawKind: "event"}, Weight: weight(0.4), LastSeen: minutesAgo(5)}, "~40%", 0.4},
		{"no cycle no weight", Row{LastSeen: minutesAgo(5)}, "No data", -1},
		{"seen in the future", Row{Cycle: window, LastSeen: minutesAgo(-5)}, "0%", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeProbabilityDisplay(tt.row, now)
			if d.Label != tt.label {
				t.Errorf("Label = %q, want %q", d.Label, tt.label)
			}
			switch {
			case tt.value < 0 && d.Value != nil:
				t.Errorf("Value = %v, want nil", *d.Value)
			case tt.value >= 0 && (d.Value == nil || !near(*d.Value, tt.value)):
				t.Errorf("Value = %v, want %v", d.Value, tt.value)
			}
			if d.Value != nil && (*d.Value < 0 || *d.Value > 1) {
				t.Errorf("Value %v outside [0,1]", *d.Value)
			}
		})
	}
}

func TestTooltipDescribesWindowAndWeight(t *testing.T) {
	row := Row{
		Cycle:    &catalog.Cycle{Kind: catalog.CycleWeather, StartWindowMin: 20, StartWindowMax: 35},
		Weight:   weight(0.75),
		LastSeen: minutesAgo(125),
	}
	tip := ComputeProbabilityDisplay(row, now).Tooltip
	for _, want := range []string{"Last seen 2h 5m ago", "20m-35m", "Cycle weight 75%"} {
		if !strings.Contains(tip, want) {
			t.Errorf("tooltip %q missing %q", tip, want)
		}
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
