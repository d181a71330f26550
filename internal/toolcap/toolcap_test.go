package toolcap

import "testing"

func TestCapped(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		inventory []Item
		want      bool
	}{
		{"shovel below cap", "Tool:Shovel", nil, false},
		{"shovel at cap", "Tool:Shovel", []Item{{ToolID: "Shovel", Quantity: 1}}, true},
		{"shovel over cap", "Tool:Shovel", []Item{{ToolID: "Shovel", Quantity: 3}}, true},
		{"watering can below cap", "Tool:WateringCan", []Item{{ToolID: "WateringCan", Quantity: 98}}, false},
		{"watering can summed stacks", "Tool:WateringCan", []Item{{ToolID: "WateringCan", Quantity: 50}, {ToolID: "WateringCan", Quantity: 49}}, true},
		{"bare tool id", "Shovel", []Item{{ToolID: "Shovel", Quantity: 1}}, true},
		{"uncapped tool", "Tool:PlanterPot", []Item{{ToolID: "PlanterPot", Quantity: 500}}, false},
		{"seed never capped", "Seed:Shovel", []Item{{ToolID: "Shovel", Quantity: 1}}, false},
		{"unknown prefix", "Pet:Shovel", []Item{{ToolID: "Shovel", Quantity: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Capped(tt.id, tt.inventory); got != tt.want {
				t.Errorf("Capped(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
