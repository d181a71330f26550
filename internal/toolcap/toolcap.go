// Package toolcap decides when a tool has reached the most copies worth
// owning. A capped tool never raises a shop alert, whatever its stored
// preference says.
package toolcap

import (
	"strings"

	"github.com/albapepper/gardenwatch/internal/catalog"
)

// Caps maps raw tool ids to the quantity at which alerting stops.
var Caps = map[string]int{
	"WateringCan": 99,
	"Shovel":      1,
}

// Item is one entry of the live tool inventory.
type Item struct {
	ToolID   string `json:"toolId"`
	Quantity int    `json:"quantity"`
}

// Quantity sums the live quantity of a raw tool id.
func Quantity(raw string, inventory []Item) int {
	total := 0
	for _, it := range inventory {
		if it.ToolID == raw {
			total += it.Quantity
		}
	}
	return total
}

// Capped reports whether the tool behind a CatalogItemId (or bare tool id) has
// reached its cap. Ids outside the Tool section and tools without a cap are
// never capped.
func Capped(id string, inventory []Item) bool {
	raw := id
	if sec, r, ok := catalog.SplitID(id); ok {
		if sec != catalog.SectionTool {
			return false
		}
		raw = r
	} else if strings.Contains(id, ":") {
		return false
	}
	limit, ok := Caps[raw]
	if !ok {
		return false
	}
	return Quantity(raw, inventory) >= limit
}
