package notifications

import (
	"github.com/albapepper/gardenwatch/internal/catalog"
	"github.com/albapepper/gardenwatch/internal/feed"
)

// DetectChanges compares two shop snapshots. With no previous snapshot
// nothing is reported: the first snapshot only establishes state.
//
// A section restocks when its countdown increases; every item it then holds
// is reported as restocked. Otherwise items new to the section are reported
// as appeared. Items gone from every section are reported as departed.
func DetectChanges(prev *feed.Shop, next feed.Shop) []Change {
	if prev == nil {
		return nil
	}

	var changes []Change
	for _, sec := range catalog.Sections {
		before, after := prev.Section(sec), next.Section(sec)
		restocked := after.SecondsUntilRestock > before.SecondsUntilRestock
		had := sectionIDs(sec, before)
		for _, id := range orderedIDs(sec, after) {
			switch {
			case restocked:
				changes = append(changes, Change{Kind: ChangeRestocked, ID: id, Section: sec})
			case !had[id]:
				changes = append(changes, Change{Kind: ChangeAppeared, ID: id, Section: sec})
			}
		}
	}

	present := make(map[string]bool)
	for _, id := range next.IDs() {
		present[id] = true
	}
	for _, id := range prev.IDs() {
		if !present[id] {
			sec, _, _ := catalog.SplitID(id)
			changes = append(changes, Change{Kind: ChangeDeparted, ID: id, Section: sec})
		}
	}
	return changes
}

// DetectPurchases returns the ids whose purchase count increased, sorted.
// The first snapshot reports nothing.
func DetectPurchases(prev *feed.Purchases, next feed.Purchases) []string {
	if prev == nil {
		return nil
	}
	var ids []string
	for _, id := range next.IDs() {
		if next.Count(id) > prev.Count(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func orderedIDs(sec catalog.Section, s feed.Section) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range s.Inventory {
		raw := it.RawID(sec)
		if raw == "" {
			continue
		}
		id := catalog.ItemID(sec, raw)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sectionIDs(sec catalog.Section, s feed.Section) map[string]bool {
	out := make(map[string]bool)
	for _, id := range orderedIDs(sec, s) {
		out[id] = true
	}
	return out
}
