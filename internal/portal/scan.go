package portal

import (
	"sort"

	"github.com/andoniskgr/heating-system/internal/hal"
)

// prepareScan turns a raw scan into the list shown on the configuration
// page: hidden (empty-SSID) entries dropped, duplicates collapsed to their
// strongest sighting, sorted by descending signal strength.
func prepareScan(raw []hal.Network) []hal.Network {
	best := make(map[string]int, len(raw))
	order := make([]string, 0, len(raw))

	for _, n := range raw {
		if n.SSID == "" {
			continue
		}
		if rssi, seen := best[n.SSID]; seen {
			if n.RSSI > rssi {
				best[n.SSID] = n.RSSI
			}
			continue
		}
		best[n.SSID] = n.RSSI
		order = append(order, n.SSID)
	}

	out := make([]hal.Network, 0, len(order))
	for _, ssid := range order {
		out = append(out, hal.Network{SSID: ssid, RSSI: best[ssid]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RSSI > out[j].RSSI
	})
	return out
}
