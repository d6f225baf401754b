// Economy events — queued during a day tick, reported at day end.
// Emission order follows processing order, which follows construction
// order within a settlement.
package engine

import "fmt"

// Event is a notable occurrence in the economy.
type Event struct {
	Day          int    `json:"day"`
	SettlementID uint64 `json:"settlement_id"`
	Category     string `json:"category"` // "construction", "deficit"
	Description  string `json:"description"`
}

func (e Event) String() string {
	return fmt.Sprintf("day %d [%s] %s", e.Day, e.Category, e.Description)
}

// maxRetainedEvents bounds the in-memory event history.
const maxRetainedEvents = 1000

// emit appends an event to the driver's queue.
func (d *Driver) emit(e Event) {
	d.events = append(d.events, e)
}

// Events returns the retained event history, oldest first.
func (d *Driver) Events() []Event {
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// trimEvents drops history beyond the retention bound.
func (d *Driver) trimEvents() {
	if len(d.events) > maxRetainedEvents {
		d.events = d.events[len(d.events)-maxRetainedEvents:]
	}
}
