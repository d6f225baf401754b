// Building definitions — immutable templates shared by all instances.
package building

import (
	"fmt"

	"github.com/talgya/crownworks/internal/resource"
)

// WorkerSlot describes one archetype's labor requirement within a
// definition. Min 0 means the slot is optional; Max 0 means unbounded.
type WorkerSlot struct {
	Archetype  Archetype
	Min        int
	Max        int
	Efficiency float64 // per-worker output multiplier for this slot
	Required   bool    // filled during allocation phase 1

	// Per-worker daily growth contributions, reported to the
	// population collaborator alongside employment.
	EducationGrowth float64
	WealthGrowth    float64
}

// Definition is the immutable template for one building type. Loaded once
// at startup from the catalog and never mutated at runtime.
type Definition struct {
	Name     string
	Category Category

	ConstructionDays int
	BuildCost        map[resource.Kind]int64
	Maintenance      map[resource.Kind]int64

	// Production curves: Base applies at minimum staffing, Max at
	// optimal staffing. Resources present only in Base are not
	// worker-ratio scaled.
	BaseProduction map[resource.Kind]int64
	MaxProduction  map[resource.Kind]int64

	Slots []WorkerSlot

	// Hub/hublet attachment schema.
	IsHub          bool
	HubletCapacity int
	IsHublet       bool
	// RequiredHubCategories restricts which hub categories this hublet
	// may attach to. Empty means any hub.
	RequiredHubCategories []Category

	BaseEfficiency   float64
	PopulationGrowth float64
}

// RequiresWorkers reports whether the definition has any worker slots.
// Definitions without slots produce their base curve unmodified.
func (d *Definition) RequiresWorkers() bool { return len(d.Slots) > 0 }

// TotalMinWorkers is the sum of all slot minimums — staffing below this
// yields zero production.
func (d *Definition) TotalMinWorkers() int {
	total := 0
	for _, s := range d.Slots {
		total += s.Min
	}
	return total
}

// TotalOptimalWorkers is the sum of all slot maximums. The second return
// is false when any slot is unbounded (Max 0), in which case the worker
// ratio is treated as 1.
func (d *Definition) TotalOptimalWorkers() (int, bool) {
	total := 0
	for _, s := range d.Slots {
		if s.Max == 0 {
			return 0, false
		}
		total += s.Max
	}
	return total, true
}

// SlotFor returns the slot for the given archetype, or nil if the
// definition has none.
func (d *Definition) SlotFor(a Archetype) *WorkerSlot {
	for i := range d.Slots {
		if d.Slots[i].Archetype == a {
			return &d.Slots[i]
		}
	}
	return nil
}

// AcceptsHubCategory reports whether a hublet with this definition may
// attach to a hub of the given category.
func (d *Definition) AcceptsHubCategory(c Category) bool {
	if len(d.RequiredHubCategories) == 0 {
		return true
	}
	for _, rc := range d.RequiredHubCategories {
		if rc == c || rc == CategoryAll {
			return true
		}
	}
	return false
}

// Validate checks structural invariants on a loaded definition.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("definition has empty name")
	}
	if d.ConstructionDays < 0 {
		return fmt.Errorf("%s: construction days must be >= 0", d.Name)
	}
	if d.BaseEfficiency <= 0 {
		return fmt.Errorf("%s: base efficiency must be > 0", d.Name)
	}
	for i, s := range d.Slots {
		if !s.Archetype.Valid() {
			return fmt.Errorf("%s: slot %d has invalid archetype", d.Name, i)
		}
		if s.Min < 0 || s.Max < 0 {
			return fmt.Errorf("%s: slot %d has negative worker bounds", d.Name, i)
		}
		if s.Max > 0 && s.Min > s.Max {
			return fmt.Errorf("%s: slot %d min %d exceeds max %d", d.Name, i, s.Min, s.Max)
		}
		if s.Efficiency <= 0 {
			return fmt.Errorf("%s: slot %d efficiency must be > 0", d.Name, i)
		}
	}
	if d.IsHub && d.HubletCapacity <= 0 {
		return fmt.Errorf("%s: hub must declare a positive hublet capacity", d.Name)
	}
	if d.IsHub && d.IsHublet {
		return fmt.Errorf("%s: cannot be both hub and hublet", d.Name)
	}
	return nil
}
