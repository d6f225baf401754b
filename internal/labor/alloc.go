// Worker allocation — a full recompute in three priority phases.
//
// Every pass clears all assignments and rebuilds them from scratch; no
// incremental state survives between passes. That keeps the algorithm
// deterministic: fixed inputs always produce identical assignments.
package labor

import (
	"sort"

	"github.com/talgya/crownworks/internal/building"
)

// Engine allocates a settlement's labor across its buildings.
type Engine struct {
	Source Source
}

// NewEngine creates an allocation engine over a population source.
func NewEngine(src Source) *Engine {
	return &Engine{Source: src}
}

// Allocate reassigns all workers for one settlement. Instances should be
// the settlement's completed, active buildings; earlier-built instances
// (lower ids) are served first. Shortfalls are left unfilled — under-
// supply is not an error.
func (e *Engine) Allocate(settlementID uint64, instances []*building.Instance) {
	// Snapshot availability once; the pool is read-then-decremented
	// only through this local copy during the pass.
	var avail, before [building.ArchetypeCount]int
	for _, a := range building.Archetypes() {
		n := e.Source.Available(settlementID, a)
		avail[a] = n
		before[a] = n
	}

	ordered := make([]*building.Instance, len(instances))
	copy(ordered, instances)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, inst := range ordered {
		inst.ClearWorkers()
	}

	e.fillRequired(ordered, &avail)
	e.fillToMinimum(ordered, &avail)
	e.fillToOptimal(ordered, &avail)

	for _, a := range building.Archetypes() {
		e.Source.ReportEmployment(settlementID, a, before[a]-avail[a])
	}
}

// fillRequired (phase 1) staffs each required slot up to its minimum, in
// construction order, slot declaration order.
func (e *Engine) fillRequired(ordered []*building.Instance, avail *[building.ArchetypeCount]int) {
	for _, inst := range ordered {
		for _, slot := range inst.Definition.Slots {
			if !slot.Required || slot.Min <= 0 {
				continue
			}
			n := slot.Min
			if avail[slot.Archetype] < n {
				n = avail[slot.Archetype]
			}
			if n <= 0 {
				continue
			}
			inst.AddWorkers(slot.Archetype, n)
			avail[slot.Archetype] -= n
		}
	}
}

// fillToMinimum (phase 2) tops each building up to its definition's total
// minimum worker count, drawing from any slot in declaration order.
func (e *Engine) fillToMinimum(ordered []*building.Instance, avail *[building.ArchetypeCount]int) {
	for _, inst := range ordered {
		shortfall := inst.Definition.TotalMinWorkers() - inst.TotalAssigned()
		for i := range inst.Definition.Slots {
			if shortfall <= 0 {
				break
			}
			slot := &inst.Definition.Slots[i]
			n := shortfall
			if avail[slot.Archetype] < n {
				n = avail[slot.Archetype]
			}
			if room, bounded := slotRoom(inst, slot); bounded && n > room {
				n = room
			}
			if n <= 0 {
				continue
			}
			inst.AddWorkers(slot.Archetype, n)
			avail[slot.Archetype] -= n
			shortfall -= n
		}
	}
}

// fillToOptimal (phase 3) grows each building toward its total optimal
// count, preferring the most efficient slots first.
func (e *Engine) fillToOptimal(ordered []*building.Instance, avail *[building.ArchetypeCount]int) {
	for _, inst := range ordered {
		slots := make([]*building.WorkerSlot, len(inst.Definition.Slots))
		for i := range inst.Definition.Slots {
			slots[i] = &inst.Definition.Slots[i]
		}
		// Highest efficiency first; declaration order breaks ties.
		sort.SliceStable(slots, func(i, j int) bool {
			return slots[i].Efficiency > slots[j].Efficiency
		})

		for _, slot := range slots {
			n := avail[slot.Archetype]
			if room, bounded := slotRoom(inst, slot); bounded && n > room {
				n = room
			}
			if n <= 0 {
				continue
			}
			inst.AddWorkers(slot.Archetype, n)
			avail[slot.Archetype] -= n
		}
	}
}

// slotRoom returns the remaining capacity of a slot on an instance; the
// second return is false for unbounded slots (Max 0).
func slotRoom(inst *building.Instance, slot *building.WorkerSlot) (int, bool) {
	if slot.Max == 0 {
		return 0, false
	}
	room := slot.Max - inst.Assigned(slot.Archetype)
	if room < 0 {
		room = 0
	}
	return room, true
}

// Deallocate removes up to count workers from the settlement's buildings
// after a labor loss. Latest-built instances lose workers first. Within
// an instance, non-required slots empty before required ones, and
// required slots stay at their minimum unless nothing else remains.
// Returns the number of workers actually removed.
func Deallocate(instances []*building.Instance, count int) int {
	if count <= 0 {
		return 0
	}
	ordered := make([]*building.Instance, len(instances))
	copy(ordered, instances)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID > ordered[j].ID })

	removed := 0

	// Pass 1: non-required assignments (including archetypes with no
	// matching slot at all).
	for _, inst := range ordered {
		for _, a := range building.Archetypes() {
			if removed >= count {
				return removed
			}
			slot := inst.Definition.SlotFor(a)
			if slot != nil && slot.Required {
				continue
			}
			removed += -inst.AddWorkers(a, -(count - removed))
		}
	}

	// Pass 2: required slots down to their minimum.
	for _, inst := range ordered {
		for _, a := range building.Archetypes() {
			if removed >= count {
				return removed
			}
			slot := inst.Definition.SlotFor(a)
			if slot == nil || !slot.Required {
				continue
			}
			spare := inst.Assigned(a) - slot.Min
			if spare <= 0 {
				continue
			}
			take := count - removed
			if take > spare {
				take = spare
			}
			removed += -inst.AddWorkers(a, -take)
		}
	}

	// Pass 3: below-minimum removal, only when the loss cannot be
	// absorbed anywhere else.
	for _, inst := range ordered {
		for _, a := range building.Archetypes() {
			if removed >= count {
				return removed
			}
			removed += -inst.AddWorkers(a, -(count - removed))
		}
	}
	return removed
}
