// Building instances — mutable runtime records and the construction
// state machine.
package building

import (
	"github.com/talgya/crownworks/internal/world"
)

// InstanceID is a unique, monotonically assigned identifier. Allocation
// priority follows construction order, so ids double as the ordering key.
type InstanceID uint64

// State is the construction/production state of an instance.
type State uint8

const (
	StateUnderConstruction State = iota
	StateCompleted
	// StatePaused is reserved for future siege/pause mechanics; no
	// transition reaches it today.
	StatePaused
)

// String returns a log-friendly state name.
func (s State) String() string {
	switch s {
	case StateUnderConstruction:
		return "under_construction"
	case StateCompleted:
		return "completed"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// Instance is one constructed (or constructing) building. The allocation
// engine is the sole writer of its assigned-worker map.
type Instance struct {
	ID           InstanceID
	SettlementID uint64
	Definition   *Definition
	Position     world.HexCoord

	State         State
	DaysRemaining int
	CostPaid      bool

	Active     bool
	Efficiency float64 // instance-local multiplier on top of the definition's

	assigned [ArchetypeCount]int
	total    int

	// Hub/hublet links, by id. HubID is nil when unattached.
	HubID     *InstanceID
	HubletIDs []InstanceID
}

// NewInstance creates an instance for the given definition. Definitions
// with zero construction duration complete immediately.
func NewInstance(id InstanceID, settlementID uint64, def *Definition, pos world.HexCoord) *Instance {
	inst := &Instance{
		ID:           id,
		SettlementID: settlementID,
		Definition:   def,
		Position:     pos,
		Efficiency:   1.0,
	}
	if def.ConstructionDays > 0 {
		inst.State = StateUnderConstruction
		inst.DaysRemaining = def.ConstructionDays
	} else {
		inst.State = StateCompleted
		inst.Active = true
	}
	return inst
}

// AdvanceConstruction progresses construction by one day. Returns false
// when the instance is not under construction (no-op, never an error).
// Completion sets the instance active with zero days remaining.
func (inst *Instance) AdvanceConstruction() bool {
	if inst.State != StateUnderConstruction {
		return false
	}
	inst.DaysRemaining--
	if inst.DaysRemaining <= 0 {
		inst.DaysRemaining = 0
		inst.State = StateCompleted
		inst.Active = true
	}
	return true
}

// Progress returns construction progress in [0, 1].
func (inst *Instance) Progress() float64 {
	total := inst.Definition.ConstructionDays
	if total <= 0 || inst.State != StateUnderConstruction {
		return 1.0
	}
	return float64(total-inst.DaysRemaining) / float64(total)
}

// CanCancel reports whether the instance may be cancelled: only while
// under construction and only after its cost was paid.
func (inst *Instance) CanCancel() bool {
	return inst.State == StateUnderConstruction && inst.CostPaid
}

// RefundFraction is the share of the build cost returned on cancellation:
// 100% at no progress, sliding linearly to 50% at full progress.
func (inst *Instance) RefundFraction() float64 {
	return 1.0 - 0.5*inst.Progress()
}

// Producing reports whether the instance generates production and incurs
// maintenance this tick. Inactive-but-completed buildings produce nothing.
func (inst *Instance) Producing() bool {
	return inst.State == StateCompleted && inst.Active
}

// Assigned returns the worker count assigned for one archetype.
func (inst *Instance) Assigned(a Archetype) int {
	if !a.Valid() {
		return 0
	}
	return inst.assigned[a]
}

// TotalAssigned returns the instance's total assigned workers.
func (inst *Instance) TotalAssigned() int { return inst.total }

// SetWorkers replaces the assigned count for one archetype. Negative
// counts clamp to zero.
func (inst *Instance) SetWorkers(a Archetype, count int) {
	if !a.Valid() {
		return
	}
	if count < 0 {
		count = 0
	}
	inst.total += count - inst.assigned[a]
	inst.assigned[a] = count
}

// AddWorkers adjusts the assigned count for one archetype by delta,
// clamping at zero. Returns the actual change applied.
func (inst *Instance) AddWorkers(a Archetype, delta int) int {
	if !a.Valid() {
		return 0
	}
	next := inst.assigned[a] + delta
	if next < 0 {
		next = 0
	}
	applied := next - inst.assigned[a]
	inst.assigned[a] = next
	inst.total += applied
	return applied
}

// ClearWorkers removes all assigned workers.
func (inst *Instance) ClearWorkers() {
	inst.assigned = [ArchetypeCount]int{}
	inst.total = 0
}

// AssignedWorkers returns a copy of the assignment map, omitting zero
// entries. Used for reporting and persistence.
func (inst *Instance) AssignedWorkers() map[Archetype]int {
	out := make(map[Archetype]int)
	for a, n := range inst.assigned {
		if n > 0 {
			out[Archetype(a)] = n
		}
	}
	return out
}

// AverageEfficiency is the assignment-weighted mean of slot efficiency
// multipliers. Archetypes without a matching slot count at 1.0. Returns
// 0 when no workers are assigned.
func (inst *Instance) AverageEfficiency() float64 {
	if inst.total == 0 {
		return 0
	}
	sum := 0.0
	for a, n := range inst.assigned {
		if n == 0 {
			continue
		}
		eff := 1.0
		if slot := inst.Definition.SlotFor(Archetype(a)); slot != nil {
			eff = slot.Efficiency
		}
		sum += eff * float64(n)
	}
	return sum / float64(inst.total)
}

// WorkerRatio is assigned/optimal clamped to [0, 1]; 1 when any slot is
// unbounded or the definition needs no workers.
func (inst *Instance) WorkerRatio() float64 {
	optimal, bounded := inst.Definition.TotalOptimalWorkers()
	if !bounded || optimal == 0 {
		return 1.0
	}
	ratio := float64(inst.total) / float64(optimal)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}
