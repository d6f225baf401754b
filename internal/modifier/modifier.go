// Package modifier provides named bundles of flat/percentage effects and
// the stacking calculus that folds them into a single adjustment. Culture,
// religion, and event systems supply modifiers; the economy core only
// reads them.
package modifier

import (
	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/resource"
)

// EffectType tags what simulation value an effect adjusts.
type EffectType uint8

const (
	EffectResourceProduction EffectType = iota
	EffectResourceUpkeep
	EffectWorkerEfficiency
	EffectPopulationGrowth
	EffectConstructionSpeed
)

// String returns a log-friendly effect type name.
func (t EffectType) String() string {
	switch t {
	case EffectResourceProduction:
		return "resource_production"
	case EffectResourceUpkeep:
		return "resource_upkeep"
	case EffectWorkerEfficiency:
		return "worker_efficiency"
	case EffectPopulationGrowth:
		return "population_growth"
	case EffectConstructionSpeed:
		return "construction_speed"
	}
	return "unknown"
}

// DurationType classifies how a modifier expires.
type DurationType uint8

const (
	DurationPermanent DurationType = iota
	DurationTimed
	// DurationConditional is a placeholder — conditional modifiers are
	// treated as always-active today.
	DurationConditional
)

// Effect is one adjustment within a modifier. Nil filter fields match
// everything; Category's zero value (CategoryAll) likewise matches every
// building category.
type Effect struct {
	Type         EffectType
	Value        float64
	IsPercentage bool

	Resource     *resource.Kind
	Archetype    *building.Archetype
	Category     building.Category
	Building     *building.InstanceID
	TechCategory string
}

// Modifier is a named bundle of effects with a duration policy.
type Modifier struct {
	Name     string
	Effects  []Effect
	Duration DurationType

	// Timed bookkeeping: active while day < AppliedDay + DurationDays.
	AppliedDay   int
	DurationDays int
}

// ActiveOn reports whether the modifier contributes on the given day.
func (m *Modifier) ActiveOn(day int) bool {
	switch m.Duration {
	case DurationTimed:
		return day < m.AppliedDay+m.DurationDays
	default:
		// Permanent never expires; conditional is always-active for now.
		return true
	}
}

// Source supplies modifiers for a context (settlement, realm). Culture,
// religion, and event systems implement it; the core never mutates the
// returned slice.
type Source interface {
	Modifiers(contextID uint64) []Modifier
}

// StaticSource is a fixed modifier list, useful for tests and simple
// suppliers.
type StaticSource []Modifier

// Modifiers implements Source.
func (s StaticSource) Modifiers(uint64) []Modifier { return s }
