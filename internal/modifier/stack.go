// Modifier stacking — flat bonuses sum, percentages compound as a single
// multiplier: result = (base + flat) × (1 + Σ pct/100).
package modifier

import (
	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/resource"
)

// Query selects which effects apply. Zero-valued filter fields are
// wildcards on the query side; effect-side filters must still match.
type Query struct {
	Type EffectType
	Day  int

	Resource *resource.Kind
	Category building.Category
	Building building.InstanceID // 0 when not querying for a specific instance
}

// Apply folds all matching effects over base.
func Apply(base float64, mods []Modifier, q Query) float64 {
	flat, pct := Aggregate(mods, q)
	return (base + flat) * pct
}

// Aggregate returns the summed flat bonus and the combined percentage
// multiplier over all matching effects.
func Aggregate(mods []Modifier, q Query) (flat, pct float64) {
	pct = 1.0
	for i := range mods {
		m := &mods[i]
		if !m.ActiveOn(q.Day) {
			continue
		}
		for j := range m.Effects {
			e := &m.Effects[j]
			if !matches(e, q) {
				continue
			}
			if e.IsPercentage {
				pct += e.Value / 100.0
			} else {
				flat += e.Value
			}
		}
	}
	return flat, pct
}

func matches(e *Effect, q Query) bool {
	if e.Type != q.Type {
		return false
	}
	if e.Resource != nil {
		if q.Resource == nil || *e.Resource != *q.Resource {
			return false
		}
	}
	// Building scoping: a specific-building target overrides the
	// category filter; CategoryAll matches every building.
	if e.Building != nil {
		return q.Building != 0 && *e.Building == q.Building
	}
	if e.Category != building.CategoryAll && e.Category != q.Category {
		return false
	}
	return true
}

// ExpireTimed removes timed modifiers that have lapsed by day, preserving
// order. The returned slice aliases mods' backing array.
func ExpireTimed(mods []Modifier, day int) []Modifier {
	out := mods[:0]
	for _, m := range mods {
		if m.Duration == DurationTimed && !m.ActiveOn(day) {
			continue
		}
		out = append(out, m)
	}
	return out
}
