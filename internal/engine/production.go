// Production calculation — staffing curves, efficiency, season,
// terrain, and modifier stacking.
package engine

import (
	"math"

	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/modifier"
	"github.com/talgya/crownworks/internal/resource"
)

// seasonalEpsilon: multipliers this close to 1.0 are skipped.
const seasonalEpsilon = 1e-9

// productionContext carries the per-day inputs shared by every building
// in one settlement's production pass.
type productionContext struct {
	day       int
	modifiers []modifier.Modifier
	// seasonal returns the combined external multiplier (season ×
	// terrain fertility) for one resource at the building's position.
	seasonal func(inst *building.Instance, k resource.Kind) float64
}

// computeProduction returns one building's per-resource output for the
// day. Staffing below the definition's total minimum yields nothing.
func computeProduction(inst *building.Instance, ctx productionContext) map[resource.Kind]int64 {
	def := inst.Definition
	out := make(map[resource.Kind]int64)

	// Definitions without worker slots produce their base curve as-is;
	// only seasonal and modifier adjustments apply. A max curve on such
	// a definition is ignored — there is no staffing to climb it.
	if !def.RequiresWorkers() {
		for k, baseAmount := range def.BaseProduction {
			out[k] = finishResource(inst, k, float64(baseAmount), ctx)
		}
		return trimZero(out)
	}

	if inst.TotalAssigned() < def.TotalMinWorkers() {
		return nil
	}
	scale := inst.AverageEfficiency() * def.BaseEfficiency * inst.Efficiency
	ratio := inst.WorkerRatio()

	// Worker-ratio scaled resources: everything in the max curve.
	for k, maxAmount := range def.MaxProduction {
		base := float64(def.BaseProduction[k])
		raw := lerp(base, float64(maxAmount), ratio) * scale
		out[k] = finishResource(inst, k, raw, ctx)
	}

	// Base-only resources scale with efficiency alone.
	for k, baseAmount := range def.BaseProduction {
		if _, scaled := def.MaxProduction[k]; scaled {
			continue
		}
		raw := float64(baseAmount) * scale
		out[k] = finishResource(inst, k, raw, ctx)
	}

	return trimZero(out)
}

func trimZero(out map[resource.Kind]int64) map[resource.Kind]int64 {
	for k, v := range out {
		if v <= 0 {
			delete(out, k)
		}
	}
	return out
}

// finishResource applies the external multiplier and the modifier stack,
// then rounds.
func finishResource(inst *building.Instance, k resource.Kind, raw float64, ctx productionContext) int64 {
	if ctx.seasonal != nil {
		if m := ctx.seasonal(inst, k); math.Abs(m-1.0) > seasonalEpsilon {
			raw *= m
		}
	}

	kind := k
	raw = modifier.Apply(raw, ctx.modifiers, modifier.Query{
		Type:     modifier.EffectResourceProduction,
		Day:      ctx.day,
		Resource: &kind,
		Category: inst.Definition.Category,
		Building: inst.ID,
	})

	v := int64(math.Round(raw))
	if v < 0 {
		return 0
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// growthContributions sums a staffed building's per-worker education and
// wealth growth, reported to the population collaborator.
func growthContributions(inst *building.Instance) (education, wealth float64) {
	for _, slot := range inst.Definition.Slots {
		n := float64(inst.Assigned(slot.Archetype))
		education += slot.EducationGrowth * n
		wealth += slot.WealthGrowth * n
	}
	return education, wealth
}
