package engine

import (
	"testing"

	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/modifier"
	"github.com/talgya/crownworks/internal/resource"
	"github.com/talgya/crownworks/internal/world"
)

func testFarmDef() *building.Definition {
	return &building.Definition{
		Name:           "grain_farm",
		Category:       building.CategoryAgriculture,
		BaseEfficiency: 1.0,
		BaseProduction: map[resource.Kind]int64{resource.Food: 10},
		MaxProduction:  map[resource.Kind]int64{resource.Food: 40},
		Slots: []building.WorkerSlot{
			{Archetype: building.Peasant, Min: 5, Max: 20, Efficiency: 1.0, Required: true},
		},
	}
}

func staffedInstance(def *building.Definition, workers int) *building.Instance {
	inst := building.NewInstance(1, 1, def, world.HexCoord{})
	inst.SetWorkers(building.Peasant, workers)
	return inst
}

func TestProductionFloorBelowMinimum(t *testing.T) {
	inst := staffedInstance(testFarmDef(), 4) // below min of 5
	out := computeProduction(inst, productionContext{})
	if len(out) != 0 {
		t.Errorf("below-minimum staffing produced %v, want nothing", out)
	}
}

func TestProductionHalfStaffedLerp(t *testing.T) {
	// min=5, optimal=20, base food 10, max food 40; 10 workers gives
	// ratio 0.5 and food = round(lerp(10,40,0.5)) = 25.
	inst := staffedInstance(testFarmDef(), 10)
	out := computeProduction(inst, productionContext{})
	if got := out[resource.Food]; got != 25 {
		t.Errorf("food = %d, want 25", got)
	}
}

func TestProductionCeilingAtOptimal(t *testing.T) {
	inst := staffedInstance(testFarmDef(), 20)
	out := computeProduction(inst, productionContext{})
	if got := out[resource.Food]; got != 40 {
		t.Errorf("food at optimal staffing = %d, want max curve 40", got)
	}
}

func TestProductionNoWorkerDefinitionUsesBaseCurve(t *testing.T) {
	def := &building.Definition{
		Name:           "shrine",
		Category:       building.CategoryReligious,
		BaseEfficiency: 1.3, // must not modify a worker-free base curve
		BaseProduction: map[resource.Kind]int64{resource.Piety: 5},
	}
	inst := building.NewInstance(1, 1, def, world.HexCoord{})
	out := computeProduction(inst, productionContext{})
	if got := out[resource.Piety]; got != 5 {
		t.Errorf("piety = %d, want base curve 5", got)
	}
}

func TestProductionNoWorkerDefinitionIgnoresMaxCurve(t *testing.T) {
	// A slotless definition with a declared max curve still emits only
	// its base curve — without staffing there is no ratio to climb it.
	def := &building.Definition{
		Name:           "reliquary",
		Category:       building.CategoryReligious,
		BaseEfficiency: 1.0,
		BaseProduction: map[resource.Kind]int64{resource.Piety: 10},
		MaxProduction:  map[resource.Kind]int64{resource.Piety: 40},
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	inst := building.NewInstance(1, 1, def, world.HexCoord{})
	out := computeProduction(inst, productionContext{})
	if got := out[resource.Piety]; got != 10 {
		t.Errorf("piety = %d, want base curve 10", got)
	}
}

func TestProductionBaseOnlyResourceScalesWithEfficiency(t *testing.T) {
	def := testFarmDef()
	def.BaseProduction[resource.Prestige] = 10 // not in max curve
	def.Slots[0].Efficiency = 1.2

	inst := staffedInstance(def, 20)
	out := computeProduction(inst, productionContext{})
	// Prestige skips the lerp: 10 × avgEff(1.2) = 12.
	if got := out[resource.Prestige]; got != 12 {
		t.Errorf("prestige = %d, want 12", got)
	}
	// Food still ratio-scales: 40 × 1.2 = 48.
	if got := out[resource.Food]; got != 48 {
		t.Errorf("food = %d, want 48", got)
	}
}

func TestProductionSeasonalMultiplier(t *testing.T) {
	inst := staffedInstance(testFarmDef(), 20)
	ctx := productionContext{
		seasonal: func(_ *building.Instance, k resource.Kind) float64 {
			return SeasonalProductionMod(SeasonWinter, k)
		},
	}
	out := computeProduction(inst, ctx)
	if got := out[resource.Food]; got != 20 {
		t.Errorf("winter food = %d, want 40 × 0.5 = 20", got)
	}
}

func TestProductionModifierStack(t *testing.T) {
	food := resource.Food
	inst := staffedInstance(testFarmDef(), 20)
	ctx := productionContext{
		modifiers: []modifier.Modifier{
			{
				Name: "farming_edict",
				Effects: []modifier.Effect{
					{Type: modifier.EffectResourceProduction, Value: 10, Resource: &food,
						Category: building.CategoryAgriculture},
					{Type: modifier.EffectResourceProduction, Value: 20, IsPercentage: true,
						Resource: &food},
				},
			},
		},
	}
	out := computeProduction(inst, ctx)
	// (40 + 10) × 1.2 = 60.
	if got := out[resource.Food]; got != 60 {
		t.Errorf("modified food = %d, want 60", got)
	}
}

func TestProductionNegativeModifierClampsToZero(t *testing.T) {
	inst := staffedInstance(testFarmDef(), 20)
	ctx := productionContext{
		modifiers: []modifier.Modifier{
			{
				Name: "blight",
				Effects: []modifier.Effect{
					{Type: modifier.EffectResourceProduction, Value: -200, IsPercentage: true},
				},
			},
		},
	}
	out := computeProduction(inst, ctx)
	if got := out[resource.Food]; got != 0 {
		t.Errorf("blighted food = %d, want clamp to 0", got)
	}
}

func TestAverageEfficiencyDefaultsForUnmatchedArchetype(t *testing.T) {
	def := testFarmDef()
	inst := staffedInstance(def, 10)
	inst.SetWorkers(building.Merchant, 10) // no merchant slot: efficiency 1.0

	// 20 workers total, all at effective efficiency 1.0.
	if got := inst.AverageEfficiency(); got != 1.0 {
		t.Errorf("average efficiency = %f, want 1.0", got)
	}
}
