package building

import (
	"testing"

	"github.com/talgya/crownworks/internal/world"
)

func TestConstructionStateMachine(t *testing.T) {
	def := &Definition{Name: "keep", ConstructionDays: 3, BaseEfficiency: 1}
	inst := NewInstance(1, 1, def, world.HexCoord{})

	if inst.State != StateUnderConstruction || inst.Active {
		t.Fatal("new instance with duration must start under construction, inactive")
	}
	if inst.DaysRemaining != 3 {
		t.Fatalf("days remaining = %d, want 3", inst.DaysRemaining)
	}

	prev := inst.DaysRemaining
	for inst.State == StateUnderConstruction {
		if !inst.AdvanceConstruction() {
			t.Fatal("advance returned false while under construction")
		}
		if inst.DaysRemaining > prev {
			t.Fatal("days remaining increased")
		}
		prev = inst.DaysRemaining
	}

	if inst.State != StateCompleted || !inst.Active || inst.DaysRemaining != 0 {
		t.Errorf("completion state wrong: %s active=%v remaining=%d",
			inst.State, inst.Active, inst.DaysRemaining)
	}
	if inst.AdvanceConstruction() {
		t.Error("advance on a completed instance must return false")
	}
}

func TestZeroDurationDefinition(t *testing.T) {
	def := &Definition{Name: "tent", BaseEfficiency: 1}
	inst := NewInstance(1, 1, def, world.HexCoord{})
	if inst.State != StateCompleted || !inst.Active {
		t.Error("zero-duration definition must complete immediately")
	}
	if inst.Progress() != 1.0 {
		t.Errorf("progress = %f, want 1.0", inst.Progress())
	}
}

func TestCancelRequiresPaidAndConstructing(t *testing.T) {
	def := &Definition{Name: "keep", ConstructionDays: 2, BaseEfficiency: 1}

	unpaid := NewInstance(1, 1, def, world.HexCoord{})
	if unpaid.CanCancel() {
		t.Error("unpaid instance must not be cancellable")
	}

	paid := NewInstance(2, 1, def, world.HexCoord{})
	paid.CostPaid = true
	if !paid.CanCancel() {
		t.Error("paid under-construction instance must be cancellable")
	}
	paid.AdvanceConstruction()
	paid.AdvanceConstruction()
	if paid.CanCancel() {
		t.Error("completed instance must not be cancellable")
	}
}

func TestWorkerBookkeeping(t *testing.T) {
	def := &Definition{
		Name:           "mine",
		BaseEfficiency: 1,
		Slots: []WorkerSlot{
			{Archetype: Laborer, Min: 2, Max: 10, Efficiency: 1.0, Required: true},
		},
	}
	inst := NewInstance(1, 1, def, world.HexCoord{})

	inst.SetWorkers(Laborer, 4)
	inst.AddWorkers(Artisan, 2)
	if inst.TotalAssigned() != 6 {
		t.Errorf("total = %d, want 6", inst.TotalAssigned())
	}

	if applied := inst.AddWorkers(Artisan, -5); applied != -2 {
		t.Errorf("over-removal applied %d, want -2 (clamped at zero)", applied)
	}
	if inst.TotalAssigned() != 4 {
		t.Errorf("total after clamp = %d, want 4", inst.TotalAssigned())
	}

	inst.ClearWorkers()
	if inst.TotalAssigned() != 0 {
		t.Error("clear left workers assigned")
	}

	m := inst.AssignedWorkers()
	if len(m) != 0 {
		t.Errorf("assignment map = %v, want empty", m)
	}
}

func TestWorkerRatioUnbounded(t *testing.T) {
	def := &Definition{
		Name:           "commons",
		BaseEfficiency: 1,
		Slots: []WorkerSlot{
			{Archetype: Peasant, Min: 0, Max: 0, Efficiency: 1.0},
		},
	}
	inst := NewInstance(1, 1, def, world.HexCoord{})
	if r := inst.WorkerRatio(); r != 1.0 {
		t.Errorf("unbounded ratio = %f, want 1.0", r)
	}
}

func TestDefinitionValidate(t *testing.T) {
	bad := &Definition{
		Name:           "bad_mill",
		BaseEfficiency: 1,
		Slots: []WorkerSlot{
			{Archetype: Peasant, Min: 5, Max: 3, Efficiency: 1},
		},
	}
	if err := bad.Validate(); err == nil {
		t.Error("min > max slot must fail validation")
	}

	unbounded := &Definition{
		Name:           "commons",
		BaseEfficiency: 1,
		Slots: []WorkerSlot{
			{Archetype: Peasant, Min: 5, Max: 0, Efficiency: 1},
		},
	}
	if err := unbounded.Validate(); err != nil {
		t.Errorf("min with unbounded max should validate: %v", err)
	}
}
