// Construction command surface — construct, cancel, worker overrides,
// and hub attachment.
package engine

import (
	"errors"
	"math"

	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/resource"
	"github.com/talgya/crownworks/internal/world"
)

var (
	// ErrUnknownSettlement: the settlement id is not registered.
	ErrUnknownSettlement = errors.New("unknown settlement")
	// ErrUnknownDefinition: the catalog has no such building.
	ErrUnknownDefinition = errors.New("unknown building definition")
	// ErrNoSuchInstance: the building instance does not exist.
	ErrNoSuchInstance = errors.New("no such building instance")
	// ErrUnaffordable: the settlement cannot pay the build cost. Nothing
	// is mutated.
	ErrUnaffordable = errors.New("insufficient resources")
)

// Construct pays the build cost and creates a building instance. Fails
// without mutation when the settlement cannot afford the cost.
// Zero-duration definitions complete immediately.
func (d *Driver) Construct(settlementID uint64, defName string, pos world.HexCoord) (*building.Instance, error) {
	s := d.settlements[settlementID]
	if s == nil {
		return nil, ErrUnknownSettlement
	}
	def, ok := d.catalog.Get(defName)
	if !ok {
		return nil, ErrUnknownDefinition
	}

	if err := d.payCost(settlementID, def.BuildCost); err != nil {
		return nil, err
	}

	inst := building.NewInstance(d.nextInstance, settlementID, def, pos)
	inst.CostPaid = true
	d.nextInstance++
	s.instances[inst.ID] = inst
	d.instanceHome[inst.ID] = settlementID

	category := "construction"
	desc := def.Name + " construction started"
	if inst.State == building.StateCompleted {
		desc = def.Name + " built"
		s.needsAllocation = true
	}
	d.emit(Event{Day: d.day, SettlementID: settlementID, Category: category, Description: desc})

	return inst, nil
}

// payCost spends each cost entry, rolling back on a partial failure so a
// failed construct mutates nothing.
func (d *Driver) payCost(settlementID uint64, cost map[resource.Kind]int64) error {
	paid := make(map[resource.Kind]int64, len(cost))
	for k, amount := range cost {
		ok, err := d.store.Spend(settlementID, k, amount)
		if err == nil && ok {
			paid[k] = amount
			continue
		}
		for pk, pa := range paid {
			d.store.Deposit(settlementID, pk, pa)
		}
		if err != nil {
			return err
		}
		return ErrUnaffordable
	}
	return nil
}

// CancelConstruction removes an under-construction building and refunds
// part of its cost: the refund fraction slides from 100% (no progress)
// to 50% (fully built). Returns false, without error, when the instance
// is not cancellable — cancelling a completed building is a no-op.
func (d *Driver) CancelConstruction(id building.InstanceID) (bool, error) {
	s, inst, err := d.find(id)
	if err != nil {
		return false, err
	}
	if !inst.CanCancel() {
		return false, nil
	}

	fraction := inst.RefundFraction()
	for k, amount := range inst.Definition.BuildCost {
		refund := int64(math.Floor(float64(amount) * fraction))
		d.store.Deposit(s.ID, k, refund)
	}

	delete(s.instances, id)
	delete(d.instanceHome, id)
	d.emit(Event{
		Day:          d.day,
		SettlementID: s.ID,
		Category:     "construction",
		Description:  inst.Definition.Name + " construction cancelled",
	})
	return true, nil
}

// AssignWorkers manually sets a building's worker count for one
// archetype, outside the allocation engine. Overrides mark the
// settlement dirty: the next day tick reruns the full-recompute
// allocation, which supersedes the manual assignment.
func (d *Driver) AssignWorkers(id building.InstanceID, a building.Archetype, count int) error {
	s, inst, err := d.find(id)
	if err != nil {
		return err
	}
	inst.SetWorkers(a, count)
	s.needsAllocation = true
	return nil
}

// RemoveWorkers manually removes up to count workers of one archetype
// and marks the settlement dirty. Returns the number removed.
func (d *Driver) RemoveWorkers(id building.InstanceID, a building.Archetype, count int) (int, error) {
	s, inst, err := d.find(id)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		count = 0
	}
	s.needsAllocation = true
	return -inst.AddWorkers(a, -count), nil
}

// ClearWorkers removes all workers from a building and marks the
// settlement dirty.
func (d *Driver) ClearWorkers(id building.InstanceID) error {
	s, inst, err := d.find(id)
	if err != nil {
		return err
	}
	inst.ClearWorkers()
	s.needsAllocation = true
	return nil
}

// MarkLaborChanged flags a settlement for reallocation on the next day
// tick (population growth, casualties, migration).
func (d *Driver) MarkLaborChanged(settlementID uint64) error {
	s := d.settlements[settlementID]
	if s == nil {
		return ErrUnknownSettlement
	}
	s.needsAllocation = true
	return nil
}

// AttachHublet attaches a hublet building to a hub. Both must belong to
// the same settlement.
func (d *Driver) AttachHublet(hubID, hubletID building.InstanceID) (bool, error) {
	_, hub, err := d.find(hubID)
	if err != nil {
		return false, err
	}
	_, hublet, err := d.find(hubletID)
	if err != nil {
		return false, err
	}
	if hub.SettlementID != hublet.SettlementID {
		return false, nil
	}
	return building.Attach(hub, hublet), nil
}

// DetachHublet detaches a hublet from its hub.
func (d *Driver) DetachHublet(hubID, hubletID building.InstanceID) (bool, error) {
	_, hub, err := d.find(hubID)
	if err != nil {
		return false, err
	}
	_, hublet, err := d.find(hubletID)
	if err != nil {
		return false, err
	}
	return building.Detach(hub, hublet), nil
}

// Instance looks up a building by id.
func (d *Driver) Instance(id building.InstanceID) (*building.Instance, error) {
	_, inst, err := d.find(id)
	return inst, err
}

func (d *Driver) find(id building.InstanceID) (*Settlement, *building.Instance, error) {
	home, ok := d.instanceHome[id]
	if !ok {
		return nil, nil, ErrNoSuchInstance
	}
	s := d.settlements[home]
	inst := s.instances[id]
	if inst == nil {
		return nil, nil, ErrNoSuchInstance
	}
	return s, inst, nil
}
