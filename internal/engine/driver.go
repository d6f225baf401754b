// Economy driver — one settlement economy per settlement record, advanced
// a day at a time.
package engine

import (
	"log/slog"
	"sort"

	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/labor"
	"github.com/talgya/crownworks/internal/modifier"
	"github.com/talgya/crownworks/internal/resource"
	"github.com/talgya/crownworks/internal/world"
)

// Settlement is one unit of economic work: its buildings, daily ledger,
// and allocation bookkeeping. Settlements are independent — nothing here
// is shared across them.
type Settlement struct {
	ID       uint64
	Name     string
	Position world.HexCoord

	Ledger    *resource.Ledger
	instances map[building.InstanceID]*building.Instance

	// needsAllocation marks that the building set or labor supply
	// changed; the next day tick reruns the allocation engine.
	needsAllocation bool

	// Daily aggregates from completed buildings, for the population
	// collaborator and demographics system.
	GrowthBonus     float64
	EducationGrowth float64
	WealthGrowth    float64
}

// Instances returns the settlement's buildings in construction order.
func (s *Settlement) Instances() []*building.Instance {
	out := make([]*building.Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// producing returns completed, active buildings in construction order.
func (s *Settlement) producing() []*building.Instance {
	out := make([]*building.Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		if inst.Producing() {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Driver orchestrates the per-day economic tick across all settlements.
// Single-threaded by design: one AdvanceDay call runs construction,
// allocation, production, and the ledger merge strictly in that order.
type Driver struct {
	catalog   *building.Catalog
	store     Store
	labor     *labor.Engine
	fertility *world.FertilityField

	sources []modifier.Source
	// timed is the core-owned timed-modifier table, per settlement.
	timed map[uint64][]modifier.Modifier

	settlements map[uint64]*Settlement
	order       []uint64 // settlement processing order (registration order)

	instanceHome map[building.InstanceID]uint64
	nextInstance building.InstanceID

	day    int
	season Season
	year   int

	events []Event
}

// NewDriver wires the economy core to its collaborators.
func NewDriver(cat *building.Catalog, store Store, src labor.Source, fertility *world.FertilityField) *Driver {
	return &Driver{
		catalog:      cat,
		store:        store,
		labor:        labor.NewEngine(src),
		fertility:    fertility,
		timed:        make(map[uint64][]modifier.Modifier),
		settlements:  make(map[uint64]*Settlement),
		instanceHome: make(map[building.InstanceID]uint64),
		nextInstance: 1,
	}
}

// AddSettlement registers a settlement. Registration order is the daily
// processing order.
func (d *Driver) AddSettlement(id uint64, name string, pos world.HexCoord) *Settlement {
	s := &Settlement{
		ID:        id,
		Name:      name,
		Position:  pos,
		Ledger:    resource.NewLedger(),
		instances: make(map[building.InstanceID]*building.Instance),
	}
	d.settlements[id] = s
	d.order = append(d.order, id)
	return s
}

// Settlement returns a registered settlement, or nil.
func (d *Driver) Settlement(id uint64) *Settlement { return d.settlements[id] }

// Settlements returns all settlements in processing order.
func (d *Driver) Settlements() []*Settlement {
	out := make([]*Settlement, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.settlements[id])
	}
	return out
}

// Catalog exposes the building catalog for observation surfaces.
func (d *Driver) Catalog() *building.Catalog { return d.catalog }

// Day returns the last processed day.
func (d *Driver) Day() int { return d.day }

// CurrentSeason returns the season in effect.
func (d *Driver) CurrentSeason() Season { return d.season }

// Year returns the completed-year counter.
func (d *Driver) Year() int { return d.year }

// RegisterModifierSource adds an external modifier supplier (culture,
// religion, events). Sources are read-only to the core.
func (d *Driver) RegisterModifierSource(src modifier.Source) {
	d.sources = append(d.sources, src)
}

// AddTimedModifier stamps a modifier's timed bookkeeping with the current
// day and records it in the core-owned table.
func (d *Driver) AddTimedModifier(settlementID uint64, m modifier.Modifier, durationDays int) {
	m.Duration = modifier.DurationTimed
	m.AppliedDay = d.day
	m.DurationDays = durationDays
	d.timed[settlementID] = append(d.timed[settlementID], m)
}

// modifiersFor gathers external and timed modifiers for one settlement.
func (d *Driver) modifiersFor(settlementID uint64) []modifier.Modifier {
	var mods []modifier.Modifier
	for _, src := range d.sources {
		mods = append(mods, src.Modifiers(settlementID)...)
	}
	mods = append(mods, d.timed[settlementID]...)
	return mods
}

// externalMultiplier combines the seasonal multiplier with terrain
// fertility for land-worked resources at the building's position.
func (d *Driver) externalMultiplier(inst *building.Instance, k resource.Kind) float64 {
	m := SeasonalProductionMod(d.season, k)
	if d.fertility != nil && (k == resource.Food || k == resource.Timber) {
		m *= d.fertility.At(inst.Position)
	}
	return m
}

// RestoreInstance reinserts a persisted building during world load. The
// settlement must already be registered. Restored settlements are marked
// for reallocation on their next tick.
func (d *Driver) RestoreInstance(inst *building.Instance) error {
	s := d.settlements[inst.SettlementID]
	if s == nil {
		return ErrUnknownSettlement
	}
	s.instances[inst.ID] = inst
	d.instanceHome[inst.ID] = inst.SettlementID
	s.needsAllocation = true
	if inst.ID >= d.nextInstance {
		d.nextInstance = inst.ID + 1
	}
	return nil
}

// RestoreCalendar sets the day/season/year counters during world load.
func (d *Driver) RestoreCalendar(day int, season Season, year int) {
	d.day = day
	d.season = season % seasonCount
	d.year = year
}

// AdvanceDay runs one full economic day across every settlement:
// construction advancement, worker allocation where the building set or
// labor changed, production and maintenance, then the ledger merge.
func (d *Driver) AdvanceDay() {
	d.day++

	for _, id := range d.order {
		d.advanceSettlementDay(d.settlements[id])
	}

	d.logDailyReport()
}

func (d *Driver) advanceSettlementDay(s *Settlement) {
	s.Ledger.ClearDailyChange()
	d.timed[s.ID] = modifier.ExpireTimed(d.timed[s.ID], d.day)

	// Construction advancement, in construction order.
	for _, inst := range s.Instances() {
		if inst.State != building.StateUnderConstruction {
			continue
		}
		inst.AdvanceConstruction()
		if inst.State == building.StateCompleted {
			s.needsAllocation = true
			d.emit(Event{
				Day:          d.day,
				SettlementID: s.ID,
				Category:     "construction",
				Description:  inst.Definition.Name + " completed",
			})
		}
	}

	if s.needsAllocation {
		d.labor.Allocate(s.ID, s.producing())
		s.needsAllocation = false
	}

	// Production and maintenance.
	ctx := productionContext{
		day:       d.day,
		modifiers: d.modifiersFor(s.ID),
		seasonal:  d.externalMultiplier,
	}

	s.GrowthBonus = 0
	s.EducationGrowth = 0
	s.WealthGrowth = 0

	for _, inst := range s.producing() {
		if inst.Definition == nil {
			// Recoverable miss: one bad building must not abort the
			// settlement's tick.
			slog.Warn("building without definition skipped",
				"settlement", s.Name, "instance", inst.ID)
			continue
		}

		for k, amount := range computeProduction(inst, ctx) {
			s.Ledger.Add(k, amount)
		}
		for k, amount := range inst.Definition.Maintenance {
			s.Ledger.Subtract(k, amount)
		}

		s.GrowthBonus += inst.Definition.PopulationGrowth
		edu, wealth := growthContributions(inst)
		s.EducationGrowth += edu
		s.WealthGrowth += wealth
	}

	if s.Ledger.InDeficit() {
		d.emit(Event{
			Day:          d.day,
			SettlementID: s.ID,
			Category:     "deficit",
			Description:  s.Name + " ran a resource deficit",
		})
	}

	if err := d.store.ApplyLedger(s.ID, s.Ledger); err != nil {
		slog.Error("ledger merge failed", "settlement", s.Name, "error", err)
	}
}

// AdvanceSeason rotates the season. Invoked by the time authority every
// DaysPerSeason days.
func (d *Driver) AdvanceSeason() {
	d.season = (d.season + 1) % seasonCount
	slog.Info("season change", "day", d.day, "season", SeasonName(d.season))
}

// AdvanceYear increments the year counter. Reserved hook beyond that.
func (d *Driver) AdvanceYear() {
	d.year++
	slog.Info("year complete", "day", d.day, "year", d.year)
}

func (d *Driver) logDailyReport() {
	var today []Event
	for _, e := range d.events {
		if e.Day == d.day {
			today = append(today, e)
		}
	}
	counts := make(map[string]int)
	for _, e := range today {
		counts[e.Category]++
	}

	slog.Info("daily report",
		"day", d.day,
		"season", SeasonName(d.season),
		"settlements", len(d.order),
		"events_construction", counts["construction"],
		"events_deficit", counts["deficit"],
	)
	for _, e := range today {
		slog.Info("event", "category", e.Category, "settlement", e.SettlementID, "description", e.Description)
	}
	d.trimEvents()
}
