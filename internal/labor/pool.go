// Package labor allocates a settlement's available workers across its
// completed buildings and tracks employment against population groups.
package labor

import (
	"sort"

	"github.com/talgya/crownworks/internal/building"
)

// Source is the population collaborator contract: the allocation engine
// reads availability at the start of a pass and reports final employment
// at the end. No concurrent passes run against the same settlement.
type Source interface {
	Available(settlementID uint64, a building.Archetype) int
	ReportEmployment(settlementID uint64, a building.Archetype, employed int)
}

// Group is one population cohort contributing workers of a single
// archetype. Employment is tracked per group only approximately — the
// pool splits archetype totals proportionally to group size.
type Group struct {
	ID        uint64
	Archetype building.Archetype
	Size      int
	Employed  int
}

// Pool is an in-memory Source backed by population groups per settlement.
type Pool struct {
	groups map[uint64][]*Group
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{groups: make(map[uint64][]*Group)}
}

// AddGroup registers a population group under a settlement.
func (p *Pool) AddGroup(settlementID uint64, g Group) {
	cp := g
	p.groups[settlementID] = append(p.groups[settlementID], &cp)
	// Stable order for deterministic proportional splits.
	sort.Slice(p.groups[settlementID], func(i, j int) bool {
		return p.groups[settlementID][i].ID < p.groups[settlementID][j].ID
	})
}

// Groups returns the settlement's groups in id order.
func (p *Pool) Groups(settlementID uint64) []*Group {
	return p.groups[settlementID]
}

// Available returns the settlement's total workforce for an archetype.
// Every worker is reassignable each pass — allocation is a full
// recompute, so previously employed workers count as available.
func (p *Pool) Available(settlementID uint64, a building.Archetype) int {
	total := 0
	for _, g := range p.groups[settlementID] {
		if g.Archetype == a {
			total += g.Size
		}
	}
	return total
}

// ReportEmployment distributes an archetype's employed total across the
// groups sharing that archetype, proportionally to group size. Leftover
// workers from integer truncation go to the earliest groups in id order.
func (p *Pool) ReportEmployment(settlementID uint64, a building.Archetype, employed int) {
	var share []*Group
	totalSize := 0
	for _, g := range p.groups[settlementID] {
		if g.Archetype == a {
			share = append(share, g)
			totalSize += g.Size
		}
	}
	if len(share) == 0 || totalSize == 0 {
		return
	}
	if employed > totalSize {
		employed = totalSize
	}

	assigned := 0
	for _, g := range share {
		g.Employed = employed * g.Size / totalSize
		assigned += g.Employed
	}
	for _, g := range share {
		if assigned >= employed {
			break
		}
		if g.Employed < g.Size {
			g.Employed++
			assigned++
		}
	}
}

// ReduceSize removes workers from a settlement's archetype workforce,
// largest groups first (casualties, emigration). Returns the number
// actually removed.
func (p *Pool) ReduceSize(settlementID uint64, a building.Archetype, count int) int {
	removed := 0
	gs := make([]*Group, 0)
	for _, g := range p.groups[settlementID] {
		if g.Archetype == a {
			gs = append(gs, g)
		}
	}
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].Size != gs[j].Size {
			return gs[i].Size > gs[j].Size
		}
		return gs[i].ID < gs[j].ID
	})
	for _, g := range gs {
		if removed >= count {
			break
		}
		take := count - removed
		if take > g.Size {
			take = g.Size
		}
		g.Size -= take
		if g.Employed > g.Size {
			g.Employed = g.Size
		}
		removed += take
	}
	return removed
}
