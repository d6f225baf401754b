// Resource store collaborator contract and an in-memory implementation.
package engine

import (
	"github.com/talgya/crownworks/internal/resource"
)

// Store is the persistent resource stockpile collaborator. It consumes a
// settlement's ledger once per day and answers spend/deposit commands.
type Store interface {
	// ApplyLedger merges the day's net flows into the stockpile.
	// Deficits draw down reserves; stockpiles never go negative.
	ApplyLedger(settlementID uint64, led *resource.Ledger) error
	Resource(settlementID uint64, k resource.Kind) (int64, error)
	// Spend withdraws amount if the stockpile covers it. Returns false
	// (and mutates nothing) when it cannot.
	Spend(settlementID uint64, k resource.Kind, amount int64) (bool, error)
	Deposit(settlementID uint64, k resource.Kind, amount int64) error
}

// MemoryStore is a Store backed by in-process maps. Used by tests and the
// headless simulate command.
type MemoryStore struct {
	stock map[uint64]*[resource.KindCount]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stock: make(map[uint64]*[resource.KindCount]int64)}
}

func (m *MemoryStore) pile(settlementID uint64) *[resource.KindCount]int64 {
	p, ok := m.stock[settlementID]
	if !ok {
		p = &[resource.KindCount]int64{}
		m.stock[settlementID] = p
	}
	return p
}

// ApplyLedger implements Store.
func (m *MemoryStore) ApplyLedger(settlementID uint64, led *resource.Ledger) error {
	p := m.pile(settlementID)
	for _, k := range resource.Kinds() {
		p[k] += led.Net(k)
		if p[k] < 0 {
			p[k] = 0
		}
	}
	return nil
}

// Resource implements Store.
func (m *MemoryStore) Resource(settlementID uint64, k resource.Kind) (int64, error) {
	if !k.Valid() {
		return 0, nil
	}
	return m.pile(settlementID)[k], nil
}

// Spend implements Store.
func (m *MemoryStore) Spend(settlementID uint64, k resource.Kind, amount int64) (bool, error) {
	if !k.Valid() || amount < 0 {
		return false, nil
	}
	p := m.pile(settlementID)
	if p[k] < amount {
		return false, nil
	}
	p[k] -= amount
	return true, nil
}

// Deposit implements Store.
func (m *MemoryStore) Deposit(settlementID uint64, k resource.Kind, amount int64) error {
	if !k.Valid() || amount < 0 {
		return nil
	}
	m.pile(settlementID)[k] += amount
	return nil
}
