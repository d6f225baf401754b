// Package resource defines the closed set of tradeable resource kinds and
// the per-settlement daily ledger that accumulates their flows.
package resource

import "fmt"

// Kind identifies one tradeable resource.
type Kind uint8

const (
	Food Kind = iota
	Timber
	Stone
	Iron
	Gold
	Prestige
	Piety

	// KindCount is the number of resource kinds; fixed-size per-kind
	// arrays are indexed [0, KindCount).
	KindCount
)

var kindNames = [KindCount]string{
	Food:     "food",
	Timber:   "timber",
	Stone:    "stone",
	Iron:     "iron",
	Gold:     "gold",
	Prestige: "prestige",
	Piety:    "piety",
}

// String returns the lowercase name used in data files and logs.
func (k Kind) String() string {
	if k >= KindCount {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Valid reports whether k is a defined resource kind.
func (k Kind) Valid() bool { return k < KindCount }

// ParseKind maps a data-file name to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return KindCount, fmt.Errorf("unknown resource kind %q", name)
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, KindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}
