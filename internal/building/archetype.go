// Package building defines immutable building templates (definitions),
// mutable constructed instances, and the labor archetypes their worker
// slots are keyed by.
package building

import "fmt"

// Archetype identifies one worker population category.
type Archetype uint8

const (
	Peasant Archetype = iota
	Laborer
	Artisan
	Merchant
	Scholar
	Cleric

	// ArchetypeCount bounds fixed-size per-archetype arrays.
	ArchetypeCount
)

var archetypeNames = [ArchetypeCount]string{
	Peasant:  "peasant",
	Laborer:  "laborer",
	Artisan:  "artisan",
	Merchant: "merchant",
	Scholar:  "scholar",
	Cleric:   "cleric",
}

// String returns the lowercase name used in data files and logs.
func (a Archetype) String() string {
	if a >= ArchetypeCount {
		return fmt.Sprintf("archetype(%d)", uint8(a))
	}
	return archetypeNames[a]
}

// Valid reports whether a is a defined archetype.
func (a Archetype) Valid() bool { return a < ArchetypeCount }

// ParseArchetype maps a data-file name to its Archetype.
func ParseArchetype(name string) (Archetype, error) {
	for a, n := range archetypeNames {
		if n == name {
			return Archetype(a), nil
		}
	}
	return ArchetypeCount, fmt.Errorf("unknown archetype %q", name)
}

// Archetypes returns every defined archetype in declaration order.
func Archetypes() []Archetype {
	out := make([]Archetype, ArchetypeCount)
	for i := range out {
		out[i] = Archetype(i)
	}
	return out
}

// Category groups building definitions for modifier targeting and
// hub attachment filters.
type Category uint8

const (
	// CategoryAll is the zero value; as a filter it matches every category.
	CategoryAll Category = iota
	CategoryAgriculture
	CategoryIndustry
	CategoryCommerce
	CategoryCivic
	CategoryReligious
	CategoryMilitary

	categoryCount
)

var categoryNames = [categoryCount]string{
	CategoryAll:         "all",
	CategoryAgriculture: "agriculture",
	CategoryIndustry:    "industry",
	CategoryCommerce:    "commerce",
	CategoryCivic:       "civic",
	CategoryReligious:   "religious",
	CategoryMilitary:    "military",
}

// String returns the lowercase category name.
func (c Category) String() string {
	if c >= categoryCount {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

// ParseCategory maps a data-file name to its Category.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return Category(c), nil
		}
	}
	return categoryCount, fmt.Errorf("unknown building category %q", name)
}
