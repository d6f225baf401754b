// Seasonal production multipliers.
package engine

import "github.com/talgya/crownworks/internal/resource"

// Season indexes the four-season cycle.
type Season uint8

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter

	seasonCount
)

// SeasonName returns a human-readable season name.
func SeasonName(s Season) string {
	switch s {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonAutumn:
		return "Autumn"
	case SeasonWinter:
		return "Winter"
	}
	return "Unknown"
}

// SeasonalProductionMod returns the per-resource production multiplier
// for a season. Food swings hardest: harvest abundance in autumn,
// scarcity in winter. Extraction slows in winter; abstract resources
// (gold, prestige, piety) are unaffected.
func SeasonalProductionMod(season Season, k resource.Kind) float64 {
	switch season {
	case SeasonSpring:
		// Planting season: nothing to harvest yet, nothing scarce.
		return 1.0
	case SeasonSummer:
		switch k {
		case resource.Food:
			return 1.2
		case resource.Timber:
			return 1.1
		}
	case SeasonAutumn:
		switch k {
		case resource.Food:
			return 1.5 // Harvest
		case resource.Timber:
			return 1.1
		}
	case SeasonWinter:
		switch k {
		case resource.Food:
			return 0.5
		case resource.Timber:
			return 0.7
		case resource.Stone, resource.Iron:
			return 0.9
		}
	}
	return 1.0
}
