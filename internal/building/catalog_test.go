package building

import (
	"strings"
	"testing"

	"github.com/talgya/crownworks/internal/resource"
)

const sampleYAML = `
buildings:
  - name: grain_farm
    category: agriculture
    construction_days: 5
    build_cost: {timber: 30, gold: 20}
    maintenance: {gold: 1}
    base_production: {food: 10}
    max_production: {food: 40}
    population_growth: 0.1
    slots:
      - archetype: peasant
        min: 5
        max: 20
        efficiency: 1.0
        required: true
        education_growth: 0.001
  - name: market_square
    category: commerce
    construction_days: 4
    build_cost: {timber: 20, stone: 10}
    base_production: {gold: 3}
    hub: {capacity: 3}
`

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("loaded %d definitions, want 2", cat.Len())
	}
	if cat.Digest == "" {
		t.Error("catalog digest not set")
	}

	farm, ok := cat.Get("grain_farm")
	if !ok {
		t.Fatal("grain_farm missing")
	}
	if farm.Category != CategoryAgriculture {
		t.Errorf("category = %s, want agriculture", farm.Category)
	}
	if farm.ConstructionDays != 5 {
		t.Errorf("construction days = %d, want 5", farm.ConstructionDays)
	}
	if farm.BuildCost[resource.Timber] != 30 {
		t.Errorf("timber cost = %d, want 30", farm.BuildCost[resource.Timber])
	}
	if farm.BaseEfficiency != 1.0 {
		t.Errorf("default base efficiency = %f, want 1.0", farm.BaseEfficiency)
	}
	if len(farm.Slots) != 1 || farm.Slots[0].Archetype != Peasant || !farm.Slots[0].Required {
		t.Errorf("slots parsed wrong: %+v", farm.Slots)
	}

	market, _ := cat.Get("market_square")
	if !market.IsHub || market.HubletCapacity != 3 {
		t.Errorf("hub schema parsed wrong: %+v", market)
	}

	if _, ok := cat.Get("wizard_tower"); ok {
		t.Error("unknown name resolved")
	}
}

func TestParseCatalogRejectsBadData(t *testing.T) {
	cases := map[string]string{
		"unknown resource": `
buildings:
  - name: x
    category: civic
    build_cost: {mithril: 5}
`,
		"unknown archetype": `
buildings:
  - name: x
    category: civic
    slots:
      - archetype: wizard
`,
		"min over max": `
buildings:
  - name: x
    category: civic
    slots:
      - archetype: peasant
        min: 9
        max: 3
`,
		"duplicate name": `
buildings:
  - name: x
    category: civic
  - name: x
    category: civic
`,
		"hub without capacity": `
buildings:
  - name: x
    category: civic
    hub: {capacity: 0}
`,
		"empty catalog": `
buildings: []
`,
	}
	for name, yml := range cases {
		if _, err := ParseCatalog([]byte(yml)); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestCatalogNamesSorted(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	names := cat.Names()
	if !strings.HasPrefix(names[0], "grain_farm") || names[1] != "market_square" {
		t.Errorf("names = %v, want sorted", names)
	}
}
