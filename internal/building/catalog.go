// Catalog loading — building definitions from the YAML data file.
package building

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/talgya/crownworks/internal/resource"
)

// Catalog holds every loaded definition, keyed by name. Immutable after
// Load.
type Catalog struct {
	defs   map[string]*Definition
	names  []string // sorted, for deterministic iteration
	Digest string   // sha256 of the raw data file
}

// catalogFile mirrors the YAML schema of data/buildings.yaml.
type catalogFile struct {
	Buildings []definitionYAML `yaml:"buildings"`
}

type definitionYAML struct {
	Name             string           `yaml:"name"`
	Category         string           `yaml:"category"`
	ConstructionDays int              `yaml:"construction_days"`
	BuildCost        map[string]int64 `yaml:"build_cost"`
	Maintenance      map[string]int64 `yaml:"maintenance"`
	BaseProduction   map[string]int64 `yaml:"base_production"`
	MaxProduction    map[string]int64 `yaml:"max_production"`
	BaseEfficiency   float64          `yaml:"base_efficiency"`
	PopulationGrowth float64          `yaml:"population_growth"`
	Slots            []slotYAML       `yaml:"slots"`
	Hub              *hubYAML         `yaml:"hub"`
	Hublet           *hubletYAML      `yaml:"hublet"`
}

type slotYAML struct {
	Archetype       string  `yaml:"archetype"`
	Min             int     `yaml:"min"`
	Max             int     `yaml:"max"`
	Efficiency      float64 `yaml:"efficiency"`
	Required        bool    `yaml:"required"`
	EducationGrowth float64 `yaml:"education_growth"`
	WealthGrowth    float64 `yaml:"wealth_growth"`
}

type hubYAML struct {
	Capacity int `yaml:"capacity"`
}

type hubletYAML struct {
	Requires []string `yaml:"requires"`
}

// LoadCatalog reads and validates the building catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog builds a Catalog from raw YAML bytes.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Buildings) == 0 {
		return nil, fmt.Errorf("catalog defines no buildings")
	}

	sum := sha256.Sum256(raw)
	cat := &Catalog{
		defs:   make(map[string]*Definition, len(file.Buildings)),
		Digest: hex.EncodeToString(sum[:]),
	}

	for _, dy := range file.Buildings {
		def, err := dy.toDefinition()
		if err != nil {
			return nil, err
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validate catalog: %w", err)
		}
		if _, dup := cat.defs[def.Name]; dup {
			return nil, fmt.Errorf("duplicate building definition %q", def.Name)
		}
		cat.defs[def.Name] = def
		cat.names = append(cat.names, def.Name)
	}
	sort.Strings(cat.names)
	return cat, nil
}

func (dy *definitionYAML) toDefinition() (*Definition, error) {
	cat, err := ParseCategory(dy.Category)
	if err != nil {
		return nil, fmt.Errorf("building %q: %w", dy.Name, err)
	}
	def := &Definition{
		Name:             dy.Name,
		Category:         cat,
		ConstructionDays: dy.ConstructionDays,
		BaseEfficiency:   dy.BaseEfficiency,
		PopulationGrowth: dy.PopulationGrowth,
	}
	if def.BaseEfficiency == 0 {
		def.BaseEfficiency = 1.0
	}

	if def.BuildCost, err = parseAmounts(dy.BuildCost); err != nil {
		return nil, fmt.Errorf("building %q build_cost: %w", dy.Name, err)
	}
	if def.Maintenance, err = parseAmounts(dy.Maintenance); err != nil {
		return nil, fmt.Errorf("building %q maintenance: %w", dy.Name, err)
	}
	if def.BaseProduction, err = parseAmounts(dy.BaseProduction); err != nil {
		return nil, fmt.Errorf("building %q base_production: %w", dy.Name, err)
	}
	if def.MaxProduction, err = parseAmounts(dy.MaxProduction); err != nil {
		return nil, fmt.Errorf("building %q max_production: %w", dy.Name, err)
	}

	for _, sy := range dy.Slots {
		arch, err := ParseArchetype(sy.Archetype)
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", dy.Name, err)
		}
		eff := sy.Efficiency
		if eff == 0 {
			eff = 1.0
		}
		def.Slots = append(def.Slots, WorkerSlot{
			Archetype:       arch,
			Min:             sy.Min,
			Max:             sy.Max,
			Efficiency:      eff,
			Required:        sy.Required,
			EducationGrowth: sy.EducationGrowth,
			WealthGrowth:    sy.WealthGrowth,
		})
	}

	if dy.Hub != nil {
		def.IsHub = true
		def.HubletCapacity = dy.Hub.Capacity
	}
	if dy.Hublet != nil {
		def.IsHublet = true
		for _, name := range dy.Hublet.Requires {
			c, err := ParseCategory(name)
			if err != nil {
				return nil, fmt.Errorf("building %q hublet: %w", dy.Name, err)
			}
			def.RequiredHubCategories = append(def.RequiredHubCategories, c)
		}
	}
	return def, nil
}

func parseAmounts(in map[string]int64) (map[resource.Kind]int64, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[resource.Kind]int64, len(in))
	for name, amount := range in {
		k, err := resource.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if amount < 0 {
			return nil, fmt.Errorf("%s amount must be >= 0", name)
		}
		out[k] = amount
	}
	return out, nil
}

// Get returns the definition by name; ok is false on a miss. Misses are
// recoverable — callers skip the entity and continue their pass.
func (c *Catalog) Get(name string) (*Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// Names returns all definition names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of loaded definitions.
func (c *Catalog) Len() int { return len(c.defs) }
