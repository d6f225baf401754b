// Command crownworks runs the settlement economy engine.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/crownworks/internal/api"
	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/config"
	"github.com/talgya/crownworks/internal/engine"
	"github.com/talgya/crownworks/internal/labor"
	"github.com/talgya/crownworks/internal/persistence"
	"github.com/talgya/crownworks/internal/resource"
	"github.com/talgya/crownworks/internal/world"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "crownworks",
	Short: "Crownworks settlement economy engine",
	Long: `Crownworks drives a tick-based settlement economy: buildings are
constructed over days, workers are allocated across them each day, and
production, maintenance, and modifiers settle into per-resource ledgers.`,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (YAML)")
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(simulateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the economy loop with persistence and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)

			slog.Info("Crownworks — Settlement Economy Engine")

			cat, err := building.LoadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}
			slog.Info("catalog loaded", "buildings", cat.Len(), "digest", cat.Digest[:12])

			os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
			db, err := persistence.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			slog.Info("database opened", "path", cfg.DBPath)

			pool := labor.NewPool()
			fertility := world.NewFertilityField(cfg.Seed)
			driver := engine.NewDriver(cat, db, pool, fertility)

			if db.HasWorldState() {
				slog.Info("found saved world state, loading...")
				err := db.LoadWorld(driver, cat, func(defName string, id uint64) {
					slog.Warn("saved building no longer in catalog, skipped",
						"building", defName, "instance", id)
				})
				if err != nil {
					return err
				}
				slog.Info("world state restored",
					"settlements", len(driver.Settlements()),
					"day", driver.Day(),
					"season", engine.SeasonName(driver.CurrentSeason()),
				)
			} else {
				slog.Info("no saved state found, founding new settlements...")
				if err := bootstrapWorld(driver, db, pool); err != nil {
					return err
				}
				if err := db.SaveWorld(driver); err != nil {
					slog.Error("initial save failed", "error", err)
				}
			}
			seedLabor(driver, pool)

			clock := engine.NewClock(cfg.DaysPerSeason)
			clock.Day = driver.Day()
			clock.Interval = time.Duration(cfg.TickSeconds * float64(time.Second))
			clock.OnDay = func(day int) {
				driver.AdvanceDay()
				if err := db.SaveWorld(driver); err != nil {
					slog.Error("daily save failed", "error", err)
				}
			}
			clock.OnSeason = func(day int) { driver.AdvanceSeason() }
			clock.OnYear = func(day int) { driver.AdvanceYear() }

			adminKey := cfg.AdminKey
			if adminKey == "" {
				slog.Warn("CROWNWORKS_ADMIN_KEY not set — admin POST endpoints will be disabled")
			}
			apiServer := &api.Server{
				Driver:   driver,
				Clock:    clock,
				Store:    db,
				DB:       db,
				Port:     cfg.APIPort,
				AdminKey: adminKey,
			}
			apiServer.Start()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				slog.Info("received signal, shutting down", "signal", sig)
				clock.Stop()
			}()

			fmt.Printf("\nCrownworks is running: %d settlements, %d building types.\n",
				len(driver.Settlements()), cat.Len())
			fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
			fmt.Println("Starting economy... (Ctrl+C to stop)")

			clock.Run()

			slog.Info("final save...")
			if err := db.SaveWorld(driver); err != nil {
				slog.Error("final save failed", "error", err)
			}
			fmt.Println("Economy stopped. World state saved.")
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the building catalog and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cat, err := building.LoadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}

			fmt.Printf("catalog OK: %d buildings (digest %s)\n", cat.Len(), cat.Digest[:12])
			for _, name := range cat.Names() {
				def, _ := cat.Get(name)
				kind := ""
				if def.IsHub {
					kind = " [hub]"
				}
				if def.IsHublet {
					kind = " [hublet]"
				}
				fmt.Printf("  %-20s %-12s %dd, %d slots%s\n",
					def.Name, def.Category, def.ConstructionDays, len(def.Slots), kind)
			}
			return nil
		},
	}
}

func simulateCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run N days headless against an in-memory store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)

			cat, err := building.LoadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}

			pool := labor.NewPool()
			store := engine.NewMemoryStore()
			driver := engine.NewDriver(cat, store, pool, world.NewFertilityField(cfg.Seed))
			if err := bootstrapWorld(driver, store, pool); err != nil {
				return err
			}
			seedLabor(driver, pool)

			for day := 0; day < days; day++ {
				driver.AdvanceDay()
				if (day+1)%cfg.DaysPerSeason == 0 {
					driver.AdvanceSeason()
				}
				if (day+1)%(cfg.DaysPerSeason*engine.SeasonsPerYear) == 0 {
					driver.AdvanceYear()
				}
			}

			fmt.Printf("simulated %d days (%d seasons)\n", days, days/cfg.DaysPerSeason)
			for _, s := range driver.Settlements() {
				fmt.Printf("%s (day %d):\n", s.Name, driver.Day())
				for _, k := range resource.Kinds() {
					amount, err := store.Resource(s.ID, k)
					if err != nil || amount == 0 {
						continue
					}
					fmt.Printf("  %-10s %d\n", k, amount)
				}
				for _, inst := range s.Instances() {
					fmt.Printf("  %-20s %s, %d workers\n",
						inst.Definition.Name, inst.State, inst.TotalAssigned())
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 90, "number of days to simulate")
	return cmd
}

// starterSettlements is the fresh-world bootstrap: founded settlements,
// their opening stockpiles, and their first buildings.
var starterSettlements = []struct {
	id        uint64
	name      string
	pos       world.HexCoord
	stockpile map[resource.Kind]int64
	buildings []string
}{
	{
		id:   1,
		name: "Avenwick",
		pos:  world.HexCoord{Q: 0, R: 0},
		stockpile: map[resource.Kind]int64{
			resource.Food:   200,
			resource.Timber: 300,
			resource.Stone:  150,
			resource.Gold:   100,
		},
		buildings: []string{"grain_farm", "lumber_camp", "shrine"},
	},
	{
		id:   2,
		name: "Stonereach",
		pos:  world.HexCoord{Q: 8, R: -3},
		stockpile: map[resource.Kind]int64{
			resource.Food:   150,
			resource.Timber: 200,
			resource.Stone:  100,
			resource.Gold:   80,
		},
		buildings: []string{"grain_farm", "quarry"},
	},
}

// starterGroups is the founding workforce per settlement.
var starterGroups = map[uint64][]labor.Group{
	1: {
		{ID: 1, Archetype: building.Peasant, Size: 40},
		{ID: 2, Archetype: building.Laborer, Size: 15},
		{ID: 3, Archetype: building.Artisan, Size: 8},
		{ID: 4, Archetype: building.Merchant, Size: 5},
		{ID: 5, Archetype: building.Cleric, Size: 3},
	},
	2: {
		{ID: 6, Archetype: building.Peasant, Size: 25},
		{ID: 7, Archetype: building.Laborer, Size: 20},
		{ID: 8, Archetype: building.Artisan, Size: 4},
	},
}

func bootstrapWorld(driver *engine.Driver, store engine.Store, pool *labor.Pool) error {
	for _, ss := range starterSettlements {
		driver.AddSettlement(ss.id, ss.name, ss.pos)
		for k, amount := range ss.stockpile {
			if err := store.Deposit(ss.id, k, amount); err != nil {
				return err
			}
		}
		for i, name := range ss.buildings {
			pos := world.HexCoord{Q: ss.pos.Q + 1 + i, R: ss.pos.R}
			if _, err := driver.Construct(ss.id, name, pos); err != nil {
				slog.Warn("starter building failed", "settlement", ss.name, "building", name, "error", err)
			}
		}
		slog.Info("settlement founded", "name", ss.name, "buildings", len(ss.buildings))
	}
	return nil
}

// seedLabor fills the pool for every registered settlement. Runs after
// both fresh bootstrap and world load — population is not persisted, the
// demographics collaborator owns it.
func seedLabor(driver *engine.Driver, pool *labor.Pool) {
	for _, s := range driver.Settlements() {
		if len(pool.Groups(s.ID)) > 0 {
			continue
		}
		for _, g := range starterGroups[s.ID] {
			pool.AddGroup(s.ID, g)
		}
		driver.MarkLaborChanged(s.ID)
	}
}
