// Package persistence provides SQLite-backed storage: the resource
// stockpile store consumed by the economy driver, plus world save/load.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/engine"
	"github.com/talgya/crownworks/internal/resource"
	"github.com/talgya/crownworks/internal/world"
)

// DB wraps a SQLite connection. It implements engine.Store.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stockpiles (
		settlement_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		amount INTEGER NOT NULL,
		PRIMARY KEY (settlement_id, kind)
	);

	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS buildings (
		id INTEGER PRIMARY KEY,
		settlement_id INTEGER NOT NULL,
		def_name TEXT NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		state INTEGER NOT NULL,
		days_remaining INTEGER NOT NULL,
		cost_paid INTEGER NOT NULL,
		active INTEGER NOT NULL,
		efficiency REAL NOT NULL,
		workers_json TEXT NOT NULL,
		hub_id INTEGER,
		hublets_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_buildings_settlement ON buildings(settlement_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// ── Resource store (engine.Store) ─────────────────────────────────

// ApplyLedger merges a day's net flows into the stockpile. Deficits draw
// reserves down to zero, never below.
func (db *DB) ApplyLedger(settlementID uint64, led *resource.Ledger) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, k := range resource.Kinds() {
		net := led.Net(k)
		if net == 0 {
			continue
		}
		current, err := stockpileTx(tx, settlementID, k)
		if err != nil {
			return err
		}
		next := current + net
		if next < 0 {
			next = 0
		}
		if err := setStockpileTx(tx, settlementID, k, next); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Resource returns the current stockpile amount.
func (db *DB) Resource(settlementID uint64, k resource.Kind) (int64, error) {
	var amount int64
	err := db.conn.Get(&amount,
		`SELECT amount FROM stockpiles WHERE settlement_id = ? AND kind = ?`,
		settlementID, k.String())
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return amount, err
}

// Spend withdraws amount if covered; returns false without mutating when
// the stockpile is short.
func (db *DB) Spend(settlementID uint64, k resource.Kind, amount int64) (bool, error) {
	if amount < 0 {
		return false, nil
	}
	// Nothing to withdraw; succeed even without a stockpile row.
	if amount == 0 {
		return true, nil
	}
	res, err := db.conn.Exec(
		`UPDATE stockpiles SET amount = amount - ?
		 WHERE settlement_id = ? AND kind = ? AND amount >= ?`,
		amount, settlementID, k.String(), amount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Deposit adds amount to the stockpile.
func (db *DB) Deposit(settlementID uint64, k resource.Kind, amount int64) error {
	if amount < 0 {
		return nil
	}
	_, err := db.conn.Exec(
		`INSERT INTO stockpiles (settlement_id, kind, amount) VALUES (?, ?, ?)
		 ON CONFLICT(settlement_id, kind) DO UPDATE SET amount = amount + excluded.amount`,
		settlementID, k.String(), amount)
	return err
}

func stockpileTx(tx *sqlx.Tx, settlementID uint64, k resource.Kind) (int64, error) {
	var amount int64
	err := tx.Get(&amount,
		`SELECT amount FROM stockpiles WHERE settlement_id = ? AND kind = ?`,
		settlementID, k.String())
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return amount, err
}

func setStockpileTx(tx *sqlx.Tx, settlementID uint64, k resource.Kind, amount int64) error {
	_, err := tx.Exec(
		`INSERT INTO stockpiles (settlement_id, kind, amount) VALUES (?, ?, ?)
		 ON CONFLICT(settlement_id, kind) DO UPDATE SET amount = excluded.amount`,
		settlementID, k.String(), amount)
	return err
}

// ── World save/load ───────────────────────────────────────────────

// SaveWorld writes all settlements and buildings (full replace) plus the
// calendar counters.
func (db *DB) SaveWorld(d *engine.Driver) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM settlements`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM buildings`); err != nil {
		return err
	}

	for _, s := range d.Settlements() {
		if _, err := tx.Exec(
			`INSERT INTO settlements (id, name, pos_q, pos_r) VALUES (?, ?, ?, ?)`,
			s.ID, s.Name, s.Position.Q, s.Position.R); err != nil {
			return err
		}
		for _, inst := range s.Instances() {
			if err := insertBuildingTx(tx, inst); err != nil {
				return err
			}
		}
	}

	for key, value := range map[string]string{
		"day":    fmt.Sprintf("%d", d.Day()),
		"season": fmt.Sprintf("%d", d.CurrentSeason()),
		"year":   fmt.Sprintf("%d", d.Year()),
	} {
		if err := setMetaTx(tx, key, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertBuildingTx(tx *sqlx.Tx, inst *building.Instance) error {
	workers, err := json.Marshal(workerNames(inst))
	if err != nil {
		return err
	}
	hublets, err := json.Marshal(inst.HubletIDs)
	if err != nil {
		return err
	}
	var hubID *uint64
	if inst.HubID != nil {
		v := uint64(*inst.HubID)
		hubID = &v
	}
	_, err = tx.Exec(
		`INSERT INTO buildings
		 (id, settlement_id, def_name, pos_q, pos_r, state, days_remaining,
		  cost_paid, active, efficiency, workers_json, hub_id, hublets_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID, inst.SettlementID, inst.Definition.Name,
		inst.Position.Q, inst.Position.R,
		inst.State, inst.DaysRemaining, inst.CostPaid, inst.Active,
		inst.Efficiency, string(workers), hubID, string(hublets))
	return err
}

func workerNames(inst *building.Instance) map[string]int {
	out := make(map[string]int)
	for a, n := range inst.AssignedWorkers() {
		out[a.String()] = n
	}
	return out
}

type settlementRow struct {
	ID   uint64 `db:"id"`
	Name string `db:"name"`
	PosQ int    `db:"pos_q"`
	PosR int    `db:"pos_r"`
}

type buildingRow struct {
	ID            uint64  `db:"id"`
	SettlementID  uint64  `db:"settlement_id"`
	DefName       string  `db:"def_name"`
	PosQ          int     `db:"pos_q"`
	PosR          int     `db:"pos_r"`
	State         uint8   `db:"state"`
	DaysRemaining int     `db:"days_remaining"`
	CostPaid      bool    `db:"cost_paid"`
	Active        bool    `db:"active"`
	Efficiency    float64 `db:"efficiency"`
	WorkersJSON   string  `db:"workers_json"`
	HubID         *uint64 `db:"hub_id"`
	HubletsJSON   string  `db:"hublets_json"`
}

// HasWorldState reports whether a saved world exists.
func (db *DB) HasWorldState() bool {
	var n int
	if err := db.conn.Get(&n, `SELECT COUNT(*) FROM settlements`); err != nil {
		return false
	}
	return n > 0
}

// LoadWorld restores settlements, buildings, and the calendar into a
// fresh driver. Buildings whose definition is missing from the catalog
// are skipped with a log entry, never aborting the load.
func (db *DB) LoadWorld(d *engine.Driver, cat *building.Catalog, logSkip func(defName string, id uint64)) error {
	var setts []settlementRow
	if err := db.conn.Select(&setts, `SELECT * FROM settlements ORDER BY id`); err != nil {
		return err
	}
	for _, row := range setts {
		d.AddSettlement(row.ID, row.Name, world.HexCoord{Q: row.PosQ, R: row.PosR})
	}

	var rows []buildingRow
	if err := db.conn.Select(&rows, `SELECT * FROM buildings ORDER BY id`); err != nil {
		return err
	}
	for _, row := range rows {
		def, ok := cat.Get(row.DefName)
		if !ok {
			if logSkip != nil {
				logSkip(row.DefName, row.ID)
			}
			continue
		}
		inst := building.NewInstance(building.InstanceID(row.ID), row.SettlementID, def,
			world.HexCoord{Q: row.PosQ, R: row.PosR})
		inst.State = building.State(row.State)
		inst.DaysRemaining = row.DaysRemaining
		inst.CostPaid = row.CostPaid
		inst.Active = row.Active
		inst.Efficiency = row.Efficiency

		var workers map[string]int
		if err := json.Unmarshal([]byte(row.WorkersJSON), &workers); err != nil {
			return fmt.Errorf("building %d workers: %w", row.ID, err)
		}
		for name, n := range workers {
			a, err := building.ParseArchetype(name)
			if err != nil {
				continue
			}
			inst.SetWorkers(a, n)
		}

		if row.HubID != nil {
			hid := building.InstanceID(*row.HubID)
			inst.HubID = &hid
		}
		if err := json.Unmarshal([]byte(row.HubletsJSON), &inst.HubletIDs); err != nil {
			return fmt.Errorf("building %d hublets: %w", row.ID, err)
		}

		if err := d.RestoreInstance(inst); err != nil {
			return err
		}
	}

	day, season, year := 0, 0, 0
	if v, err := db.GetMeta("day"); err == nil {
		fmt.Sscanf(v, "%d", &day)
	}
	if v, err := db.GetMeta("season"); err == nil {
		fmt.Sscanf(v, "%d", &season)
	}
	if v, err := db.GetMeta("year"); err == nil {
		fmt.Sscanf(v, "%d", &year)
	}
	d.RestoreCalendar(day, engine.Season(season), year)
	return nil
}

// GetMeta returns a world_meta value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, `SELECT value FROM world_meta WHERE key = ?`, key)
	return value, err
}

// SetMeta stores a world_meta value.
func (db *DB) SetMeta(key, value string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := setMetaTx(tx, key, value); err != nil {
		return err
	}
	return tx.Commit()
}

func setMetaTx(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec(
		`INSERT INTO world_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}
