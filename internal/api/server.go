// Package api provides the HTTP API for querying economy state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/talgya/crownworks/internal/building"
	"github.com/talgya/crownworks/internal/engine"
	"github.com/talgya/crownworks/internal/persistence"
	"github.com/talgya/crownworks/internal/resource"
	"github.com/talgya/crownworks/internal/world"
)

// Server serves the economy state over HTTP.
type Server struct {
	Driver   *engine.Driver
	Clock    *engine.Clock
	Store    engine.Store
	DB       *persistence.DB // nil when running without persistence
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the economy).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/settlements", s.handleSettlements)
	mux.HandleFunc("/api/v1/settlement/", s.handleSettlementDetail)
	mux.HandleFunc("/api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("/api/v1/catalog/", s.handleCatalogDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/construct", s.adminOnly(s.handleConstruct))
	mux.HandleFunc("/api/v1/cancel", s.adminOnly(s.handleCancel))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no CROWNWORKS_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":        "Crownworks",
		"day":         s.Driver.Day(),
		"season":      engine.SeasonName(s.Driver.CurrentSeason()),
		"year":        s.Driver.Year(),
		"settlements": len(s.Driver.Settlements()),
		"catalog":     s.Driver.Catalog().Len(),
	}
	if s.Clock != nil {
		status["speed"] = s.Clock.Speed()
		status["running"] = s.Clock.Running()
	}
	writeJSON(w, status)
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	type settlementSummary struct {
		ID           uint64 `json:"id"`
		Name         string `json:"name"`
		Q            int    `json:"q"`
		R            int    `json:"r"`
		Buildings    int    `json:"buildings"`
		Constructing int    `json:"constructing"`
		Workers      int    `json:"workers"`
		Deficit      bool   `json:"deficit"`
	}

	var result []settlementSummary
	for _, st := range s.Driver.Settlements() {
		summary := settlementSummary{
			ID:      st.ID,
			Name:    st.Name,
			Q:       st.Position.Q,
			R:       st.Position.R,
			Deficit: st.Ledger.InDeficit(),
		}
		for _, inst := range st.Instances() {
			summary.Buildings++
			if inst.State == building.StateUnderConstruction {
				summary.Constructing++
			}
			summary.Workers += inst.TotalAssigned()
		}
		result = append(result, summary)
	}
	writeJSON(w, result)
}

func (s *Server) handleSettlementDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing settlement id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid settlement id", http.StatusBadRequest)
		return
	}

	sett := s.Driver.Settlement(id)
	if sett == nil {
		http.Error(w, "settlement not found", http.StatusNotFound)
		return
	}

	// Stockpile reserves.
	stockpile := make(map[string]int64)
	if s.Store != nil {
		for _, k := range resource.Kinds() {
			amount, err := s.Store.Resource(id, k)
			if err != nil {
				slog.Error("stockpile read failed", "settlement", id, "kind", k, "error", err)
				continue
			}
			if amount > 0 {
				stockpile[k.String()] = amount
			}
		}
	}

	// Daily ledger by kind, zero entries omitted.
	ledger := make(map[string]map[string]int64)
	for _, k := range resource.Kinds() {
		prod, cons := sett.Ledger.Production(k), sett.Ledger.Consumption(k)
		if prod == 0 && cons == 0 {
			continue
		}
		ledger[k.String()] = map[string]int64{
			"production":  prod,
			"consumption": cons,
			"net":         sett.Ledger.Net(k),
		}
	}

	type buildingEntry struct {
		ID       uint64         `json:"id"`
		Name     string         `json:"name"`
		Q        int            `json:"q"`
		R        int            `json:"r"`
		State    string         `json:"state"`
		DaysLeft int            `json:"days_remaining,omitempty"`
		Active   bool           `json:"active"`
		Workers  map[string]int `json:"workers,omitempty"`
		HubID    *uint64        `json:"hub_id,omitempty"`
		Hublets  []uint64       `json:"hublets,omitempty"`
	}
	var buildings []buildingEntry
	for _, inst := range sett.Instances() {
		entry := buildingEntry{
			ID:       uint64(inst.ID),
			Name:     inst.Definition.Name,
			Q:        inst.Position.Q,
			R:        inst.Position.R,
			State:    inst.State.String(),
			DaysLeft: inst.DaysRemaining,
			Active:   inst.Active,
		}
		if workers := inst.AssignedWorkers(); len(workers) > 0 {
			entry.Workers = make(map[string]int, len(workers))
			for a, n := range workers {
				entry.Workers[a.String()] = n
			}
		}
		if inst.HubID != nil {
			hid := uint64(*inst.HubID)
			entry.HubID = &hid
		}
		for _, hid := range inst.HubletIDs {
			entry.Hublets = append(entry.Hublets, uint64(hid))
		}
		buildings = append(buildings, entry)
	}

	result := map[string]any{
		"id":               sett.ID,
		"name":             sett.Name,
		"q":                sett.Position.Q,
		"r":                sett.Position.R,
		"stockpile":        stockpile,
		"ledger":           ledger,
		"buildings":        buildings,
		"growth_bonus":     sett.GrowthBonus,
		"education_growth": sett.EducationGrowth,
		"wealth_growth":    sett.WealthGrowth,
	}
	writeJSON(w, result)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.Driver.Catalog()
	writeJSON(w, map[string]any{
		"digest":    cat.Digest,
		"buildings": cat.Names(),
	})
}

func (s *Server) handleCatalogDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing building name", http.StatusBadRequest)
		return
	}

	def, ok := s.Driver.Catalog().Get(parts[4])
	if !ok {
		http.Error(w, "building not found", http.StatusNotFound)
		return
	}

	type slotEntry struct {
		Archetype  string  `json:"archetype"`
		Min        int     `json:"min"`
		Max        int     `json:"max"`
		Efficiency float64 `json:"efficiency"`
		Required   bool    `json:"required"`
	}
	var slots []slotEntry
	for _, slot := range def.Slots {
		slots = append(slots, slotEntry{
			Archetype:  slot.Archetype.String(),
			Min:        slot.Min,
			Max:        slot.Max,
			Efficiency: slot.Efficiency,
			Required:   slot.Required,
		})
	}

	result := map[string]any{
		"name":              def.Name,
		"category":          def.Category.String(),
		"construction_days": def.ConstructionDays,
		"build_cost":        amountNames(def.BuildCost),
		"maintenance":       amountNames(def.Maintenance),
		"base_production":   amountNames(def.BaseProduction),
		"max_production":    amountNames(def.MaxProduction),
		"base_efficiency":   def.BaseEfficiency,
		"slots":             slots,
	}
	if def.IsHub {
		result["hub_capacity"] = def.HubletCapacity
	}
	if def.IsHublet {
		var cats []string
		for _, c := range def.RequiredHubCategories {
			cats = append(cats, c.String())
		}
		result["hublet_requires"] = cats
	}
	writeJSON(w, result)
}

func amountNames(in map[resource.Kind]int64) map[string]int64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int64, len(in))
	for k, amount := range in {
		out[k.String()] = amount
	}
	return out
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Driver.Events()

	// Optional settlement filter.
	if sid := r.URL.Query().Get("settlement"); sid != "" {
		id, err := strconv.ParseUint(sid, 10, 64)
		if err != nil {
			http.Error(w, "invalid settlement id", http.StatusBadRequest)
			return
		}
		var filtered []engine.Event
		for _, e := range events {
			if e.SettlementID == id {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Clock == nil {
		http.Error(w, "clock not available", http.StatusServiceUnavailable)
		return
	}

	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Clock.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Clock.Speed()})
}

func (s *Server) handleConstruct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SettlementID uint64 `json:"settlement_id"`
		Building     string `json:"building"`
		Q            int    `json:"q"`
		R            int    `json:"r"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	inst, err := s.Driver.Construct(req.SettlementID, req.Building, world.HexCoord{Q: req.Q, R: req.R})
	switch err {
	case nil:
	case engine.ErrUnknownSettlement, engine.ErrUnknownDefinition:
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case engine.ErrUnaffordable:
		http.Error(w, err.Error(), http.StatusConflict)
		return
	default:
		slog.Error("construct failed", "building", req.Building, "error", err)
		http.Error(w, "construct failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"id":             uint64(inst.ID),
		"state":          inst.State.String(),
		"days_remaining": inst.DaysRemaining,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID uint64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cancelled, err := s.Driver.CancelConstruction(building.InstanceID(req.ID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"cancelled": cancelled})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveWorld(s.Driver); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"day": s.Driver.Day(), "saved": true})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
