// Package api - Thin HTTP layer over the calculation engine
// The API is ONLY responsible for: input ingestion, engine orchestration,
// output serialization. The API NEVER performs tariff logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ttttvvvv/ParkingCalculator/adapters/geocode"
	"github.com/ttttvvvv/ParkingCalculator/adapters/history"
	"github.com/ttttvvvv/ParkingCalculator/core/engine"
	"github.com/ttttvvvv/ParkingCalculator/core/registry"
	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

// Server is the API server
type Server struct {
	engine   *engine.Engine
	registry *registry.Registry
	resolver geocode.Resolver
	history  history.Store
	mux      *http.ServeMux
	version  string
}

// NewServer creates an API server without calculation history.
// resolver may be nil when address lookups are not configured.
func NewServer(eng *engine.Engine, reg *registry.Registry, resolver geocode.Resolver, version string) *Server {
	return NewServerWithHistory(eng, reg, resolver, nil, version)
}

// NewServerWithHistory creates an API server that records completed
// calculations in the given store
func NewServerWithHistory(eng *engine.Engine, reg *registry.Registry, resolver geocode.Resolver, store history.Store, version string) *Server {
	s := &Server{
		engine:   eng,
		registry: reg,
		resolver: resolver,
		history:  store,
		mux:      http.NewServeMux(),
		version:  version,
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoint
	s.mux.HandleFunc("POST /calculate", s.handleCalculate)

	// Zone discovery
	s.mux.HandleFunc("GET /zones", s.handleListZones)
	s.mux.HandleFunc("GET /zones/search", s.handleSearchZones)
	s.mux.HandleFunc("GET /zones/{id}/tariff", s.handleZoneTariff)

	// Calculation history
	s.mux.HandleFunc("GET /calculations", s.handleListCalculations)
	s.mux.HandleFunc("GET /calculations/{id}", s.handleGetCalculation)

	// Supporting endpoints
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleCalculate handles POST /calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	requestID := uuid.NewString()

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.TypeInput, "decoding request body", err))
		return
	}
	if err := validateCalculateRequest(&req); err != nil {
		s.writeError(w, err)
		return
	}

	zoneID := types.ZoneID(req.ZoneID)
	var addr *geocode.Address
	if req.Address != nil {
		res, err := s.resolveAddress(r, req.Address)
		if err != nil {
			s.writeError(w, err)
			return
		}
		zoneID = res.ZoneID
		addr = res.Address
	}

	result, err := s.engine.Calculate(ctx, types.CalculationRequest{
		ZoneID: zoneID,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		logging.Warn("calculation failed",
			zap.String("request_id", requestID),
			zap.String("zone_id", string(zoneID)),
			zap.Error(err))
		s.writeError(w, err)
		return
	}

	s.recordCalculation(ctx, requestID, req.Start, req.End, result)

	resp := toCalculateResponse(result, addr, req.Start, req.End)
	resp.Metadata = &ResponseMetadata{
		RequestID:       requestID,
		EngineVersion:   s.version,
		DatasetSnapshot: s.snapshotHash(),
		DurationMs:      time.Since(start).Milliseconds(),
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// recordCalculation stores the outcome under the request id. History
// failures never fail the calculation itself.
func (s *Server) recordCalculation(ctx context.Context, requestID string, start, end time.Time, result *types.CalculationResult) {
	if s.history == nil {
		return
	}
	err := s.history.Save(ctx, &history.Record{
		ID:           requestID,
		ZoneID:       result.ZoneID,
		Start:        start,
		End:          end,
		Total:        result.Total,
		VAT:          result.VATAmount,
		Currency:     result.Currency,
		Capped:       result.CappedByDailyMax,
		Source:       "api",
		SnapshotHash: s.snapshotHash(),
	})
	if err != nil {
		logging.Warn("recording calculation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// handleListCalculations handles GET /calculations
func (s *Server) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, errors.New(errors.TypeConfig, "calculation history is not configured"))
		return
	}

	filter := &history.ListFilter{
		ZoneID: types.ZoneID(r.URL.Query().Get("zone_id")),
		Limit:  50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeError(w, errors.Input("limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	records, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"calculations": records,
		"count":        len(records),
	}, http.StatusOK)
}

// handleGetCalculation handles GET /calculations/{id}
func (s *Server) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, errors.New(errors.TypeConfig, "calculation history is not configured"))
		return
	}
	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, rec, http.StatusOK)
}

// handleListZones handles GET /zones
func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	snap, err := s.registry.Current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, toZoneList(snap.Zones()), http.StatusOK)
}

// handleSearchZones handles GET /zones/search?q=term
func (s *Server) handleSearchZones(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		s.writeError(w, errors.Input("query parameter q is required"))
		return
	}
	snap, err := s.registry.Current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, toZoneList(snap.SearchZones(term)), http.StatusOK)
}

// handleZoneTariff handles GET /zones/{id}/tariff
func (s *Server) handleZoneTariff(w http.ResponseWriter, r *http.Request) {
	zoneID := types.ZoneID(r.PathValue("id"))
	snap, err := s.registry.Current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	structures, err := snap.StructuresForZone(zoneID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, toTariffResponse(zoneID, structures), http.StatusOK)
}

// handleHealth handles GET /health
// handleIndex handles GET / with a self-describing endpoint listing
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	zones := 0
	if snap, err := s.registry.Current(); err == nil {
		zones = snap.ZoneCount()
	}
	s.writeJSON(w, map[string]interface{}{
		"name":         "Parking Calculator API",
		"version":      s.version,
		"description":  "API for calculating parking costs with zone discovery and address lookup",
		"zones_loaded": zones,
		"endpoints": map[string]string{
			"POST /calculate":          "Calculate parking costs for a zone or address",
			"GET /zones":               "List all available zones",
			"GET /zones/search?q=term": "Search zones by id or description",
			"GET /zones/{id}/tariff":   "Fetch a zone's tariff structures",
			"GET /calculations":        "List recorded calculations",
			"GET /calculations/{id}":   "Fetch one recorded calculation",
			"GET /health":              "Health check",
			"GET /version":             "Version information",
		},
	}, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	zones := 0
	if snap, err := s.registry.Current(); err == nil {
		zones = snap.ZoneCount()
	} else {
		status = "degraded"
	}
	s.writeJSON(w, map[string]interface{}{
		"status":           status,
		"version":          s.version,
		"dataset_loaded":   s.registry.Loaded(),
		"dataset_snapshot": s.snapshotHash(),
		"zone_count":       zones,
		"time":             time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "parking-calculator",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) resolveAddress(r *http.Request, q *AddressQuery) (*geocode.Resolution, error) {
	if s.resolver == nil {
		return nil, errors.New(errors.TypeConfig, "address lookup is not configured")
	}
	return s.resolver.ResolveZone(r.Context(), q.Postcode, q.HouseNumber, q.Suffix)
}

func (s *Server) snapshotHash() string {
	snap, err := s.registry.Current()
	if err != nil {
		return ""
	}
	return snap.ContentHash
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	errType := errors.TypeOf(err)
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    string(errType),
			"message": err.Error(),
		},
	}, statusFor(errType))
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeInvalidInterval, errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeUnknownZone, errors.TypeAddressNotFound, errors.TypeZoneNotMapped, errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeConfig:
		return http.StatusServiceUnavailable
	case errors.TypeNoTariffCoverage:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func validateCalculateRequest(req *CalculateRequest) error {
	if req.ZoneID == "" && req.Address == nil {
		return errors.Input("either zone_id or address is required")
	}
	if req.ZoneID != "" && req.Address != nil {
		return errors.Input("zone_id and address are mutually exclusive")
	}
	if req.Address != nil && (req.Address.Postcode == "" || req.Address.HouseNumber == "") {
		return errors.Input("address requires postcode and house_number")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return errors.Input("start and end are required")
	}
	return nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	logging.Info("API server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}
