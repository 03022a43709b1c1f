// Package api - HTTP layer tests
// Handler tests exercise request validation, status mapping and the
// response shapes; tariff logic itself is covered in core/engine.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ttttvvvv/ParkingCalculator/adapters/geocode"
	"github.com/ttttvvvv/ParkingCalculator/adapters/history"
	"github.com/ttttvvvv/ParkingCalculator/core/engine"
	"github.com/ttttvvvv/ParkingCalculator/core/registry"
	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
)

const testZone = types.ZoneID("14_TAR01")

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// 2024-01-15 is a Monday
func monday(h, m int) time.Time {
	return time.Date(2024, 1, 15, h, m, 0, 0, time.UTC)
}

type mappedResolver struct{}

func (mappedResolver) ResolveZone(ctx context.Context, postcode, houseNumber, suffix string) (*geocode.Resolution, error) {
	if geocode.PostcodeDigits(postcode) != "1012" {
		return nil, errors.ZoneNotMapped(postcode)
	}
	return &geocode.Resolution{
		ZoneID:  testZone,
		Address: &geocode.Address{Street: "Damrak", City: "Amsterdam", Postcode: "1012AB", HouseNumber: houseNumber},
	}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	b := registry.NewSnapshotBuilder("test")
	b.AddZone(&types.Zone{
		ID:          testZone,
		Description: "Amsterdam Centrum",
		ValidFrom:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	b.AddStructure(&types.TariffStructure{
		ID:            "TAR01",
		ZoneID:        testZone,
		ValidFrom:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		VATPercentage: dec("21"),
		Parts: []types.TariffPart{{
			ID:          "day",
			Weekdays:    types.AllWeekdays,
			Window:      types.AllDay,
			Kind:        types.PricingLinear,
			UnitAmount:  dec("1.00"),
			StepMinutes: 60,
		}},
	})
	snap, err := b.Build()
	if err != nil {
		t.Fatalf("snapshot build: %v", err)
	}
	reg := registry.NewRegistry()
	reg.Publish(snap)

	eng := engine.New(reg, engine.Config{
		MaxSpan:  31 * 24 * time.Hour,
		Location: time.UTC,
		Currency: types.CurrencyEUR,
	})
	return NewServer(eng, reg, mappedResolver{}, "test")
}

func postCalculate(t *testing.T, srv *Server, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/calculate", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body.Error.Code
}

func TestCalculateByZoneID(t *testing.T) {
	srv := newTestServer(t)
	w := postCalculate(t, srv, CalculateRequest{
		ZoneID: string(testZone),
		Start:  monday(10, 0),
		End:    monday(12, 0),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp CalculateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != "2.00" {
		t.Errorf("total = %s, want 2.00", resp.Total)
	}
	if resp.Currency != "EUR" {
		t.Errorf("currency = %s", resp.Currency)
	}
	if len(resp.Items) != 1 {
		t.Errorf("got %d line items, want 1", len(resp.Items))
	}
	if resp.Metadata == nil || resp.Metadata.RequestID == "" {
		t.Error("metadata with request id expected")
	}
	if resp.Metadata != nil && resp.Metadata.DatasetSnapshot == "" {
		t.Error("dataset snapshot hash expected")
	}
}

func TestCalculateByAddress(t *testing.T) {
	srv := newTestServer(t)
	w := postCalculate(t, srv, CalculateRequest{
		Address: &AddressQuery{Postcode: "1012 AB", HouseNumber: "1"},
		Start:   monday(10, 0),
		End:     monday(11, 0),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp CalculateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ZoneID != string(testZone) {
		t.Errorf("zone = %s, want %s", resp.ZoneID, testZone)
	}
	if resp.Address == nil || resp.Address.Street != "Damrak" {
		t.Errorf("resolved address expected, got %+v", resp.Address)
	}
}

func TestCalculateUnmappedAddress(t *testing.T) {
	srv := newTestServer(t)
	w := postCalculate(t, srv, CalculateRequest{
		Address: &AddressQuery{Postcode: "9999ZZ", HouseNumber: "1"},
		Start:   monday(10, 0),
		End:     monday(11, 0),
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if code := errorCode(t, w); code != "ZONE_NOT_MAPPED" {
		t.Errorf("error code = %s", code)
	}
}

func TestCalculateValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		req  CalculateRequest
	}{
		{"neither zone nor address", CalculateRequest{Start: monday(10, 0), End: monday(11, 0)}},
		{"both zone and address", CalculateRequest{
			ZoneID:  string(testZone),
			Address: &AddressQuery{Postcode: "1012AB", HouseNumber: "1"},
			Start:   monday(10, 0), End: monday(11, 0),
		}},
		{"address without house number", CalculateRequest{
			Address: &AddressQuery{Postcode: "1012AB"},
			Start:   monday(10, 0), End: monday(11, 0),
		}},
		{"missing interval", CalculateRequest{ZoneID: string(testZone)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := postCalculate(t, srv, tc.req); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestCalculateStatusMapping(t *testing.T) {
	srv := newTestServer(t)

	w := postCalculate(t, srv, CalculateRequest{
		ZoneID: "99_NOPE", Start: monday(10, 0), End: monday(11, 0),
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown zone: status = %d, want 404", w.Code)
	}
	if code := errorCode(t, w); code != "UNKNOWN_ZONE" {
		t.Errorf("error code = %s", code)
	}

	w = postCalculate(t, srv, CalculateRequest{
		ZoneID: string(testZone), Start: monday(12, 0), End: monday(10, 0),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("reversed interval: status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != "INVALID_INTERVAL" {
		t.Errorf("error code = %s", code)
	}
}

func TestListZones(t *testing.T) {
	srv := newTestServer(t)
	w := get(srv, "/zones")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ZoneListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Zones[0].ID != string(testZone) {
		t.Errorf("unexpected listing: %+v", resp)
	}
}

func TestSearchZones(t *testing.T) {
	srv := newTestServer(t)

	w := get(srv, "/zones/search?q=centrum")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ZoneListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}

	if w := get(srv, "/zones/search"); w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", w.Code)
	}
}

func TestZoneTariff(t *testing.T) {
	srv := newTestServer(t)
	w := get(srv, "/zones/"+string(testZone)+"/tariff")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp TariffResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Structures) != 1 {
		t.Fatalf("got %d structures, want 1", len(resp.Structures))
	}
	st := resp.Structures[0]
	if st.VATPercentage != "21.00" {
		t.Errorf("vat = %s", st.VATPercentage)
	}
	if len(st.Parts) != 1 || st.Parts[0].Kind != "linear" || st.Parts[0].UnitAmount != "1.00" {
		t.Errorf("unexpected parts: %+v", st.Parts)
	}

	if w := get(srv, "/zones/99_NOPE/tariff"); w.Code != http.StatusNotFound {
		t.Errorf("unknown zone tariff: status = %d, want 404", w.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	w := get(srv, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v", health["status"])
	}
	if health["dataset_loaded"] != true {
		t.Error("dataset_loaded should be true")
	}

	w = get(srv, "/version")
	if w.Code != http.StatusOK {
		t.Fatalf("version status = %d", w.Code)
	}
}

func TestIndexDescribesAPI(t *testing.T) {
	srv := newTestServer(t)

	w := get(srv, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("index status = %d", w.Code)
	}
	var index struct {
		Name        string            `json:"name"`
		ZonesLoaded int               `json:"zones_loaded"`
		Endpoints   map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &index); err != nil {
		t.Fatal(err)
	}
	if index.Name == "" {
		t.Error("index should carry an API name")
	}
	if index.ZonesLoaded != 1 {
		t.Errorf("zones_loaded = %d, want 1", index.ZonesLoaded)
	}
	if _, ok := index.Endpoints["POST /calculate"]; !ok {
		t.Error("endpoint listing should include POST /calculate")
	}
}

func TestCalculationHistory(t *testing.T) {
	srv := newTestServer(t)
	srv.history = history.NewMemoryStore()

	w := postCalculate(t, srv, CalculateRequest{
		ZoneID: string(testZone),
		Start:  monday(10, 0),
		End:    monday(12, 0),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("calculate status = %d", w.Code)
	}
	var resp CalculateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	w = get(srv, "/calculations")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listing struct {
		Count        int              `json:"count"`
		Calculations []history.Record `json:"calculations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Count != 1 {
		t.Fatalf("count = %d, want 1", listing.Count)
	}
	if listing.Calculations[0].ID != resp.Metadata.RequestID {
		t.Error("record id should match the request id")
	}
	rec := listing.Calculations[0]
	if !rec.Start.Equal(monday(10, 0)) || !rec.End.Equal(monday(12, 0)) {
		t.Errorf("record interval = %v - %v, want the session interval", rec.Start, rec.End)
	}

	w = get(srv, "/calculations/"+resp.Metadata.RequestID)
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	if w := get(srv, "/calculations/missing"); w.Code != http.StatusNotFound {
		t.Errorf("missing record: status = %d, want 404", w.Code)
	}

	if w := get(srv, "/calculations?limit=bogus"); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want 400", w.Code)
	}
}

func TestHistoryNotConfigured(t *testing.T) {
	srv := newTestServer(t)
	if w := get(srv, "/calculations"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestNoDatasetLoaded(t *testing.T) {
	reg := registry.NewRegistry()
	eng := engine.New(reg, engine.Config{Location: time.UTC})
	srv := NewServer(eng, reg, nil, "test")

	w := postCalculate(t, srv, CalculateRequest{
		ZoneID: string(testZone), Start: monday(10, 0), End: monday(11, 0),
	})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}

	w = get(srv, "/health")
	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", health["status"])
	}
}
