package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sanjigen3D/logisticaint-app-sub000/carriers"
	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/mappers"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/services"
)

type stubSource struct {
	carrier string
	routes  []models.UnifiedRoute
	err     error
}

func (s stubSource) Carrier() string { return s.carrier }

func (s stubSource) FetchRoutes(context.Context, models.RouteQuery) ([]models.UnifiedRoute, error) {
	return s.routes, s.err
}

type captureSearcher struct {
	inner *services.ItineraryAggregator
	mu    sync.Mutex
	last  models.RouteQuery
}

func (c *captureSearcher) Aggregate(ctx context.Context, q models.RouteQuery) (*services.Search, error) {
	c.mu.Lock()
	c.last = q
	c.mu.Unlock()
	return c.inner.Aggregate(ctx, q)
}

type countingRecorder struct {
	mu     sync.Mutex
	routes int
}

func (c *countingRecorder) Record(_ context.Context, routes []models.UnifiedRoute) {
	c.mu.Lock()
	c.routes += len(routes)
	c.mu.Unlock()
}

func routeOn(id, carrier, departure string) models.UnifiedRoute {
	return models.UnifiedRoute{
		ID:      id,
		Carrier: carrier,
		Legs: []models.Leg{{
			VesselName: "EVER GIVEN",
			IMONumber:  "9811000",
			Departure:  models.LegEndpoint{PortCode: "CNSHA", DateTime: departure},
			Arrival:    models.LegEndpoint{PortCode: "NLRTM", DateTime: "2024-04-20T10:00:00Z"},
		}},
	}
}

func newSearcher(sources ...services.RouteSource) *captureSearcher {
	return &captureSearcher{inner: services.NewItineraryAggregator(sources)}
}

func TestSearchHandler(t *testing.T) {
	okZim := stubSource{carrier: models.CarrierZIM, routes: []models.UnifiedRoute{
		routeOn("zim-1", models.CarrierZIM, "2024-03-15T23:30:00Z"),
		routeOn("zim-2", models.CarrierZIM, "2024-03-16T08:00:00Z"),
	}}
	okHapag := stubSource{carrier: models.CarrierHapag, routes: []models.UnifiedRoute{
		routeOn("hl-1", models.CarrierHapag, "2024-03-15T09:00:00+01:00"),
	}}
	failMaersk := stubSource{carrier: models.CarrierMaersk, err: &carriers.StatusError{Code: 500, Body: "down"}}

	tests := []struct {
		name       string
		sources    []services.RouteSource
		body       string
		wantStatus int
		wantRoutes int
		wantFail   int
		wantDates  []string
	}{
		{
			name:       "all carriers succeed",
			sources:    []services.RouteSource{okZim, okHapag},
			body:       `{"originCode":"cnsha","destinationCode":"NLRTM"}`,
			wantStatus: http.StatusOK,
			wantRoutes: 3,
			wantDates:  []string{"2024-03-15", "2024-03-16"},
		},
		{
			name:       "one carrier fails",
			sources:    []services.RouteSource{okZim, failMaersk},
			body:       `{"originCode":"CNSHA","destinationCode":"NLRTM"}`,
			wantStatus: http.StatusOK,
			wantRoutes: 2,
			wantFail:   1,
			wantDates:  []string{"2024-03-15", "2024-03-16"},
		},
		{
			name:       "timezone moves the late sailing",
			sources:    []services.RouteSource{okZim},
			body:       `{"originCode":"CNSHA","destinationCode":"NLRTM","timezone":"Asia/Shanghai"}`,
			wantStatus: http.StatusOK,
			wantRoutes: 2,
			wantDates:  []string{"2024-03-16"},
		},
		{
			name:       "every carrier fails",
			sources:    []services.RouteSource{failMaersk},
			body:       `{"originCode":"CNSHA","destinationCode":"NLRTM"}`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "malformed body",
			sources:    []services.RouteSource{okZim},
			body:       `{"originCode":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad unlocode",
			sources:    []services.RouteSource{okZim},
			body:       `{"originCode":"SHANGHAI","destinationCode":"NLRTM"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown timezone",
			sources:    []services.RouteSource{okZim},
			body:       `{"originCode":"CNSHA","destinationCode":"NLRTM","timezone":"Mars/Olympus"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := newSearcher(tt.sources...)
			recorder := &countingRecorder{}
			h := SearchHandler(searcher, recorder, time.UTC)

			req := httptest.NewRequest(http.MethodPost, "/itineraries/search", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp searchResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.SearchID == "" {
				t.Error("missing search id")
			}
			if len(resp.Routes) != tt.wantRoutes {
				t.Errorf("routes = %d, want %d", len(resp.Routes), tt.wantRoutes)
			}
			if len(resp.Failures) != tt.wantFail {
				t.Errorf("failures = %d, want %d", len(resp.Failures), tt.wantFail)
			}
			if fmt.Sprint(resp.Dates) != fmt.Sprint(tt.wantDates) {
				t.Errorf("dates = %v, want %v", resp.Dates, tt.wantDates)
			}
			if recorder.routes != tt.wantRoutes {
				t.Errorf("recorded %d routes, want %d", recorder.routes, tt.wantRoutes)
			}
			if searcher.last.OriginCode != "CNSHA" {
				t.Errorf("origin code not normalized: %q", searcher.last.OriginCode)
			}
		})
	}
}

func TestCalendarHandler(t *testing.T) {
	src := stubSource{carrier: models.CarrierZIM, routes: []models.UnifiedRoute{
		routeOn("a", models.CarrierZIM, "2024-02-29T12:00:00Z"),
		routeOn("b", models.CarrierZIM, "2024-02-29T18:00:00Z"),
		routeOn("c", models.CarrierZIM, "2024-03-01T06:00:00Z"),
	}}
	searcher := newSearcher(src)
	h := CalendarHandler(searcher, nil, time.UTC)

	req := httptest.NewRequest(http.MethodGet, "/itineraries/calendar?originCode=CNSHA&destinationCode=NLRTM&year=2024&month=2", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp calendarResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Month != "2024-02" || resp.Prev != "2024-01" || resp.Next != "2024-03" {
		t.Errorf("months = %s/%s/%s", resp.Prev, resp.Month, resp.Next)
	}
	if len(resp.Days) != 29 {
		t.Fatalf("days = %d, want 29", len(resp.Days))
	}
	if resp.Days[28].Count != 2 {
		t.Errorf("feb 29 count = %d, want 2", resp.Days[28].Count)
	}
	if searcher.last.DepartureDate != "2024-02-01" {
		t.Errorf("departure date = %q", searcher.last.DepartureDate)
	}
}

func TestCalendarHandlerBadMonth(t *testing.T) {
	h := CalendarHandler(newSearcher(), nil, time.UTC)

	for _, q := range []string{"year=2024&month=13", "year=abc&month=2", "month=2"} {
		req := httptest.NewRequest(http.MethodGet, "/itineraries/calendar?originCode=CNSHA&destinationCode=NLRTM&"+q, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

type stubTracker struct {
	res models.TrackingResult
	err error
}

func (s stubTracker) Track(context.Context, string, string) (models.TrackingResult, error) {
	return s.res, s.err
}

func TestTrackingRoute(t *testing.T) {
	tests := []struct {
		name       string
		tracker    stubTracker
		wantStatus int
	}{
		{"found", stubTracker{res: models.TrackingResult{Carrier: models.CarrierZIM}}, http.StatusOK},
		{"unknown carrier", stubTracker{err: services.ErrUnknownCarrier}, http.StatusNotFound},
		{"bad number", stubTracker{err: services.ErrInvalidTrackingNumber}, http.StatusBadRequest},
		{"carrier 404", stubTracker{err: &carriers.StatusError{Code: 404}}, http.StatusNotFound},
		{"unexpected", stubTracker{err: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Deps{Tracker: tt.tracker, Searcher: newSearcher()})
			req := httptest.NewRequest(http.MethodGet, "/tracking/zim/ZIMU1234567", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "boom") {
				t.Error("internal error leaked to client")
			}
		})
	}
}

func TestCarrierBodyNotForwarded(t *testing.T) {
	body := `{"internal":"stack trace from carrier gateway"}`
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"carrier 5xx", fmt.Errorf("zim tracking: %w", &carriers.StatusError{Code: 503, Body: body}), http.StatusBadGateway, "upstream carrier error"},
		{"carrier 404", fmt.Errorf("hapag tracking: %w", &carriers.StatusError{Code: 404, Body: body}), http.StatusNotFound, "not found at carrier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			TrackingHandler(stubTracker{err: tt.err}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tracking/zim/ZIMU1234567", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if strings.Contains(rec.Body.String(), "stack trace") {
				t.Errorf("carrier body leaked: %s", rec.Body.String())
			}
			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp["error"], tt.wantMsg)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{db.ErrNotFound, http.StatusNotFound},
		{carriers.ErrNotConfigured, http.StatusServiceUnavailable},
		{fmt.Errorf("zim: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{services.ErrAllCarriersFailed, http.StatusBadGateway},
		{fmt.Errorf("decode: %w", mappers.ErrInvalidPayload), http.StatusBadGateway},
		{&carriers.StatusError{Code: 503}, http.StatusBadGateway},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRouterMethodAndCORS(t *testing.T) {
	router := NewRouter(Deps{Searcher: newSearcher(), Tracker: stubTracker{}, CORSOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodGet, "/itineraries/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET search status = %d, want 405", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("allow origin = %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id")
	}
}

func TestVesselRouteGeoJSON(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	mock.ExpectQuery("FROM vessel_positions").
		WithArgs("538000001").
		WillReturnRows(sqlmock.NewRows([]string{"position"}).
			AddRow([]byte("0101000020E6100000000000000000244000000000000034C0")).
			AddRow([]byte("0101000020E6100000000000000000264000000000000036C0")))

	router := NewRouter(Deps{Searcher: newSearcher(), Tracker: stubTracker{}, DB: conn})
	req := httptest.NewRequest(http.MethodGet, "/vessels/route/geojson?mmsi=538000001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type = %q", ct)
	}

	var feature geoJSONFeature
	if err := json.NewDecoder(rec.Body).Decode(&feature); err != nil {
		t.Fatal(err)
	}
	if feature.Geometry.Type != "LineString" || len(feature.Geometry.Coordinates) != 2 {
		t.Fatalf("geometry = %+v", feature.Geometry)
	}
	if c := feature.Geometry.Coordinates[0]; c[0] != 10 || c[1] != -20 {
		t.Errorf("first point = %v, want [10 -20]", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVesselRouteRequiresMMSI(t *testing.T) {
	rec := httptest.NewRecorder()
	GetVesselRoute(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vessels/route", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAutoCompleteTooShort(t *testing.T) {
	rec := httptest.NewRecorder()
	AutoCompleteHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/autocomplete?q=r", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func writeArchived(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSummarizeArchive(t *testing.T) {
	root := t.TempDir()
	hour := filepath.Join(root, "2024-03-15", "08")
	writeArchived(t, hour, "1.json", `{"MessageType":"PositionReport","MetaData":{"MMSI":538000001,"time_utc":"2024-03-15 08:00:00.1 +0000 UTC"}}`)
	writeArchived(t, hour, "2.json", `{"MessageType":"ShipStaticData","MetaData":{"MMSI":538000001,"time_utc":"2024-03-15 08:30:00 +0000 UTC"}}`)
	writeArchived(t, hour, "3.json", `{"MessageType":"PositionReport","MetaData":{"MMSI":538000001,"time_utc":"2024-03-15 08:10:00 +0000 UTC"}}`)
	writeArchived(t, hour, "4.json", `not json`)
	writeArchived(t, hour, "notes.txt", `ignored`)

	got, err := SummarizeArchive(root)
	if err != nil {
		t.Fatal(err)
	}
	sum, ok := got["538000001"]
	if !ok || len(got) != 1 {
		t.Fatalf("summaries = %+v", got)
	}
	if sum.Count != 3 {
		t.Errorf("count = %d, want 3", sum.Count)
	}
	if fmt.Sprint(sum.EventTypes) != "[PositionReport ShipStaticData]" {
		t.Errorf("event types = %v", sum.EventTypes)
	}
	if want := time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC); !sum.LastEvent.Equal(want) {
		t.Errorf("last event = %v, want %v", sum.LastEvent, want)
	}
}

func TestSummarizeArchiveMissingDir(t *testing.T) {
	got, err := SummarizeArchive(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("summaries = %v", got)
	}
}
