package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/middleware"
)

// Deps are the collaborators the HTTP surface needs. DB may be nil, in which
// case the vessel and location routes are not registered.
type Deps struct {
	Searcher    Searcher
	Tracker     Tracker
	Recorder    VesselRecorder
	DB          db.Querier
	Pinger      pinger
	Location    *time.Location
	ArchiveDir  string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter wires the handlers and wraps them in the shared middleware.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	handle := func(pattern, operation string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Otel(operation)(h))
	}

	handle("GET /health", "health", HealthHandler(d.Pinger))
	handle("POST /itineraries/search", "itineraries.search", SearchHandler(d.Searcher, d.Recorder, d.Location))
	handle("GET /itineraries/calendar", "itineraries.calendar", CalendarHandler(d.Searcher, d.Recorder, d.Location))
	handle("GET /tracking/{carrier}/{number}", "tracking", TrackingHandler(d.Tracker))

	if d.DB != nil {
		handle("GET /autocomplete", "autocomplete", AutoCompleteHandler(d.DB))
		handle("GET /vessels/tracked", "vessels.tracked", GetTrackedVesselsHandler(d.DB))
		handle("GET /vessels/route", "vessels.route", GetVesselRoute(d.DB))
		handle("GET /vessels/route/geojson", "vessels.route.geojson", GetVesselRouteGeoJSON(d.DB))
		handle("GET /vessels/last-known-position", "vessels.last_known_position", GetVesselLastKnownPosition(d.DB))
	}
	if d.ArchiveDir != "" {
		handle("GET /ais/files", "ais.files", FilesExaminerHandler(d.ArchiveDir))
	}

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(d.Logger),
		middleware.Cors(d.CORSOrigins),
	)
}
