package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/calendar"
	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/services"
)

type Searcher interface {
	Aggregate(ctx context.Context, q models.RouteQuery) (*services.Search, error)
}

type Tracker interface {
	Track(ctx context.Context, carrier, number string) (models.TrackingResult, error)
}

type VesselRecorder interface {
	Record(ctx context.Context, routes []models.UnifiedRoute)
}

type searchRequest struct {
	models.RouteQuery
	Timezone string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

type searchResponse struct {
	SearchID string                `json:"searchId"`
	Routes   []models.UnifiedRoute `json:"routes"`
	Failures []services.Failure    `json:"failures"`
	Calendar map[string][]string   `json:"calendar"`
	Dates    []string              `json:"dates"`
}

// location picks the bucketing zone: the request's, else the server default.
func location(tz string, fallback *time.Location) (*time.Location, error) {
	if tz == "" {
		return fallback, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", tz)
	}
	return loc, nil
}

// SearchHandler queries every carrier and groups the merged routes by
// departure day. A carrier that fails is reported in failures; only a total
// failure is an error response.
func SearchHandler(searcher Searcher, recorder VesselRecorder, defaultLoc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.OriginCode = strings.ToUpper(strings.TrimSpace(req.OriginCode))
		req.DestinationCode = strings.ToUpper(strings.TrimSpace(req.DestinationCode))
		if err := models.Validate(req); err != nil {
			writeError(w, r, http.StatusBadRequest, validationMessage(err))
			return
		}

		loc, err := location(req.Timezone, defaultLoc)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		s, err := searcher.Aggregate(r.Context(), req.RouteQuery)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			writeErr(w, r, err)
			return
		}

		routes := s.Routes()
		if recorder != nil {
			recorder.Record(r.Context(), routes)
		}

		buckets := calendar.Group(routes, loc)
		failures := s.Failures()
		if failures == nil {
			failures = []services.Failure{}
		}

		writeJSON(w, r, http.StatusOK, searchResponse{
			SearchID: s.ID,
			Routes:   routes,
			Failures: failures,
			Calendar: buckets.IDs(),
			Dates:    buckets.Dates(),
		})
	}
}

type calendarResponse struct {
	Month    string             `json:"month"`
	Prev     string             `json:"prev"`
	Next     string             `json:"next"`
	Timezone string             `json:"timezone"`
	Days     []calendar.Day     `json:"days"`
	Failures []services.Failure `json:"failures"`
}

// CalendarHandler returns one month grid of departures. The month defaults to
// the current one in the requested zone.
func CalendarHandler(searcher Searcher, recorder VesselRecorder, defaultLoc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		loc, err := location(q.Get("timezone"), defaultLoc)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		month := calendar.MonthOf(time.Now().In(loc))
		if q.Get("year") != "" || q.Get("month") != "" {
			year, yerr := strconv.Atoi(q.Get("year"))
			mon, merr := strconv.Atoi(q.Get("month"))
			if yerr != nil || merr != nil {
				writeError(w, r, http.StatusBadRequest, "year and month must both be numbers")
				return
			}
			if month, err = calendar.NewMonth(year, mon); err != nil {
				writeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
		}

		query := models.RouteQuery{
			OriginCode:      strings.ToUpper(strings.TrimSpace(q.Get("originCode"))),
			DestinationCode: strings.ToUpper(strings.TrimSpace(q.Get("destinationCode"))),
			Origin:          q.Get("origin"),
			Destination:     q.Get("destination"),
			DepartureDate:   month.String() + "-01",
		}
		if err := models.Validate(query); err != nil {
			writeError(w, r, http.StatusBadRequest, validationMessage(err))
			return
		}

		s, err := searcher.Aggregate(r.Context(), query)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			writeErr(w, r, err)
			return
		}

		routes := s.Routes()
		if recorder != nil {
			recorder.Record(r.Context(), routes)
		}

		failures := s.Failures()
		if failures == nil {
			failures = []services.Failure{}
		}

		writeJSON(w, r, http.StatusOK, calendarResponse{
			Month:    month.String(),
			Prev:     month.Prev().String(),
			Next:     month.Next().String(),
			Timezone: loc.String(),
			Days:     month.Days(calendar.Group(routes, loc)),
			Failures: failures,
		})
	}
}

func TrackingHandler(tracker Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := tracker.Track(r.Context(), r.PathValue("carrier"), r.PathValue("number"))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Info("tracking failed", "carrier", r.PathValue("carrier"), "error", err)
			writeErr(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}

func AutoCompleteHandler(q db.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := strings.TrimSpace(r.URL.Query().Get("q"))
		if len(text) < 2 {
			writeError(w, r, http.StatusBadRequest, "q must be at least 2 characters")
			return
		}

		locations, err := db.AutoComplete(r.Context(), q, text, 10)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, locations)
	}
}

func GetTrackedVesselsHandler(q db.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vessels, err := db.GetTrackedVessels(r.Context(), q)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, vessels)
	}
}

func GetVesselRoute(q db.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mmsi, ok := requireParam(w, r, "mmsi")
		if !ok {
			return
		}
		route, err := db.GetVesselRoute(r.Context(), q, mmsi)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, route)
	}
}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   geoJSONGeometry `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// GetVesselRouteGeoJSON serves the stored track as a LineString feature.
func GetVesselRouteGeoJSON(q db.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mmsi, ok := requireParam(w, r, "mmsi")
		if !ok {
			return
		}
		route, err := db.GetVesselRoute(r.Context(), q, mmsi)
		if err != nil {
			writeErr(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		writeJSON(w, r, http.StatusOK, routeFeature(mmsi, route))
	}
}

func routeFeature(mmsi string, route [][]float64) geoJSONFeature {
	return geoJSONFeature{
		Type: "Feature",
		Geometry: geoJSONGeometry{
			Type:        "LineString",
			Coordinates: route,
		},
		Properties: map[string]any{
			"mmsi":   mmsi,
			"points": len(route),
		},
	}
}

func GetVesselLastKnownPosition(q db.Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imo, ok := requireParam(w, r, "imo")
		if !ok {
			return
		}
		pos, err := db.GetVesselLastKnownPosition(r.Context(), q, imo)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"imo": imo, "position": pos})
	}
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func HealthHandler(p pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
				return
			}
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func requireParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		writeError(w, r, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return v, true
}
