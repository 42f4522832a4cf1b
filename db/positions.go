package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	aisstream "github.com/aisstream/ais-message-models/golang/aisStream"
	"github.com/cridenour/go-postgis"
)

const srid = 4326

var ErrInvalidPosition = errors.New("invalid position")

// NewPoint builds a WGS84 point; PostGIS orders coordinates lon, lat.
func NewPoint(lat, lon float64) postgis.PointS {
	return postgis.PointS{SRID: srid, X: lon, Y: lat}
}

// ValidPosition rejects the AIS "not available" sentinels (91, 181) and
// anything outside WGS84 bounds.
func ValidPosition(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// InsertPositionReport stores one AIS position for a known vessel and moves
// the vessel's last known position. Duplicate (mmsi, timestamp) reports are
// ignored.
func InsertPositionReport(ctx context.Context, db Querier, mmsi string, report aisstream.PositionReport, ts time.Time) error {
	if ts.IsZero() {
		return fmt.Errorf("position for %s: zero timestamp", mmsi)
	}
	lat, lon := float64(report.Latitude), float64(report.Longitude)
	if !ValidPosition(lat, lon) {
		return fmt.Errorf("position for %s (%f, %f): %w", mmsi, lat, lon, ErrInvalidPosition)
	}

	vessel, err := GetVesselByMMSI(ctx, db, mmsi)
	if err != nil {
		return err
	}

	point := NewPoint(lat, lon)
	_, err = db.ExecContext(ctx, `
		INSERT INTO vessel_positions (vessel_id, mmsi, position, sog, cog, true_heading, timestamp)
		VALUES ($1, $2, ST_GeomFromEWKB($3)::geography, $4, $5, $6, $7)
		ON CONFLICT (mmsi, timestamp) DO NOTHING
	`, vessel.ID, mmsi, point, float64(report.Sog), float64(report.Cog), int(report.TrueHeading), ts.UTC())
	if err != nil {
		return fmt.Errorf("insert position for %s: %w", mmsi, err)
	}

	_, err = db.ExecContext(ctx, `
		UPDATE vessels SET last_known_position = ST_GeomFromEWKB($2)::geography, last_seen = $3
		WHERE id = $1
	`, vessel.ID, point, ts.UTC())
	if err != nil {
		return fmt.Errorf("update last known position for %s: %w", mmsi, err)
	}
	return nil
}
