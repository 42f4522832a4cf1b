package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type Vessel struct {
	ID              int       `json:"id"`
	IMONumber       string    `json:"imo_number"`
	MMSI            string    `json:"mmsi"`
	Name            string    `json:"name"`
	IsTracked       bool      `json:"is_tracked"`
	CarrierCode     string    `json:"carrier_code"`
	AppearanceCount int       `json:"appearance_count"`
	LastSeen        time.Time `json:"last_seen"`
	CreatedAt       time.Time `json:"created_at"`
	// [lat, lon], empty when no AIS position has been stored
	LastKnownPosition []float64 `json:"last_known_position"`
}

const vesselColumns = `id, imo_number, COALESCE(mmsi, ''), COALESCE(name, ''), is_tracked,
	COALESCE(carrier_code, ''), appearance_count, last_seen, created_at,
	CASE
		WHEN last_known_position IS NOT NULL
		THEN ARRAY[ST_Y(last_known_position::geometry), ST_X(last_known_position::geometry)]
		ELSE ARRAY[]::float8[]
	END`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVessel(s scanner) (Vessel, error) {
	var v Vessel
	err := s.Scan(&v.ID, &v.IMONumber, &v.MMSI, &v.Name, &v.IsTracked, &v.CarrierCode,
		&v.AppearanceCount, &v.LastSeen, &v.CreatedAt, pq.Array(&v.LastKnownPosition))
	return v, err
}

// UpsertVessel inserts the vessel or bumps its appearance count. A known MMSI
// is never overwritten by an empty one.
func UpsertVessel(ctx context.Context, db Querier, vessel Vessel) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO vessels (imo_number, mmsi, name, carrier_code, appearance_count)
		VALUES ($1, NULLIF($2, ''), $3, $4, 1)
		ON CONFLICT (imo_number)
		DO UPDATE SET
			mmsi = COALESCE(EXCLUDED.mmsi, vessels.mmsi),
			name = EXCLUDED.name,
			carrier_code = EXCLUDED.carrier_code,
			appearance_count = vessels.appearance_count + 1,
			last_seen = CURRENT_TIMESTAMP
	`, vessel.IMONumber, vessel.MMSI, vessel.Name, vessel.CarrierCode)
	if err != nil {
		return fmt.Errorf("upsert vessel %s: %w", vessel.IMONumber, err)
	}
	return nil
}

// UpdateTrackedVessels flags the given MMSIs as tracked.
func UpdateTrackedVessels(ctx context.Context, db Querier, mmsis []string) (int64, error) {
	if len(mmsis) == 0 {
		return 0, nil
	}

	result, err := db.ExecContext(ctx, `UPDATE vessels SET is_tracked = true WHERE mmsi = ANY($1)`, pq.Array(mmsis))
	if err != nil {
		return 0, fmt.Errorf("update tracked vessels: %w", err)
	}
	return result.RowsAffected()
}

// GetTopVessels returns the most frequently appearing vessels that have an MMSI.
func GetTopVessels(ctx context.Context, db Querier, limit int) ([]Vessel, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+vesselColumns+`
		FROM vessels
		WHERE mmsi IS NOT NULL AND mmsi <> ''
		ORDER BY appearance_count DESC, last_seen DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top vessels: %w", err)
	}
	defer rows.Close()

	return collectVessels(rows)
}

func GetTrackedVessels(ctx context.Context, db Querier) ([]Vessel, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+vesselColumns+`
		FROM vessels
		WHERE is_tracked
		ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("tracked vessels: %w", err)
	}
	defer rows.Close()

	return collectVessels(rows)
}

func collectVessels(rows *sql.Rows) ([]Vessel, error) {
	vessels := []Vessel{}
	for rows.Next() {
		v, err := scanVessel(rows)
		if err != nil {
			return nil, err
		}
		vessels = append(vessels, v)
	}
	return vessels, rows.Err()
}

func GetVesselByMMSI(ctx context.Context, db Querier, mmsi string) (Vessel, error) {
	v, err := scanVessel(db.QueryRowContext(ctx, `SELECT `+vesselColumns+` FROM vessels WHERE mmsi = $1`, mmsi))
	if errors.Is(err, sql.ErrNoRows) {
		return Vessel{}, fmt.Errorf("vessel mmsi %s: %w", mmsi, ErrNotFound)
	}
	if err != nil {
		return Vessel{}, fmt.Errorf("vessel mmsi %s: %w", mmsi, err)
	}
	return v, nil
}

func GetVesselByIMO(ctx context.Context, db Querier, imo string) (Vessel, error) {
	v, err := scanVessel(db.QueryRowContext(ctx, `SELECT `+vesselColumns+` FROM vessels WHERE imo_number = $1`, imo))
	if errors.Is(err, sql.ErrNoRows) {
		return Vessel{}, fmt.Errorf("vessel imo %s: %w", imo, ErrNotFound)
	}
	if err != nil {
		return Vessel{}, fmt.Errorf("vessel imo %s: %w", imo, err)
	}
	return v, nil
}

// GetVesselsByIMOs loads every known vessel among imos, keyed by IMO.
func GetVesselsByIMOs(ctx context.Context, db Querier, imos []string) (map[string]Vessel, error) {
	vessels := make(map[string]Vessel)
	if len(imos) == 0 {
		return vessels, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+vesselColumns+`
		FROM vessels
		WHERE imo_number = ANY($1)
	`, pq.Array(imos))
	if err != nil {
		return nil, fmt.Errorf("vessels by imo: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVessel(rows)
		if err != nil {
			return nil, err
		}
		vessels[v.IMONumber] = v
	}
	return vessels, rows.Err()
}

// GetVesselLastKnownPosition returns [lat, lon].
func GetVesselLastKnownPosition(ctx context.Context, db Querier, imo string) ([]float64, error) {
	var lat, lon sql.NullFloat64
	err := db.QueryRowContext(ctx, `
		SELECT ST_Y(last_known_position::geometry), ST_X(last_known_position::geometry)
		FROM vessels WHERE imo_number = $1
	`, imo).Scan(&lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vessel imo %s: %w", imo, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("last known position %s: %w", imo, err)
	}
	if !lat.Valid || !lon.Valid {
		return nil, fmt.Errorf("position for vessel imo %s: %w", imo, ErrNotFound)
	}
	return []float64{lat.Float64, lon.Float64}, nil
}
