package db

import (
	"context"
	"fmt"

	"github.com/cridenour/go-postgis"
)

// GetVesselRoute returns the vessel's stored positions as [lon, lat] pairs in
// chronological order.
func GetVesselRoute(ctx context.Context, db Querier, mmsi string) ([][]float64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT position::geometry
		FROM vessel_positions
		WHERE mmsi = $1
		ORDER BY timestamp ASC
	`, mmsi)
	if err != nil {
		return nil, fmt.Errorf("vessel route %s: %w", mmsi, err)
	}
	defer rows.Close()

	route := [][]float64{}
	for rows.Next() {
		var p postgis.PointS
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		route = append(route, []float64{p.X, p.Y})
	}
	return route, rows.Err()
}
