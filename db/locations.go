package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Location struct to match the database schema
type Location struct {
	ID             int       `json:"id"`
	Unlocode       string    `json:"unlocode"`
	Name           string    `json:"name"`
	CountryCode    string    `json:"country_code"`
	Location       []float64 `json:"location"`
	IsAirport      bool      `json:"is_airport"`
	IsPort         bool      `json:"is_port"`
	IsTrainStation bool      `json:"is_train_station"`
	CreatedAt      time.Time `json:"created_at"`
}

// AutoComplete matches the start of the UN/LOCODE, country code or name,
// case-insensitively, ports first.
func AutoComplete(ctx context.Context, db Querier, text string, limit int) ([]Location, error) {
	query := `
		SELECT id, unlocode, name, country_code,
			is_airport, is_port, is_train_station, created_at,
			CASE
				WHEN location IS NOT NULL
				THEN ARRAY[ST_Y(location::geometry), ST_X(location::geometry)]
				ELSE ARRAY[]::float8[]
			END AS location
		FROM locations
		WHERE
			unlocode ILIKE $1 OR
			country_code ILIKE $1 OR
			name ILIKE $1
		ORDER BY is_port DESC, unlocode ASC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, escapeLike(text)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("autocomplete %q: %w", text, err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		var loc Location
		err := rows.Scan(
			&loc.ID,
			&loc.Unlocode,
			&loc.Name,
			&loc.CountryCode,
			&loc.IsAirport,
			&loc.IsPort,
			&loc.IsTrainStation,
			&loc.CreatedAt,
			pq.Array(&loc.Location),
		)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
