// Package seeder loads the UN/LOCODE code list into the locations table.
package seeder

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lib/pq"

	"github.com/sanjigen3D/logisticaint-app-sub000/db"
)

type SeederMetrics struct {
	TotalRecords       int64
	ValidCoordinates   int64
	InvalidCoordinates int64
	SkippedRecords     int64
	ProcessingDuration time.Duration
	DatabaseDuration   time.Duration
	BatchSize          int
}

type Location struct {
	UnLoCode       string
	Name           string
	CountryCode    string
	IsPort         bool
	IsAirport      bool
	IsTrainStation bool
	Latitude       float64
	Longitude      float64
	HasCoordinates bool
}

// code-list.csv columns
const (
	colCountry     = 1
	colLocation    = 2
	colName        = 3
	colFunction    = 7
	colCoordinates = 10
	numColumns     = 12
)

// TxBeginner is satisfied by *sql.DB.
type TxBeginner interface {
	db.Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// SeedLocations loads csvPath into the locations table in batches. An
// already populated table is left alone unless force is set.
func SeedLocations(ctx context.Context, conn TxBeginner, csvPath string, batchSize int, force bool) (*SeederMetrics, error) {
	metrics := &SeederMetrics{BatchSize: batchSize}
	if batchSize <= 0 {
		return metrics, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	if !force {
		var count int64
		if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&count); err != nil {
			return metrics, fmt.Errorf("count locations: %w", err)
		}
		if count > 0 {
			slog.Info("locations already seeded, skipping", "count", count)
			return metrics, nil
		}
	}

	startTime := time.Now()
	locations, err := ProcessCSV(csvPath, metrics)
	if err != nil {
		return metrics, fmt.Errorf("failed to process CSV: %w", err)
	}
	metrics.ProcessingDuration = time.Since(startTime)

	slog.Info("CSV processing completed",
		"records", metrics.TotalRecords,
		"valid_coordinates", metrics.ValidCoordinates,
		"skipped", metrics.SkippedRecords,
		"dur", metrics.ProcessingDuration)

	dbStart := time.Now()
	for i := 0; i < len(locations); i += batchSize {
		end := min(i+batchSize, len(locations))

		if err := bulkInsert(ctx, conn, locations[i:end]); err != nil {
			return metrics, fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		slog.Debug("seeding progress", "inserted", end, "total", len(locations))
	}

	metrics.DatabaseDuration = time.Since(dbStart)
	slog.Info("seeding completed", "locations", len(locations), "db_dur", metrics.DatabaseDuration)
	return metrics, nil
}

func ProcessCSV(filePath string, metrics *SeederMetrics) ([]Location, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ParseCSV(bufio.NewReaderSize(file, 256*1024), 4, metrics)
}

// ParseCSV reads a UN/LOCODE code list and converts the rows on workers
// goroutines. Rows without a location code (country headers) are skipped.
func ParseCSV(r io.Reader, workers int, metrics *SeederMetrics) ([]Location, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = numColumns
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	if workers < 1 {
		workers = 1
	}
	chunkSize := (len(records) + workers - 1) / workers

	chunks := make([][]Location, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := min(w*chunkSize, len(records))
		end := min(start+chunkSize, len(records))

		wg.Add(1)
		go func(w int, chunk [][]string) {
			defer wg.Done()
			out := make([]Location, 0, len(chunk))
			for _, record := range chunk {
				atomic.AddInt64(&metrics.TotalRecords, 1)

				loc, ok := parseRecord(record)
				if !ok {
					atomic.AddInt64(&metrics.SkippedRecords, 1)
					continue
				}
				if loc.HasCoordinates {
					atomic.AddInt64(&metrics.ValidCoordinates, 1)
				} else {
					atomic.AddInt64(&metrics.InvalidCoordinates, 1)
				}
				out = append(out, loc)
			}
			chunks[w] = out
		}(w, records[start:end])
	}
	wg.Wait()

	all := make([]Location, 0, len(records))
	for _, c := range chunks {
		all = append(all, c...)
	}
	return all, nil
}

func parseRecord(record []string) (Location, bool) {
	country := strings.TrimSpace(record[colCountry])
	code := strings.TrimSpace(record[colLocation])
	name := strings.TrimSpace(record[colName])
	if country == "" || code == "" || name == "" {
		return Location{}, false
	}

	function := record[colFunction]
	lat, lon, valid := parseCoordinates(strings.TrimSpace(record[colCoordinates]))

	return Location{
		UnLoCode:       country + code,
		Name:           name,
		CountryCode:    country,
		IsPort:         functionAt(function, 0, '1'),
		IsTrainStation: functionAt(function, 1, '2'),
		IsAirport:      functionAt(function, 3, '4'),
		Latitude:       lat,
		Longitude:      lon,
		HasCoordinates: valid,
	}, true
}

// functionAt checks one position of the 8-character function classifier,
// e.g. "1-3-----" is a port with road access.
func functionAt(function string, i int, want byte) bool {
	return len(function) > i && function[i] == want
}

// parseCoordinates reads the UN/LOCODE "DDMMN DDDMMW" form.
func parseCoordinates(coord string) (float64, float64, bool) {
	parts := strings.Fields(coord)
	if len(parts) != 2 || len(parts[0]) != 5 || len(parts[1]) != 6 {
		return 0, 0, false
	}

	lat, ok := degMin(parts[0][:2], parts[0][2:4], parts[0][4], 'N', 'S')
	if !ok || lat > 90 || lat < -90 {
		return 0, 0, false
	}
	lon, ok := degMin(parts[1][:3], parts[1][3:5], parts[1][5], 'E', 'W')
	if !ok || lon > 180 || lon < -180 {
		return 0, 0, false
	}
	return lat, lon, true
}

func degMin(deg, minutes string, dir, pos, neg byte) (float64, bool) {
	d, err := strconv.Atoi(deg)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m >= 60 {
		return 0, false
	}

	v := float64(d) + float64(m)/60.0
	switch dir {
	case pos:
		return v, true
	case neg:
		return -v, true
	}
	return 0, false
}

func bulkInsert(ctx context.Context, conn TxBeginner, locations []Location) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		CREATE TEMPORARY TABLE temp_locations (
			unlocode TEXT NOT NULL,
			name TEXT NOT NULL,
			country_code TEXT NOT NULL,
			location GEOGRAPHY(POINT, 4326),
			is_port BOOLEAN DEFAULT FALSE,
			is_airport BOOLEAN DEFAULT FALSE,
			is_train_station BOOLEAN DEFAULT FALSE
		) ON COMMIT DROP
	`)
	if err != nil {
		return fmt.Errorf("failed to create temp table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"temp_locations",
		"unlocode", "name", "country_code",
		"location", "is_port", "is_airport", "is_train_station",
	))
	if err != nil {
		return fmt.Errorf("failed to prepare COPY statement: %w", err)
	}
	defer stmt.Close()

	for _, loc := range locations {
		var point interface{}
		if loc.HasCoordinates {
			point = fmt.Sprintf("SRID=4326;POINT(%f %f)", loc.Longitude, loc.Latitude)
		}

		_, err := stmt.ExecContext(ctx,
			loc.UnLoCode,
			loc.Name,
			loc.CountryCode,
			point,
			loc.IsPort,
			loc.IsAirport,
			loc.IsTrainStation,
		)
		if err != nil {
			return fmt.Errorf("failed to COPY location %s: %w", loc.UnLoCode, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to flush COPY buffer: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO locations (
			unlocode, name, country_code,
			location, is_port, is_airport, is_train_station
		)
		SELECT DISTINCT ON (unlocode, name)
			unlocode, name, country_code,
			location, is_port, is_airport, is_train_station
		FROM temp_locations
		ON CONFLICT (unlocode, name) DO UPDATE SET
			country_code = EXCLUDED.country_code,
			location = COALESCE(EXCLUDED.location, locations.location),
			is_port = EXCLUDED.is_port,
			is_airport = EXCLUDED.is_airport,
			is_train_station = EXCLUDED.is_train_station
	`)
	if err != nil {
		return fmt.Errorf("failed to insert from temp table: %w", err)
	}

	return tx.Commit()
}
