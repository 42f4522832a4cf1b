package seeder

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

const codeList = `Change,Country,Location,Name,NameWoDiacritics,Subdivision,Status,Function,Date,IATA,Coordinates,Remarks
,CN,,.CHINA,,,,,,,,
,CN,SHA,Shanghai,Shanghai,SH,AI,12345---,0701,SHA,3114N 12129E,
,NL,RTM,Rotterdam,Rotterdam,ZH,AI,12345---,0307,RTM,5155N 00430E,
,CL,SCL,Santiago,Santiago,RM,AI,---4----,0501,SCL,,
,BR,SSZ,Santos,Santos,SP,AI,1-------,0501,SSZ,2356S 04619W,
`

func TestParseCSV(t *testing.T) {
	metrics := &SeederMetrics{}
	locs, err := ParseCSV(strings.NewReader(codeList), 3, metrics)
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	if len(locs) != 4 {
		t.Fatalf("got %d locations, want 4", len(locs))
	}
	if metrics.TotalRecords != 5 || metrics.SkippedRecords != 1 {
		t.Errorf("metrics = %+v", metrics)
	}
	if metrics.ValidCoordinates != 3 || metrics.InvalidCoordinates != 1 {
		t.Errorf("coordinate metrics = %+v", metrics)
	}

	byCode := map[string]Location{}
	for _, l := range locs {
		byCode[l.UnLoCode] = l
	}

	sha := byCode["CNSHA"]
	if !sha.IsPort || !sha.IsTrainStation || !sha.IsAirport || sha.CountryCode != "CN" {
		t.Errorf("CNSHA = %+v", sha)
	}
	if scl := byCode["CLSCL"]; scl.IsPort || !scl.IsAirport || scl.HasCoordinates {
		t.Errorf("CLSCL = %+v", scl)
	}
	ssz := byCode["BRSSZ"]
	if math.Abs(ssz.Latitude-(-23.9333)) > 0.001 || math.Abs(ssz.Longitude-(-46.3167)) > 0.001 {
		t.Errorf("BRSSZ coordinates = %f, %f", ssz.Latitude, ssz.Longitude)
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in       string
		lat, lon float64
		ok       bool
	}{
		{"3114N 12129E", 31.2333, 121.4833, true},
		{"2356S 04619W", -23.9333, -46.3167, true},
		{"", 0, 0, false},
		{"3114N", 0, 0, false},
		{"31X4N 12129E", 0, 0, false},
		{"3170N 12129E", 0, 0, false},
		{"3114Q 12129E", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lat, lon, ok := parseCoordinates(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if math.Abs(lat-tt.lat) > 0.001 || math.Abs(lon-tt.lon) > 0.001 {
				t.Errorf("got %f, %f want %f, %f", lat, lon, tt.lat, tt.lon)
			}
		})
	}
}

func TestSeedLocationsSkipsPopulatedTable(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(116000))

	metrics, err := SeedLocations(context.Background(), conn, "does-not-exist.csv", 100, false)
	if err != nil {
		t.Fatalf("SeedLocations: %v", err)
	}
	if metrics.TotalRecords != 0 {
		t.Errorf("csv should not be read, metrics = %+v", metrics)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSeedLocationsRejectsBadBatchSize(t *testing.T) {
	if _, err := SeedLocations(context.Background(), nil, "x.csv", 0, true); err == nil {
		t.Fatal("expected an error")
	}
}
