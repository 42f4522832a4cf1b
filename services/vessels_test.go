package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

func TestVesselRegistryRecord(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	mock.ExpectExec("INSERT INTO vessels").
		WithArgs("9699191", "", "ZIM SHANGHAI", models.CarrierZIM).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reg := NewVesselRegistry(conn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	reg.Record(ctx, []models.UnifiedRoute{{
		Carrier: models.CarrierZIM,
		Legs:    []models.Leg{{VesselName: "ZIM SHANGHAI", IMONumber: "9699191"}, {VesselName: "NO IMO"}},
	}})
	cancel()
	reg.Wait()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVesselRegistryNothingToRecord(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	reg := NewVesselRegistry(conn, nil)
	reg.Record(context.Background(), []models.UnifiedRoute{{Legs: []models.Leg{{VesselName: "X"}}}})
	reg.Wait()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
