package tracking

import (
	"errors"
	"testing"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

const hapagTrackingFixture = `[
  {
    "eventType": "TRANSPORT",
    "eventClassifierCode": "PLN",
    "eventDateTime": "2024-04-12T06:00:00+02:00",
    "transportEventTypeCode": "ARRI",
    "transportCall": {"location": {"locationName": "Hamburg", "UNLocationCode": "DEHAM"}, "vessel": {"name": "BERLIN EXPRESS"}, "exportVoyageNumber": "002W"}
  },
  {
    "eventType": "EQUIPMENT",
    "eventClassifierCode": "ACT",
    "eventDateTime": "2024-03-14T10:00:00+08:00",
    "equipmentEventTypeCode": "GTIN",
    "equipmentReference": "HLXU1234567",
    "eventLocation": {"locationName": "Shanghai", "UNLocationCode": "CNSHA"}
  },
  {
    "eventType": "TRANSPORT",
    "eventClassifierCode": "ACT",
    "eventDateTime": "2024-03-15T08:00:00+08:00",
    "transportEventTypeCode": "DEPA",
    "transportCall": {"location": {"locationName": "Shanghai", "UNLocationCode": "CNSHA"}, "vessel": {"name": "SHANGHAI EXPRESS"}, "exportVoyageNumber": "001W"}
  },
  {
    "eventType": "SHIPMENT",
    "eventClassifierCode": "ACT",
    "eventDateTime": "2024-03-01T09:00:00+01:00",
    "shipmentEventTypeCode": "CONF",
    "documentTypeCode": "BKG"
  }
]`

func TestNormalizeHapag(t *testing.T) {
	raw, err := models.UnmarshalHapagTracking([]byte(hapagTrackingFixture))
	if err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	data, err := NormalizeHapag(raw, "HLCUSHA2403001")
	if err != nil {
		t.Fatalf("NormalizeHapag returned error: %v", err)
	}

	want := []struct {
		eventType   string
		description string
		completed   bool
	}{
		{"shipment", "Confirmed (BKG)", true},
		{"equipment", "Gate in", true},
		{"transport", "Departure", true},
		{"transport", "Arrival", false},
	}
	if len(data.Events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(data.Events))
	}
	for i, w := range want {
		e := data.Events[i]
		if e.EventType != w.eventType || e.Description != w.description || e.Completed != w.completed {
			t.Errorf("events[%d] = {%s %q %v}, want {%s %q %v}",
				i, e.EventType, e.Description, e.Completed, w.eventType, w.description, w.completed)
		}
	}

	if data.Status != "Departure" {
		t.Errorf("status = %q, want Departure", data.Status)
	}
	if data.Origin != "Shanghai" {
		t.Errorf("origin = %q, want first located event Shanghai", data.Origin)
	}
	if data.Destination != "Hamburg" || data.EstimatedArrival != "2024-04-12T06:00:00+02:00" {
		t.Errorf("destination/eta = %q/%q", data.Destination, data.EstimatedArrival)
	}
	if data.Events[2].VesselName != "SHANGHAI EXPRESS" || data.Events[2].Voyage != "001W" {
		t.Errorf("transport call not mapped: %+v", data.Events[2])
	}
	if data.Events[1].EquipmentReference != "HLXU1234567" || data.Events[1].LocationCode != "CNSHA" {
		t.Errorf("equipment event not mapped: %+v", data.Events[1])
	}
	if data.Containers != nil {
		t.Errorf("hapag payload has no container section, got %+v", data.Containers)
	}
}

func TestNormalizeHapagInvalid(t *testing.T) {
	events := []models.HapagTrackingEvent{{
		EventType:           "VESSEL",
		EventClassifierCode: "ACT",
		EventDateTime:       "2024-03-01T00:00:00Z",
	}}
	if _, err := NormalizeHapag(events, "X"); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestPassthroughMaersk(t *testing.T) {
	res, err := PassthroughMaersk([]byte(`{"containers":[{"container_num":"MSKU1"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Data != nil || string(res.Raw) != `{"containers":[{"container_num":"MSKU1"}]}` {
		t.Errorf("payload should pass through untouched: %+v", res)
	}

	if _, err := PassthroughMaersk([]byte("<html>")); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for non-JSON body, got %v", err)
	}
}
