package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/tracking"
)

type zimStub struct {
	resp *models.ZimTrackingResponse
	err  error
	got  string
}

func (z *zimStub) FetchTracking(_ context.Context, number string) (*models.ZimTrackingResponse, error) {
	z.got = number
	return z.resp, z.err
}

type maerskStub struct{}

func (maerskStub) FetchTracking(_ context.Context, number string) (models.TrackingResult, error) {
	return models.TrackingResult{Carrier: models.CarrierMaersk, Raw: json.RawMessage(`{"ref":"` + number + `"}`)}, nil
}

type hapagStub struct {
	events []models.HapagTrackingEvent
}

func (h hapagStub) FetchTracking(context.Context, string) ([]models.HapagTrackingEvent, error) {
	return h.events, nil
}

func TestTrack(t *testing.T) {
	zim := &zimStub{resp: &models.ZimTrackingResponse{Response: &models.ZimTrackingPayload{
		ConsignmentStatus: "On board",
		Pol:               models.ZimTrackingPort{Name: "Shanghai", Unlocode: "CNSHA"},
		Events: []models.ZimTrackingEvent{
			{ActivityDesc: "Loaded", ActivityDateTz: "2024-03-15T08:00:00+08:00", VesselName: "ZIM SHANGHAI"},
		},
	}}}
	hapag := hapagStub{events: []models.HapagTrackingEvent{{
		EventType:              "TRANSPORT",
		EventClassifierCode:    "ACT",
		EventDateTime:          "2024-03-15T08:00:00+08:00",
		TransportEventTypeCode: "DEPA",
	}}}
	svc := NewTrackingService(zim, maerskStub{}, hapag)
	svc.now = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		carrier string
		number  string
		wantErr error
		check   func(t *testing.T, res models.TrackingResult)
	}{
		{
			name:    "zim normalized",
			carrier: "zim",
			number:  " zimu1234567 ",
			check: func(t *testing.T, res models.TrackingResult) {
				if res.Data == nil || res.Data.Carrier != models.CarrierZIM {
					t.Fatalf("data = %+v", res.Data)
				}
				if zim.got != "ZIMU1234567" {
					t.Errorf("number sent = %q", zim.got)
				}
				if !res.Data.Events[0].Completed {
					t.Errorf("past event should be completed")
				}
			},
		},
		{
			name:    "hapag by scac",
			carrier: "HLCU",
			number:  "HLCUSHA240300001",
			check: func(t *testing.T, res models.TrackingResult) {
				if res.Data == nil || res.Data.Status != "Departure" {
					t.Fatalf("data = %+v", res.Data)
				}
			},
		},
		{
			name:    "maersk raw",
			carrier: "Maersk",
			number:  "MAEU123456",
			check: func(t *testing.T, res models.TrackingResult) {
				if res.Data != nil || string(res.Raw) != `{"ref":"MAEU123456"}` {
					t.Fatalf("result = %+v", res)
				}
			},
		},
		{name: "unknown carrier", carrier: "cosco", number: "ABCD1234", wantErr: ErrUnknownCarrier},
		{name: "empty number", carrier: "zim", number: "  ", wantErr: ErrInvalidTrackingNumber},
		{name: "number with symbols", carrier: "zim", number: "ZIM-1;DROP", wantErr: ErrInvalidTrackingNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Track(context.Background(), tt.carrier, tt.number)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Track: %v", err)
			}
			tt.check(t, res)
		})
	}
}

func TestTrackInvalidPayload(t *testing.T) {
	svc := NewTrackingService(&zimStub{resp: &models.ZimTrackingResponse{}}, nil, nil)
	_, err := svc.Track(context.Background(), "zim", "ZIMU1234567")
	if !errors.Is(err, tracking.ErrInvalidPayload) {
		t.Fatalf("err = %v, want tracking.ErrInvalidPayload", err)
	}
}

func TestTrackUnconfiguredCarrier(t *testing.T) {
	svc := NewTrackingService(nil, nil, nil)
	_, err := svc.Track(context.Background(), "hapag", "HLCU1234")
	if !errors.Is(err, ErrUnknownCarrier) {
		t.Fatalf("err = %v, want ErrUnknownCarrier", err)
	}
}
