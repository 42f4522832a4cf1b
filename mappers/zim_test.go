package mappers

import (
	"errors"
	"testing"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

const zimFixture = `{
  "response": {
    "routes": [
      {
        "routeSequence": 1,
        "transitTime": 32,
        "routeLegs": [
          {
            "vesselName": "ZIM SHANGHAI",
            "vesselCode": " ZSH  ",
            "lloydsCode": "9699191",
            "callSign": "4XGB",
            "voyage": "12E",
            "line": "ZMP",
            "lineName": "Mediterranean Pacific",
            "departurePort": "CNSHA",
            "departurePortName": "Shanghai",
            "departureCountryCode": "CN",
            "departureDate": "2024-03-15T08:00:00+08:00",
            "arrivalPort": "SGSIN",
            "arrivalPortName": "Singapore",
            "arrivalDate": "2024-03-20T10:00:00+08:00"
          },
          {
            "vesselName": "ZIM ANTWERP",
            "vesselCode": "ZAN",
            "lloydsCode": null,
            "voyage": "3W",
            "departurePort": "SGSIN",
            "departurePortName": "Singapore",
            "departureDate": "2024-03-22T10:00:00+08:00",
            "arrivalPort": "ILHFA",
            "arrivalPortName": "Haifa",
            "arrivalDate": "2024-04-16T06:00:00+03:00"
          }
        ]
      },
      {
        "routeSequence": 2,
        "transitTime": 27.5,
        "routeLegs": [
          {
            "vesselName": "ZIM VIRGINIA",
            "vesselCode": "ZVA",
            "departurePort": "CNSHA",
            "departureDate": "2024-03-18T08:00:00+08:00",
            "arrivalPort": "ILHFA",
            "arrivalDate": "2024-04-14T06:00:00+03:00"
          }
        ]
      }
    ]
  }
}`

func TestMapZimRoutes(t *testing.T) {
	raw, err := models.UnmarshalZimRoutes([]byte(zimFixture))
	if err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	routes, err := MapZimRoutes(&raw)
	if err != nil {
		t.Fatalf("MapZimRoutes returned error: %v", err)
	}

	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}

	for i, wantID := range []string{"ZIM-1", "ZIM-2"} {
		if routes[i].ID != wantID {
			t.Errorf("routes[%d].ID = %q, want %q", i, routes[i].ID, wantID)
		}
		if routes[i].Carrier != "ZIM" {
			t.Errorf("routes[%d].Carrier = %q, want ZIM", i, routes[i].Carrier)
		}
	}

	first := routes[0]
	if first.TransitTime != 32 {
		t.Errorf("transit time = %v, want 32 (no conversion)", first.TransitTime)
	}
	if routes[1].TransitTime != 27.5 {
		t.Errorf("transit time = %v, want 27.5", routes[1].TransitTime)
	}
	if first.ServiceName != "Mediterranean Pacific" || first.ServiceCode != "ZMP" {
		t.Errorf("service = %q/%q", first.ServiceName, first.ServiceCode)
	}

	src := raw.Response.Routes[0].RouteLegs
	if len(first.Legs) != len(src) {
		t.Fatalf("expected %d legs, got %d", len(src), len(first.Legs))
	}
	for i := range src {
		if first.Legs[i].Departure.PortCode != src[i].DeparturePort {
			t.Errorf("leg %d departure = %q, want %q", i, first.Legs[i].Departure.PortCode, src[i].DeparturePort)
		}
	}

	if got := first.Legs[0].VesselCode; got != "ZSH" {
		t.Errorf("vessel code = %q, want trimmed ZSH", got)
	}
	if got := first.Legs[0].IMONumber; got != "9699191" {
		t.Errorf("imo = %q, want 9699191", got)
	}
	if got := first.Legs[1].IMONumber; got != "" {
		t.Errorf("null lloydsCode should leave imo empty, got %q", got)
	}
	if got := first.Legs[0].Departure.DateTime; got != "2024-03-15T08:00:00+08:00" {
		t.Errorf("departure dateTime = %q", got)
	}
}

func TestMapZimRoutesTrimsVesselCode(t *testing.T) {
	resp := &models.ZimRouteResponse{Response: &models.ZimRoutePayload{Routes: []models.ZimRoute{{
		RouteSequence: 7,
		TransitTime:   10,
		RouteLegs: []models.ZimRouteLeg{{
			VesselName:    "ZIM KINGSTON",
			VesselCode:    " ABC123  ",
			DeparturePort: "JMKIN",
			DepartureDate: "2024-05-01T00:00:00Z",
			ArrivalPort:   "USNYC",
			ArrivalDate:   "2024-05-06T00:00:00Z",
		}},
	}}}}

	routes, err := MapZimRoutes(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := routes[0].Legs[0].VesselCode; got != "ABC123" {
		t.Errorf("vessel code = %q, want ABC123", got)
	}
}

func TestMapZimRoutesInvalid(t *testing.T) {
	tests := []struct {
		name string
		resp *models.ZimRouteResponse
	}{
		{name: "nil response", resp: nil},
		{name: "missing response object", resp: &models.ZimRouteResponse{}},
		{
			name: "route without legs",
			resp: &models.ZimRouteResponse{Response: &models.ZimRoutePayload{Routes: []models.ZimRoute{{RouteSequence: 1}}}},
		},
		{
			name: "leg without departure date",
			resp: &models.ZimRouteResponse{Response: &models.ZimRoutePayload{Routes: []models.ZimRoute{{
				RouteSequence: 1,
				RouteLegs: []models.ZimRouteLeg{{
					VesselName:    "ZIM X",
					DeparturePort: "CNSHA",
					ArrivalPort:   "ILHFA",
					ArrivalDate:   "2024-04-14T06:00:00+03:00",
				}},
			}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapZimRoutes(tt.resp)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidPayload) {
				t.Errorf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestMapZimRoutesDuplicateSequence(t *testing.T) {
	leg := models.ZimRouteLeg{
		VesselName:    "ZIM X",
		DeparturePort: "CNSHA",
		DepartureDate: "2024-03-18T08:00:00+08:00",
		ArrivalPort:   "ILHFA",
		ArrivalDate:   "2024-04-14T06:00:00+03:00",
	}
	resp := &models.ZimRouteResponse{Response: &models.ZimRoutePayload{Routes: []models.ZimRoute{
		{RouteSequence: 3, RouteLegs: []models.ZimRouteLeg{leg}},
		{RouteSequence: 3, RouteLegs: []models.ZimRouteLeg{leg}},
	}}}

	routes, err := MapZimRoutes(resp)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if routes != nil {
		t.Errorf("expected no routes, got %d", len(routes))
	}
}

func TestMapZimRoutesEmpty(t *testing.T) {
	routes, err := MapZimRoutes(&models.ZimRouteResponse{Response: &models.ZimRoutePayload{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("expected no routes, got %d", len(routes))
	}
}
