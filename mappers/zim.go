package mappers

import (
	"fmt"
	"strings"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

// MapZimRoutes converts a ZIM schedule response. Transit time is already in days.
func MapZimRoutes(resp *models.ZimRouteResponse) ([]models.UnifiedRoute, error) {
	if resp == nil {
		return nil, invalid(models.CarrierZIM, fmt.Errorf("nil response"))
	}
	if err := models.Validate(resp); err != nil {
		return nil, invalid(models.CarrierZIM, err)
	}

	routes := make([]models.UnifiedRoute, 0, len(resp.Response.Routes))
	for _, r := range resp.Response.Routes {
		first := r.RouteLegs[0]

		route := models.UnifiedRoute{
			ID:          fmt.Sprintf("%s-%d", models.CarrierZIM, r.RouteSequence),
			Carrier:     models.CarrierZIM,
			ServiceName: strings.TrimSpace(first.LineName),
			ServiceCode: strings.TrimSpace(first.Line),
			TransitTime: r.TransitTime,
			Legs:        make([]models.Leg, 0, len(r.RouteLegs)),
		}

		for _, l := range r.RouteLegs {
			route.Legs = append(route.Legs, models.Leg{
				VesselName: strings.TrimSpace(l.VesselName),
				VesselCode: strings.TrimSpace(l.VesselCode),
				IMONumber:  lloydsToIMO(l.LloydsCode),
				CallSign:   strings.TrimSpace(l.CallSign),
				Voyage:     strings.TrimSpace(l.Voyage),
				Departure: models.LegEndpoint{
					PortName:    l.DeparturePortName,
					PortCode:    l.DeparturePort,
					City:        l.DepartureCity,
					CountryCode: l.DepartureCountryCode,
					DateTime:    l.DepartureDate,
				},
				Arrival: models.LegEndpoint{
					PortName:    l.ArrivalPortName,
					PortCode:    l.ArrivalPort,
					City:        l.ArrivalCity,
					CountryCode: l.ArrivalCountryCode,
					DateTime:    l.ArrivalDate,
				},
			})
		}

		routes = append(routes, route)
	}

	if err := checkUniqueIDs(models.CarrierZIM, routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func lloydsToIMO(code *string) string {
	if code == nil {
		return ""
	}
	return strings.TrimSpace(*code)
}
