package mappers

import (
	"fmt"
	"strings"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

// MapMaerskRoutes emits one route per transport schedule of every ocean product.
// Maersk reports transit time in minutes; the unified value is minutes / 60.
// Service name and code are taken from the first leg of the product's first
// schedule and shared by all of that product's routes.
func MapMaerskRoutes(resp *models.MaerskPointToPoint) ([]models.UnifiedRoute, error) {
	if resp == nil {
		return nil, invalid(models.CarrierMaersk, fmt.Errorf("nil response"))
	}
	if err := models.Validate(resp); err != nil {
		return nil, invalid(models.CarrierMaersk, err)
	}

	var routes []models.UnifiedRoute
	for pi, product := range resp.OceanProducts {
		service := product.TransportSchedules[0].TransportLegs[0].Transport

		for si, schedule := range product.TransportSchedules {
			minutes, err := schedule.TransitTime.Float64()
			if err != nil {
				return nil, invalid(models.CarrierMaersk,
					fmt.Errorf("oceanProducts[%d].transportSchedules[%d].transitTime: %w", pi, si, err))
			}

			route := models.UnifiedRoute{
				ID:          fmt.Sprintf("%s-%d-%d", models.CarrierMaersk, pi, si),
				Carrier:     models.CarrierMaersk,
				ServiceName: strings.TrimSpace(service.CarrierServiceName),
				ServiceCode: strings.TrimSpace(service.CarrierServiceCode),
				TransitTime: minutes / 60,
				Legs:        make([]models.Leg, 0, len(schedule.TransportLegs)),
			}

			for _, leg := range schedule.TransportLegs {
				route.Legs = append(route.Legs, models.Leg{
					VesselName: strings.TrimSpace(leg.Transport.Vessel.VesselName),
					VesselCode: strings.TrimSpace(leg.Transport.Vessel.CarrierVesselCode),
					IMONumber:  strings.TrimSpace(leg.Transport.Vessel.VesselIMONumber),
					Voyage:     strings.TrimSpace(leg.Transport.CarrierDepartureVoyageNumber),
					Departure:  maerskEndpoint(leg.Facilities.StartLocation, leg.DepartureDateTime),
					Arrival:    maerskEndpoint(leg.Facilities.EndLocation, leg.ArrivalDateTime),
				})
			}

			routes = append(routes, route)
		}
	}

	return routes, nil
}

func maerskEndpoint(loc models.MaerskLocation, dateTime string) models.LegEndpoint {
	return models.LegEndpoint{
		PortName:    loc.LocationName,
		PortCode:    loc.PortCode(),
		City:        loc.CityName,
		CountryCode: loc.CountryCode,
		DateTime:    dateTime,
	}
}
