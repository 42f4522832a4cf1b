package mappers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

// MapHapagRoutes converts a Hapag-Lloyd solution list. Route ids use the
// solution number when present and the array index otherwise; a response in
// which that yields a repeated id is rejected.
// Legs are ordered by their sequenceNumber.
func MapHapagRoutes(resp []models.HapagRoute) ([]models.UnifiedRoute, error) {
	routes := make([]models.UnifiedRoute, 0, len(resp))

	for i := range resp {
		r := &resp[i]
		if err := models.Validate(r); err != nil {
			return nil, invalid(models.CarrierHapag, fmt.Errorf("route %d: %w", i, err))
		}

		legs := make([]models.HapagRouteLeg, len(r.Legs))
		copy(legs, r.Legs)
		sort.SliceStable(legs, func(a, b int) bool {
			return legs[a].SequenceNumber < legs[b].SequenceNumber
		})

		partners := legs[0].Transport.ServicePartners
		if len(partners) == 0 {
			return nil, invalid(models.CarrierHapag,
				fmt.Errorf("route %d: legs[0].transport.servicePartners is empty", i))
		}
		partner := partners[0]

		seq := strconv.Itoa(i)
		if r.SolutionNumber != nil {
			seq = strconv.Itoa(*r.SolutionNumber)
		}

		route := models.UnifiedRoute{
			ID:          "hapag-" + seq,
			Carrier:     partner.CarrierCode,
			ServiceName: strings.TrimSpace(partner.CarrierServiceName),
			ServiceCode: strings.TrimSpace(partner.CarrierServiceCode),
			TransitTime: r.TransitTime,
			Legs:        make([]models.Leg, 0, len(legs)),
		}

		for _, leg := range legs {
			voyage := leg.Transport.UniversalExportVoyageReference
			if len(leg.Transport.ServicePartners) > 0 && leg.Transport.ServicePartners[0].CarrierExportVoyageNumber != "" {
				voyage = leg.Transport.ServicePartners[0].CarrierExportVoyageNumber
			}

			route.Legs = append(route.Legs, models.Leg{
				VesselName: strings.TrimSpace(leg.Transport.Vessel.Name),
				IMONumber:  strings.TrimSpace(leg.Transport.Vessel.VesselIMONumber),
				CallSign:   strings.TrimSpace(leg.Transport.Vessel.VesselCallSign),
				Voyage:     strings.TrimSpace(voyage),
				Departure:  hapagEndpoint(leg.Departure),
				Arrival:    hapagEndpoint(leg.Arrival),
			})
		}

		routes = append(routes, route)
	}

	if err := checkUniqueIDs(models.CarrierHapag, routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func hapagEndpoint(p models.HapagPlace) models.LegEndpoint {
	return models.LegEndpoint{
		PortName:    p.Location.LocationName,
		PortCode:    p.Location.UNLocationCode,
		City:        p.Location.CityName,
		CountryCode: p.Location.CountryCode,
		DateTime:    p.DateTime,
	}
}
