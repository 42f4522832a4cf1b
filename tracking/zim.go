package tracking

import (
	"fmt"
	"strings"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/internal/utils"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

// NormalizeZim converts a ZIM tracking response. ZIM does not flag actual
// versus planned events, so an event counts as completed once its date is not
// after now.
func NormalizeZim(resp *models.ZimTrackingResponse, trackingNumber string, now time.Time) (*models.UnifiedTrackingData, error) {
	if resp == nil {
		return nil, invalid(models.CarrierZIM, fmt.Errorf("nil response"))
	}
	if err := models.Validate(resp); err != nil {
		return nil, invalid(models.CarrierZIM, err)
	}
	p := resp.Response

	data := &models.UnifiedTrackingData{
		TrackingNumber:   trackingNumber,
		Status:           strings.TrimSpace(p.ConsignmentStatus),
		Origin:           portLabel(p.Pol),
		Destination:      portLabel(p.Pod),
		EstimatedArrival: p.Eta,
		Carrier:          models.CarrierZIM,
		Events:           make([]models.UnifiedTrackingEvent, 0, len(p.Events)),
	}

	for _, e := range p.Events {
		eventType := models.EventTypeShipment
		if strings.TrimSpace(e.VesselName) != "" {
			eventType = models.EventTypeTransport
		}
		data.Events = append(data.Events, zimEvent(e, eventType, now))
	}
	sortEvents(data.Events)

	for _, c := range p.Containers {
		container := models.TrackingContainer{
			ContainerNumber: strings.TrimSpace(c.ContainerNumber),
			ContainerType:   strings.TrimSpace(c.ContainerType),
			Events:          make([]models.UnifiedTrackingEvent, 0, len(c.Events)),
		}
		for _, e := range c.Events {
			ev := zimEvent(e, models.EventTypeContainer, now)
			ev.EquipmentReference = container.ContainerNumber
			container.Events = append(container.Events, ev)
		}
		sortEvents(container.Events)
		data.Containers = append(data.Containers, container)
	}

	for _, l := range p.RouteDetails {
		data.RouteDetails = append(data.RouteDetails, models.TrackingRouteDetail{
			VesselName: strings.TrimSpace(l.VesselName),
			Voyage:     strings.TrimSpace(l.Voyage),
			Departure:  models.LegEndpoint{PortName: l.PolName, PortCode: l.PolCode, DateTime: l.DepartureDate},
			Arrival:    models.LegEndpoint{PortName: l.PodName, PortCode: l.PodCode, DateTime: l.ArrivalDate},
		})
	}

	if data.Status == "" {
		if last, ok := lastCompleted(data.Events); ok {
			data.Status = last.Description
		}
	}
	if data.EstimatedArrival == "" && len(data.RouteDetails) > 0 {
		data.EstimatedArrival = data.RouteDetails[len(data.RouteDetails)-1].Arrival.DateTime
	}

	return data, nil
}

func zimEvent(e models.ZimTrackingEvent, eventType string, now time.Time) models.UnifiedTrackingEvent {
	completed := false
	if t, err := utils.ParseTimestamp(e.ActivityDateTz, nil); err == nil {
		completed = !t.After(now)
	}

	return models.UnifiedTrackingEvent{
		EventType:    eventType,
		Description:  strings.TrimSpace(e.ActivityDesc),
		Location:     strings.TrimSpace(e.LocationName),
		LocationCode: strings.TrimSpace(e.Unlocode),
		DateTime:     e.ActivityDateTz,
		VesselName:   strings.TrimSpace(e.VesselName),
		Voyage:       strings.TrimSpace(e.Voyage),
		Completed:    completed,
	}
}

func portLabel(p models.ZimTrackingPort) string {
	switch {
	case p.Name != "" && p.Unlocode != "":
		return fmt.Sprintf("%s (%s)", p.Name, p.Unlocode)
	case p.Name != "":
		return p.Name
	default:
		return p.Unlocode
	}
}
