package tracking

import (
	"fmt"
	"strings"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

var transportEventNames = map[string]string{
	"ARRI": "Arrival",
	"DEPA": "Departure",
}

var equipmentEventNames = map[string]string{
	"LOAD": "Loaded",
	"DISC": "Discharged",
	"GTIN": "Gate in",
	"GTOT": "Gate out",
	"STUF": "Stuffed",
	"STRP": "Stripped",
	"PICK": "Picked up",
	"DROP": "Dropped off",
	"INSP": "Inspected",
	"RSEA": "Resealed",
	"RMVD": "Removed",
}

var shipmentEventNames = map[string]string{
	"RECE": "Received",
	"DRFT": "Drafted",
	"PENA": "Pending approval",
	"PENU": "Pending update",
	"REJE": "Rejected",
	"APPR": "Approved",
	"ISSU": "Issued",
	"SURR": "Surrendered",
	"SUBM": "Submitted",
	"VOID": "Void",
	"CONF": "Confirmed",
	"REQS": "Requested",
	"CMPL": "Completed",
	"HOLD": "On hold",
	"RELS": "Released",
}

// NormalizeHapag converts a Hapag-Lloyd DCSA event list. Only events with
// classifier ACT (actual) are completed; PLN and EST are forecasts.
func NormalizeHapag(events []models.HapagTrackingEvent, trackingNumber string) (*models.UnifiedTrackingData, error) {
	for i := range events {
		if err := models.Validate(&events[i]); err != nil {
			return nil, invalid(models.CarrierHapag, fmt.Errorf("event %d: %w", i, err))
		}
	}

	data := &models.UnifiedTrackingData{
		TrackingNumber: trackingNumber,
		Carrier:        models.CarrierHapag,
		Events:         make([]models.UnifiedTrackingEvent, 0, len(events)),
	}

	for _, e := range events {
		data.Events = append(data.Events, hapagEvent(e))
	}
	sortEvents(data.Events)

	for _, e := range data.Events {
		if e.Location != "" {
			data.Origin = e.Location
			break
		}
	}

	// last arrival, actual or planned, marks destination and ETA
	for i := len(data.Events) - 1; i >= 0; i-- {
		e := data.Events[i]
		if e.EventType == models.EventTypeTransport && e.Description == transportEventNames["ARRI"] {
			data.Destination = e.Location
			data.EstimatedArrival = e.DateTime
			break
		}
	}

	if last, ok := lastCompleted(data.Events); ok {
		data.Status = last.Description
	}

	return data, nil
}

func hapagEvent(e models.HapagTrackingEvent) models.UnifiedTrackingEvent {
	ev := models.UnifiedTrackingEvent{
		EventType:          strings.ToLower(e.EventType),
		DateTime:           e.EventDateTime,
		EquipmentReference: e.EquipmentReference,
		Completed:          e.EventClassifierCode == "ACT",
	}

	switch e.EventType {
	case "TRANSPORT":
		ev.Description = describe(transportEventNames, e.TransportEventTypeCode)
	case "EQUIPMENT":
		ev.Description = describe(equipmentEventNames, e.EquipmentEventTypeCode)
	case "SHIPMENT":
		ev.Description = describe(shipmentEventNames, e.ShipmentEventTypeCode)
		if e.DocumentTypeCode != "" {
			ev.Description += " (" + e.DocumentTypeCode + ")"
		}
	}

	loc := e.EventLocation
	if e.TransportCall != nil {
		if loc == nil {
			loc = &e.TransportCall.Location
		}
		if e.TransportCall.Vessel != nil {
			ev.VesselName = e.TransportCall.Vessel.Name
		}
		ev.Voyage = e.TransportCall.ExportVoyageNumber
		if ev.Voyage == "" {
			ev.Voyage = e.TransportCall.ImportVoyageNumber
		}
	}
	if loc != nil {
		ev.Location = loc.LocationName
		if ev.Location == "" {
			ev.Location = loc.UNLocationCode
		}
		ev.LocationCode = loc.UNLocationCode
	}

	return ev
}

func describe(names map[string]string, code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
