package models

import (
	"encoding/json"
)

// HapagRoute is one solution of the Hapag-Lloyd point-to-point schedule API.
// The proxy returns a bare JSON array of these.
type HapagRoute struct {
	SolutionNumber  *int            `json:"solutionNumber"`
	TransitTime     float64         `json:"transitTime" validate:"gte=0"`
	PlaceOfReceipt  *HapagPlace     `json:"placeOfReceipt,omitempty"`
	PlaceOfDelivery *HapagPlace     `json:"placeOfDelivery,omitempty"`
	Legs            []HapagRouteLeg `json:"legs" validate:"required,min=1,dive"`
	CutOffTimes     []HapagCutOff   `json:"cutOffTimes,omitempty"`
}

type HapagCutOff struct {
	CutOffDateTimeCode string `json:"cutOffDateTimeCode"`
	CutOffDateTime     string `json:"cutOffDateTime"`
}

type HapagRouteLeg struct {
	SequenceNumber int            `json:"sequenceNumber"`
	Transport      HapagTransport `json:"transport"`
	Departure      HapagPlace     `json:"departure"`
	Arrival        HapagPlace     `json:"arrival"`
}

type HapagTransport struct {
	ModeOfTransport                string                `json:"modeOfTransport"`
	Vessel                         HapagVessel           `json:"vessel"`
	ServicePartners                []HapagServicePartner `json:"servicePartners" validate:"dive"`
	UniversalServiceReference      string                `json:"universalServiceReference"`
	UniversalExportVoyageReference string                `json:"universalExportVoyageReference"`
	UniversalImportVoyageReference string                `json:"universalImportVoyageReference"`
}

type HapagVessel struct {
	VesselIMONumber string `json:"vesselIMONumber"`
	Name            string `json:"name"`
	VesselCallSign  string `json:"vesselCallSign"`
	VesselFlag      string `json:"flag"`
}

type HapagServicePartner struct {
	CarrierCode               string `json:"carrierCode" validate:"required"`
	CarrierCodeListProvider   string `json:"carrierCodeListProvider"`
	CarrierServiceName        string `json:"carrierServiceName"`
	CarrierServiceCode        string `json:"carrierServiceCode"`
	CarrierImportVoyageNumber string `json:"carrierImportVoyageNumber"`
	CarrierExportVoyageNumber string `json:"carrierExportVoyageNumber"`
}

type HapagPlace struct {
	Location HapagLocation `json:"location"`
	DateTime string        `json:"dateTime" validate:"required"`
}

type HapagLocation struct {
	LocationName   string `json:"locationName"`
	UNLocationCode string `json:"UNLocationCode" validate:"required"`
	CityName       string `json:"cityName"`
	CountryCode    string `json:"countryCode"`
	FacilityCode   string `json:"facilityCode"`
}

func UnmarshalHapagRoutes(data []byte) ([]HapagRoute, error) {
	var r []HapagRoute
	err := json.Unmarshal(data, &r)
	return r, err
}

// HapagTrackingEvent is one DCSA track-and-trace event.
type HapagTrackingEvent struct {
	EventID                string              `json:"eventID"`
	EventType              string              `json:"eventType" validate:"required,oneof=TRANSPORT SHIPMENT EQUIPMENT"`
	EventClassifierCode    string              `json:"eventClassifierCode" validate:"required,oneof=ACT PLN EST REQ"`
	EventDateTime          string              `json:"eventDateTime" validate:"required"`
	EventCreatedDateTime   string              `json:"eventCreatedDateTime"`
	TransportEventTypeCode string              `json:"transportEventTypeCode"`
	EquipmentEventTypeCode string              `json:"equipmentEventTypeCode"`
	ShipmentEventTypeCode  string              `json:"shipmentEventTypeCode"`
	DocumentTypeCode       string              `json:"documentTypeCode"`
	EquipmentReference     string              `json:"equipmentReference"`
	EventLocation          *HapagLocation      `json:"eventLocation,omitempty"`
	TransportCall          *HapagTransportCall `json:"transportCall,omitempty"`
}

type HapagTransportCall struct {
	ModeOfTransport    string        `json:"modeOfTransport"`
	Location           HapagLocation `json:"location"`
	Vessel             *HapagVessel  `json:"vessel,omitempty"`
	ExportVoyageNumber string        `json:"exportVoyageNumber"`
	ImportVoyageNumber string        `json:"importVoyageNumber"`
}

func UnmarshalHapagTracking(data []byte) ([]HapagTrackingEvent, error) {
	var r []HapagTrackingEvent
	err := json.Unmarshal(data, &r)
	return r, err
}
