package models

import "encoding/json"

const (
	CarrierZIM    = "ZIM"
	CarrierMaersk = "Maersk"
	CarrierHapag  = "Hapag-Lloyd"
)

// UnifiedRoute is the carrier-agnostic itinerary every mapper produces.
// TransitTime is expressed in days and Legs are in travel order.
type UnifiedRoute struct {
	ID          string  `json:"id"`
	Carrier     string  `json:"carrier"`
	ServiceName string  `json:"serviceName,omitempty"`
	ServiceCode string  `json:"serviceCode,omitempty"`
	TransitTime float64 `json:"transitTime"`
	Legs        []Leg   `json:"legs"`
}

type Leg struct {
	VesselName string      `json:"vesselName"`
	VesselCode string      `json:"vesselCode,omitempty"`
	IMONumber  string      `json:"imoNumber,omitempty"`
	CallSign   string      `json:"callSign,omitempty"`
	Voyage     string      `json:"voyage,omitempty"`
	Departure  LegEndpoint `json:"departure"`
	Arrival    LegEndpoint `json:"arrival"`
}

type LegEndpoint struct {
	PortName    string `json:"portName"`
	PortCode    string `json:"portCode"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	// ISO-8601, passed through as the carrier sent it
	DateTime string `json:"dateTime"`
}

// FirstDeparture returns the departure timestamp of the first leg, or "" for a route without legs.
func (r UnifiedRoute) FirstDeparture() string {
	if len(r.Legs) == 0 {
		return ""
	}
	return r.Legs[0].Departure.DateTime
}

const (
	EventTypeTransport = "transport"
	EventTypeShipment  = "shipment"
	EventTypeEquipment = "equipment"
	EventTypeContainer = "container"
)

// UnifiedTrackingData is a single shipment's normalized tracking view.
type UnifiedTrackingData struct {
	TrackingNumber   string                 `json:"trackingNumber"`
	Status           string                 `json:"status"`
	Origin           string                 `json:"origin"`
	Destination      string                 `json:"destination"`
	EstimatedArrival string                 `json:"estimatedArrival"`
	Carrier          string                 `json:"carrier"`
	Events           []UnifiedTrackingEvent `json:"events"`
	Containers       []TrackingContainer    `json:"containers,omitempty"`
	RouteDetails     []TrackingRouteDetail  `json:"routeDetails,omitempty"`
}

type UnifiedTrackingEvent struct {
	EventType          string `json:"eventType"`
	Description        string `json:"description"`
	Location           string `json:"location"`
	LocationCode       string `json:"locationCode,omitempty"`
	DateTime           string `json:"dateTime"`
	VesselName         string `json:"vesselName,omitempty"`
	Voyage             string `json:"voyage,omitempty"`
	EquipmentReference string `json:"equipmentReference,omitempty"`
	Completed          bool   `json:"completed"`
}

type TrackingContainer struct {
	ContainerNumber string                 `json:"containerNumber"`
	ContainerType   string                 `json:"containerType,omitempty"`
	Events          []UnifiedTrackingEvent `json:"events"`
}

type TrackingRouteDetail struct {
	VesselName string      `json:"vesselName"`
	Voyage     string      `json:"voyage,omitempty"`
	Departure  LegEndpoint `json:"departure"`
	Arrival    LegEndpoint `json:"arrival"`
}

// TrackingResult carries either normalized data or, for carriers without a
// normalizer, the raw payload untouched.
type TrackingResult struct {
	Carrier string               `json:"carrier"`
	Data    *UnifiedTrackingData `json:"data,omitempty"`
	Raw     json.RawMessage      `json:"raw,omitempty"`
}

// RouteQuery is the origin/destination pair sent identically to every carrier.
type RouteQuery struct {
	OriginCode      string `json:"originCode" validate:"required,len=5,alphanum"`
	DestinationCode string `json:"destinationCode" validate:"required,len=5,alphanum"`
	// city names; Maersk searches by city rather than UN/LOCODE
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	// YYYY-MM-DD, optional
	DepartureDate string `json:"departureDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
