package models

import (
	"encoding/json"
)

// ZimRouteResponse is the point-to-point schedule payload returned by the ZIM proxy.
type ZimRouteResponse struct {
	Response *ZimRoutePayload `json:"response" validate:"required"`
}

type ZimRoutePayload struct {
	Routes []ZimRoute `json:"routes" validate:"dive"`
}

type ZimRoute struct {
	RouteSequence     int           `json:"routeSequence" validate:"gte=0"`
	TransitTime       float64       `json:"transitTime" validate:"gte=0"`
	DeparturePort     string        `json:"departurePort"`
	DeparturePortName string        `json:"departurePortName"`
	ArrivalPort       string        `json:"arrivalPort"`
	ArrivalPortName   string        `json:"arrivalPortName"`
	DepartureDate     string        `json:"departureDate"`
	ArrivalDate       string        `json:"arrivalDate"`
	RouteLegCount     int           `json:"routeLegCount"`
	RouteLegs         []ZimRouteLeg `json:"routeLegs" validate:"required,min=1,dive"`
}

type ZimRouteLeg struct {
	LegOrder             int     `json:"legOrder"`
	VesselName           string  `json:"vesselName" validate:"required"`
	VesselCode           string  `json:"vesselCode"`
	LloydsCode           *string `json:"lloydsCode"`
	CallSign             string  `json:"callSign"`
	Voyage               string  `json:"voyage"`
	Leg                  string  `json:"leg"`
	Line                 string  `json:"line"`
	LineName             string  `json:"lineName"`
	DeparturePort        string  `json:"departurePort" validate:"required"`
	DeparturePortName    string  `json:"departurePortName"`
	DepartureCity        string  `json:"departureCity"`
	DepartureCountryCode string  `json:"departureCountryCode"`
	DepartureDate        string  `json:"departureDate" validate:"required"`
	ArrivalPort          string  `json:"arrivalPort" validate:"required"`
	ArrivalPortName      string  `json:"arrivalPortName"`
	ArrivalCity          string  `json:"arrivalCity"`
	ArrivalCountryCode   string  `json:"arrivalCountryCode"`
	ArrivalDate          string  `json:"arrivalDate" validate:"required"`
}

func UnmarshalZimRoutes(data []byte) (ZimRouteResponse, error) {
	var r ZimRouteResponse
	err := json.Unmarshal(data, &r)
	return r, err
}

// ZimTrackingResponse is the track-and-trace payload returned by the ZIM proxy.
type ZimTrackingResponse struct {
	Response *ZimTrackingPayload `json:"response" validate:"required"`
}

type ZimTrackingPayload struct {
	ConsignmentNumber string                `json:"consignmentNumber"`
	ConsignmentStatus string                `json:"consignmentStatus"`
	Pol               ZimTrackingPort       `json:"pol"`
	Pod               ZimTrackingPort       `json:"pod"`
	Eta               string                `json:"eta"`
	Events            []ZimTrackingEvent    `json:"events" validate:"dive"`
	Containers        []ZimContainer        `json:"containers" validate:"dive"`
	RouteDetails      []ZimTrackingRouteLeg `json:"routeDetails" validate:"dive"`
}

type ZimTrackingPort struct {
	Name        string `json:"name"`
	Unlocode    string `json:"unlocode"`
	CountryCode string `json:"countryCode"`
}

type ZimTrackingEvent struct {
	ActivityCode   string `json:"activityCode"`
	ActivityDesc   string `json:"activityDesc" validate:"required"`
	ActivityDateTz string `json:"activityDateTz" validate:"required"`
	LocationName   string `json:"locationName"`
	Unlocode       string `json:"unlocode"`
	VesselName     string `json:"vesselName"`
	Voyage         string `json:"voyage"`
}

type ZimContainer struct {
	ContainerNumber string             `json:"containerNumber" validate:"required"`
	ContainerType   string             `json:"containerType"`
	Events          []ZimTrackingEvent `json:"events" validate:"dive"`
}

type ZimTrackingRouteLeg struct {
	VesselName    string `json:"vesselName"`
	Voyage        string `json:"voyage"`
	PolName       string `json:"polName"`
	PolCode       string `json:"polCode"`
	DepartureDate string `json:"departureDate"`
	PodName       string `json:"podName"`
	PodCode       string `json:"podCode"`
	ArrivalDate   string `json:"arrivalDate"`
}
