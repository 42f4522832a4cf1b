package models

import (
	"encoding/json"
)

func UnmarshalMaerskPointToPoint(data []byte) (MaerskPointToPoint, error) {
	var r MaerskPointToPoint
	err := json.Unmarshal(data, &r)
	return r, err
}

func (r *MaerskPointToPoint) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// MaerskPointToPoint is the ocean-products payload of the Maersk point-to-point API.
type MaerskPointToPoint struct {
	OceanProducts []OceanProduct `json:"oceanProducts" validate:"dive"`
}

type OceanProduct struct {
	CarrierProductID          string              `json:"carrierProductId"`
	CarrierProductSequenceID  string              `json:"carrierProductSequenceId"`
	ProductValidFromDate      string              `json:"productValidFromDate"`
	ProductValidToDate        string              `json:"productValidToDate"`
	NumberOfProductLinks      string              `json:"numberOfProductLinks"`
	TransportSchedules        []TransportSchedule `json:"transportSchedules" validate:"required,min=1,dive"`
	VesselOperatorCarrierCode string              `json:"vesselOperatorCarrierCode"`
}

type TransportSchedule struct {
	// minutes; Maersk sends either a number or a numeric string
	TransitTime          json.Number                 `json:"transitTime" validate:"required,numeric"`
	DepartureDateTime    string                      `json:"departureDateTime"`
	ArrivalDateTime      string                      `json:"arrivalDateTime"`
	Facilities           TransportScheduleFacilities `json:"facilities"`
	FirstDepartureVessel Vessel                      `json:"firstDepartureVessel"`
	TransportLegs        []TransportLeg              `json:"transportLegs" validate:"required,min=1,dive"`
}

type TransportScheduleFacilities struct {
	CollectionOrigin    MaerskLocation `json:"collectionOrigin"`
	DeliveryDestination MaerskLocation `json:"deliveryDestination"`
}

type MaerskLocation struct {
	CarrierCityGeoID   string  `json:"carrierCityGeoID"`
	CityName           string  `json:"cityName"`
	CarrierSiteGeoID   string  `json:"carrierSiteGeoID"`
	LocationName       string  `json:"locationName"`
	CountryCode        string  `json:"countryCode"`
	LocationType       string  `json:"locationType"`
	UNLocationCode     string  `json:"UNLocationCode"`
	SiteUNLocationCode string  `json:"siteUNLocationCode"`
	CityUNLocationCode string  `json:"cityUNLocationCode"`
	UNRegionCode       *string `json:"UNRegionCode,omitempty"`
}

// PortCode prefers the site code and falls back to the city code.
func (l MaerskLocation) PortCode() string {
	switch {
	case l.UNLocationCode != "":
		return l.UNLocationCode
	case l.SiteUNLocationCode != "":
		return l.SiteUNLocationCode
	default:
		return l.CityUNLocationCode
	}
}

type Vessel struct {
	VesselIMONumber   string `json:"vesselIMONumber"`
	CarrierVesselCode string `json:"carrierVesselCode"`
	VesselName        string `json:"vesselName"`
}

type TransportLeg struct {
	DepartureDateTime string                 `json:"departureDateTime" validate:"required"`
	ArrivalDateTime   string                 `json:"arrivalDateTime" validate:"required"`
	Facilities        TransportLegFacilities `json:"facilities"`
	Transport         Transport              `json:"transport"`
}

type TransportLegFacilities struct {
	StartLocation MaerskLocation `json:"startLocation"`
	EndLocation   MaerskLocation `json:"endLocation"`
}

type Transport struct {
	TransportMode                string `json:"transportMode"`
	Vessel                       Vessel `json:"vessel"`
	CarrierTradeLaneName         string `json:"carrierTradeLaneName"`
	CarrierDepartureVoyageNumber string `json:"carrierDepartureVoyageNumber"`
	InducementLinkFlag           string `json:"inducementLinkFlag"`
	CarrierServiceCode           string `json:"carrierServiceCode"`
	CarrierServiceName           string `json:"carrierServiceName"`
	LinkDirection                string `json:"linkDirection"`
	CarrierCode                  string `json:"carrierCode"`
	RoutingType                  string `json:"routingType"`
}
