package carriers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sanjigen3D/logisticaint-app-sub000/mappers"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/tracking"
)

const (
	maerskKeyHeader    = "Consumer-Key"
	maerskOperatorCode = "MAEU"
)

type MaerskClient struct {
	*httpClient
}

func NewMaerskClient(cfg Config, session Session) *MaerskClient {
	return &MaerskClient{newHTTPClient(models.CarrierMaersk, maerskKeyHeader, cfg, session)}
}

// FetchRoutes searches ocean products by country code and city name; the
// country is the first two letters of the UN/LOCODE.
func (c *MaerskClient) FetchRoutes(ctx context.Context, q models.RouteQuery) (*models.MaerskPointToPoint, error) {
	if len(q.OriginCode) < 2 || len(q.DestinationCode) < 2 {
		return nil, fmt.Errorf("maersk routes: invalid port codes %q -> %q", q.OriginCode, q.DestinationCode)
	}

	params := url.Values{}
	params.Set("vesselOperatorCarrierCode", maerskOperatorCode)
	params.Set("collectionOriginCountryCode", q.OriginCode[:2])
	params.Set("collectionOriginCityName", q.Origin)
	params.Set("deliveryDestinationCountryCode", q.DestinationCode[:2])
	params.Set("deliveryDestinationCityName", q.Destination)
	if q.DepartureDate != "" {
		params.Set("startDate", q.DepartureDate)
	}

	body, err := c.get(ctx, "routes", "/products/ocean-products", params)
	if err != nil {
		return nil, err
	}

	data, err := models.UnmarshalMaerskPointToPoint(body)
	if err != nil {
		return nil, fmt.Errorf("decode maersk products: %w: %w", mappers.ErrInvalidPayload, err)
	}
	return &data, nil
}

// FetchTracking returns the carrier's events untouched.
func (c *MaerskClient) FetchTracking(ctx context.Context, number string) (models.TrackingResult, error) {
	params := url.Values{}
	params.Set("transportDocumentReference", number)

	body, err := c.get(ctx, "tracking", "/track-and-trace-private/events", params)
	if err != nil {
		return models.TrackingResult{}, err
	}
	return tracking.PassthroughMaersk(body)
}
