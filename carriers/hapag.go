package carriers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sanjigen3D/logisticaint-app-sub000/mappers"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/tracking"
)

const hapagKeyHeader = "X-IBM-Client-Id"

type HapagClient struct {
	*httpClient
}

func NewHapagClient(cfg Config, session Session) *HapagClient {
	return &HapagClient{newHTTPClient(models.CarrierHapag, hapagKeyHeader, cfg, session)}
}

func (c *HapagClient) FetchRoutes(ctx context.Context, q models.RouteQuery) ([]models.HapagRoute, error) {
	params := url.Values{}
	params.Set("placeOfReceipt", q.OriginCode)
	params.Set("placeOfDelivery", q.DestinationCode)
	if q.DepartureDate != "" {
		params.Set("departureStartDate", q.DepartureDate)
	}

	body, err := c.get(ctx, "routes", "/commercial-schedules/v1/point-to-point-routes", params)
	if err != nil {
		return nil, err
	}

	routes, err := models.UnmarshalHapagRoutes(body)
	if err != nil {
		return nil, fmt.Errorf("decode hapag routes: %w: %w", mappers.ErrInvalidPayload, err)
	}
	return routes, nil
}

// FetchTracking looks the number up as a bill of lading.
func (c *HapagClient) FetchTracking(ctx context.Context, number string) ([]models.HapagTrackingEvent, error) {
	params := url.Values{}
	params.Set("transportDocumentReference", number)

	body, err := c.get(ctx, "tracking", "/track-and-trace/v2/events", params)
	if err != nil {
		return nil, err
	}

	events, err := models.UnmarshalHapagTracking(body)
	if err != nil {
		return nil, fmt.Errorf("decode hapag tracking: %w: %w", tracking.ErrInvalidPayload, err)
	}
	return events, nil
}
