package carriers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sanjigen3D/logisticaint-app-sub000/mappers"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/tracking"
)

const zimKeyHeader = "Ocp-Apim-Subscription-Key"

type ZimClient struct {
	*httpClient
}

func NewZimClient(cfg Config, session Session) *ZimClient {
	return &ZimClient{newHTTPClient(models.CarrierZIM, zimKeyHeader, cfg, session)}
}

func (c *ZimClient) FetchRoutes(ctx context.Context, q models.RouteQuery) (*models.ZimRouteResponse, error) {
	params := url.Values{}
	params.Set("originCode", q.OriginCode)
	params.Set("destCode", q.DestinationCode)
	if q.DepartureDate != "" {
		params.Set("fromDate", q.DepartureDate)
	}

	body, err := c.get(ctx, "routes", "/schedules/point-to-point", params)
	if err != nil {
		return nil, err
	}

	resp, err := models.UnmarshalZimRoutes(body)
	if err != nil {
		return nil, fmt.Errorf("decode zim routes: %w: %w", mappers.ErrInvalidPayload, err)
	}
	return &resp, nil
}

func (c *ZimClient) FetchTracking(ctx context.Context, number string) (*models.ZimTrackingResponse, error) {
	body, err := c.get(ctx, "tracking", "/tracing/"+url.PathEscape(number), nil)
	if err != nil {
		return nil, err
	}

	var resp models.ZimTrackingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode zim tracking: %w: %w", tracking.ErrInvalidPayload, err)
	}
	return &resp, nil
}
