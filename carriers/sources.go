package carriers

import (
	"context"

	"github.com/sanjigen3D/logisticaint-app-sub000/mappers"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

// ZimSource fetches and maps ZIM schedules into unified routes.
type ZimSource struct{ client *ZimClient }

func NewZimSource(c *ZimClient) ZimSource { return ZimSource{client: c} }

func (s ZimSource) Carrier() string { return models.CarrierZIM }

func (s ZimSource) FetchRoutes(ctx context.Context, q models.RouteQuery) ([]models.UnifiedRoute, error) {
	resp, err := s.client.FetchRoutes(ctx, q)
	if err != nil {
		return nil, err
	}
	return mappers.MapZimRoutes(resp)
}

type MaerskSource struct{ client *MaerskClient }

func NewMaerskSource(c *MaerskClient) MaerskSource { return MaerskSource{client: c} }

func (s MaerskSource) Carrier() string { return models.CarrierMaersk }

func (s MaerskSource) FetchRoutes(ctx context.Context, q models.RouteQuery) ([]models.UnifiedRoute, error) {
	resp, err := s.client.FetchRoutes(ctx, q)
	if err != nil {
		return nil, err
	}
	return mappers.MapMaerskRoutes(resp)
}

type HapagSource struct{ client *HapagClient }

func NewHapagSource(c *HapagClient) HapagSource { return HapagSource{client: c} }

func (s HapagSource) Carrier() string { return models.CarrierHapag }

func (s HapagSource) FetchRoutes(ctx context.Context, q models.RouteQuery) ([]models.UnifiedRoute, error) {
	resp, err := s.client.FetchRoutes(ctx, q)
	if err != nil {
		return nil, err
	}
	return mappers.MapHapagRoutes(resp)
}
