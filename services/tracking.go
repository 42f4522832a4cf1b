package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/tracking"
)

var (
	ErrUnknownCarrier        = errors.New("unknown carrier")
	ErrInvalidTrackingNumber = errors.New("invalid tracking number")
)

type ZimTracker interface {
	FetchTracking(ctx context.Context, number string) (*models.ZimTrackingResponse, error)
}

type MaerskTracker interface {
	FetchTracking(ctx context.Context, number string) (models.TrackingResult, error)
}

type HapagTracker interface {
	FetchTracking(ctx context.Context, number string) ([]models.HapagTrackingEvent, error)
}

type TrackingService struct {
	zim    ZimTracker
	maersk MaerskTracker
	hapag  HapagTracker
	now    func() time.Time
}

func NewTrackingService(zim ZimTracker, maersk MaerskTracker, hapag HapagTracker) *TrackingService {
	return &TrackingService{zim: zim, maersk: maersk, hapag: hapag, now: time.Now}
}

// CarrierFromPath maps the carrier segment of a tracking URL to its name.
func CarrierFromPath(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zim", "zimu":
		return models.CarrierZIM, true
	case "maersk", "maeu":
		return models.CarrierMaersk, true
	case "hapag", "hapag-lloyd", "hlcu":
		return models.CarrierHapag, true
	}
	return "", false
}

type trackingRequest struct {
	Number string `validate:"required,alphanum,min=4,max=35"`
}

// Track fetches and normalizes one shipment. Maersk results carry the raw
// carrier payload instead of normalized data.
func (t *TrackingService) Track(ctx context.Context, carrier, number string) (models.TrackingResult, error) {
	name, ok := CarrierFromPath(carrier)
	if !ok {
		return models.TrackingResult{}, fmt.Errorf("%w: %q", ErrUnknownCarrier, carrier)
	}

	number = strings.ToUpper(strings.TrimSpace(number))
	if err := models.Validate(trackingRequest{Number: number}); err != nil {
		return models.TrackingResult{}, fmt.Errorf("%w: %q", ErrInvalidTrackingNumber, number)
	}

	switch name {
	case models.CarrierZIM:
		if t.zim == nil {
			return models.TrackingResult{}, fmt.Errorf("%w: %s tracking not configured", ErrUnknownCarrier, name)
		}
		resp, err := t.zim.FetchTracking(ctx, number)
		if err != nil {
			return models.TrackingResult{}, err
		}
		data, err := tracking.NormalizeZim(resp, number, t.now())
		if err != nil {
			return models.TrackingResult{}, err
		}
		return models.TrackingResult{Carrier: name, Data: data}, nil

	case models.CarrierHapag:
		if t.hapag == nil {
			return models.TrackingResult{}, fmt.Errorf("%w: %s tracking not configured", ErrUnknownCarrier, name)
		}
		events, err := t.hapag.FetchTracking(ctx, number)
		if err != nil {
			return models.TrackingResult{}, err
		}
		data, err := tracking.NormalizeHapag(events, number)
		if err != nil {
			return models.TrackingResult{}, err
		}
		return models.TrackingResult{Carrier: name, Data: data}, nil

	default:
		if t.maersk == nil {
			return models.TrackingResult{}, fmt.Errorf("%w: %s tracking not configured", ErrUnknownCarrier, name)
		}
		return t.maersk.FetchTracking(ctx, number)
	}
}
