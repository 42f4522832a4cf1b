package tracking

import (
	"encoding/json"
	"fmt"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

// PassthroughMaersk wraps a Maersk tracking payload without normalizing it.
// Maersk events are not mapped to the unified model yet; callers receive the
// carrier's JSON as-is.
func PassthroughMaersk(raw []byte) (models.TrackingResult, error) {
	if !json.Valid(raw) {
		return models.TrackingResult{}, invalid(models.CarrierMaersk, fmt.Errorf("body is not valid JSON"))
	}
	return models.TrackingResult{
		Carrier: models.CarrierMaersk,
		Raw:     json.RawMessage(raw),
	}, nil
}
