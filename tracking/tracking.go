// Package tracking normalizes carrier track-and-trace payloads into
// models.UnifiedTrackingData.
package tracking

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/internal/utils"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

var ErrInvalidPayload = errors.New("invalid tracking payload")

func invalid(carrier string, err error) error {
	return fmt.Errorf("%s: %w: %w", carrier, ErrInvalidPayload, err)
}

// sortEvents orders events chronologically. Events whose timestamp cannot be
// parsed keep their relative order and go last.
func sortEvents(events []models.UnifiedTrackingEvent) {
	parsed := make([]time.Time, len(events))
	ok := make([]bool, len(events))
	for i, e := range events {
		t, err := utils.ParseTimestamp(e.DateTime, nil)
		parsed[i], ok[i] = t, err == nil
	}

	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		switch {
		case ok[ia] && ok[ib]:
			return parsed[ia].Before(parsed[ib])
		default:
			return ok[ia] && !ok[ib]
		}
	})

	sorted := make([]models.UnifiedTrackingEvent, len(events))
	for i, j := range idx {
		sorted[i] = events[j]
	}
	copy(events, sorted)
}

// lastCompleted returns the most recent completed event of an already sorted list.
func lastCompleted(events []models.UnifiedTrackingEvent) (models.UnifiedTrackingEvent, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Completed {
			return events[i], true
		}
	}
	return models.UnifiedTrackingEvent{}, false
}
