// Package mappers turns raw carrier schedule payloads into unified routes.
//
// Every mapper validates its input against the payload's struct tags before
// touching it and reports malformed input as an error wrapping
// ErrInvalidPayload. Mappers never drop a failure on the floor: deciding that
// a broken carrier contributes nothing is the aggregator's job.
package mappers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

var ErrInvalidPayload = errors.New("invalid carrier payload")

func invalid(carrier string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%s: %w: %s", carrier, ErrInvalidPayload, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%s: %w: %w", carrier, ErrInvalidPayload, err)
}

// checkUniqueIDs rejects a response whose routes share an id.
func checkUniqueIDs(carrier string, routes []models.UnifiedRoute) error {
	seen := make(map[string]int, len(routes))
	for i, r := range routes {
		if j, ok := seen[r.ID]; ok {
			return invalid(carrier, fmt.Errorf("routes %d and %d share id %q", j, i, r.ID))
		}
		seen[r.ID] = i
	}
	return nil
}
