package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sanjigen3D/logisticaint-app-sub000/carriers"
	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/mappers"
	"github.com/sanjigen3D/logisticaint-app-sub000/services"
	"github.com/sanjigen3D/logisticaint-app-sub000/tracking"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeErr maps a service error to a status code. 5xx details and carrier
// response bodies stay in the log.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()

	var se *carriers.StatusError
	switch {
	case status == http.StatusInternalServerError:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	case errors.As(err, &se):
		slog.Warn("carrier request failed", "method", r.Method, "path", r.URL.Path,
			"carrier_status", se.Code, "carrier_body", se.Body)
		msg = "upstream carrier error"
		if status == http.StatusNotFound {
			msg = "not found at carrier"
		}
	}
	writeError(w, r, status, msg)
}

func statusFor(err error) int {
	var se *carriers.StatusError
	switch {
	case errors.Is(err, services.ErrUnknownCarrier), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTrackingNumber):
		return http.StatusBadRequest
	case errors.Is(err, carriers.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrAllCarriersFailed),
		errors.Is(err, mappers.ErrInvalidPayload),
		errors.Is(err, tracking.ErrInvalidPayload):
		return http.StatusBadGateway
	case errors.As(err, &se):
		if se.Code == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// validationMessage lists the failing fields by their JSON names.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if name != "" {
			name = strings.ToLower(name[:1]) + name[1:]
		}
		parts = append(parts, name+": "+fe.Tag())
	}
	return "invalid request: " + strings.Join(parts, ", ")
}
