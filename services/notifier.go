package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

const (
	NotificationSearched  = "itinerary.searched"
	NotificationAllFailed = "itinerary.all_failed"
)

// Notification summarises one finished itinerary search.
type Notification struct {
	Kind       string            `json:"kind"`
	SearchID   string            `json:"searchId"`
	Query      models.RouteQuery `json:"query"`
	RouteCount int               `json:"routeCount"`
	Carriers   []string          `json:"carriers"`
	Failures   []Failure         `json:"failures,omitempty"`
	At         time.Time         `json:"at"`
}

// Notifier receives exactly one notification per settled search.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// LogNotifier writes notifications to slog. It is used when no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	if n.Kind == NotificationAllFailed {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "itinerary search settled",
		"kind", n.Kind,
		"search_id", n.SearchID,
		"origin", n.Query.OriginCode,
		"destination", n.Query.DestinationCode,
		"routes", n.RouteCount,
		"failures", len(n.Failures),
	)
	return nil
}
