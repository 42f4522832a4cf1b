package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// logEvent emits one AIS manager event with the running counters attached.
func (a *AISStreamManager) logEvent(eventType string, msg string, extra map[string]interface{}) {
	level := slog.LevelInfo
	switch {
	case strings.HasSuffix(eventType, "_error"):
		level = slog.LevelWarn
	case eventType == "connection_attempt" || eventType == "statistics":
		level = slog.LevelDebug
	}

	attrs := []slog.Attr{
		slog.String("event_type", eventType),
		slog.String("uptime", time.Since(a.startTime).Round(time.Second).String()),
		slog.Group("stats",
			slog.Uint64("messages_received", a.stats.messagesReceived.Load()),
			slog.Uint64("messages_saved", a.stats.messagesSaved.Load()),
			slog.Uint64("positions_stored", a.stats.positionsStored.Load()),
			slog.Uint64("errors", a.stats.errors.Load()),
			slog.Uint64("reconnects", a.stats.reconnects.Load()),
		),
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, extra[k]))
	}

	slog.LogAttrs(context.Background(), level, msg, attrs...)
}

func (a *AISStreamManager) logStatsPeriodically(ctx context.Context) {
	ticker := time.NewTicker(a.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		received := a.stats.messagesReceived.Load()
		extra := map[string]interface{}{
			"messages_per_minute": float64(received) / time.Since(a.startTime).Minutes(),
		}
		if received > 0 {
			extra["save_success_rate"] = float64(a.stats.messagesSaved.Load()) / float64(received) * 100
		}
		a.logEvent("statistics", "Periodic statistics update", extra)
	}
}
