package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	aisstream "github.com/aisstream/ais-message-models/golang/aisStream"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/internal/telemetry"
	"github.com/sanjigen3D/logisticaint-app-sub000/internal/utils"
)

const DefaultAISStreamURL = "wss://stream.aisstream.io/v0/stream"

type AISStreamConfig struct {
	URL        string
	APIKey     string
	ArchiveDir string
}

type subscription struct {
	APIKey          string         `json:"APIKey"`
	BoundingBoxes   [][][2]float64 `json:"BoundingBoxes"`
	FiltersShipMMSI []string       `json:"FiltersShipMMSI"`
}

type aisStats struct {
	messagesReceived atomic.Uint64
	messagesSaved    atomic.Uint64
	positionsStored  atomic.Uint64
	errors           atomic.Uint64
	reconnects       atomic.Uint64
}

// AISStreamManager follows a set of vessels on aisstream.io, archiving every
// message and storing position reports.
type AISStreamManager struct {
	cfg    AISStreamConfig
	db     db.Querier
	dialer *websocket.Dialer
	stats  aisStats

	startTime     time.Time
	statsInterval time.Duration
	minBackoff    time.Duration
	maxBackoff    time.Duration

	wg sync.WaitGroup
}

func NewAISStreamManager(cfg AISStreamConfig, database db.Querier) *AISStreamManager {
	if cfg.URL == "" {
		cfg.URL = DefaultAISStreamURL
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = "ais_messages"
	}
	return &AISStreamManager{
		cfg:           cfg,
		db:            database,
		dialer:        websocket.DefaultDialer,
		startTime:     time.Now(),
		statsInterval: 5 * time.Minute,
		minBackoff:    time.Second,
		maxBackoff:    time.Minute,
	}
}

// StartStreaming marks the vessels tracked and follows them until ctx is
// done, reconnecting as needed. It returns once the stream loop is running.
func (a *AISStreamManager) StartStreaming(ctx context.Context, mmsis []string) error {
	if len(mmsis) == 0 {
		return fmt.Errorf("ais stream: no vessels to follow")
	}

	a.logEvent("startup", "Starting AIS stream manager", map[string]interface{}{
		"mmsi_count": len(mmsis),
	})

	n, err := db.UpdateTrackedVessels(ctx, a.db, mmsis)
	if err != nil {
		a.stats.errors.Add(1)
		a.logEvent("database_error", "Failed to update tracked vessels", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		a.logEvent("database_success", "Updated tracked vessels in database", map[string]interface{}{
			"count": n,
		})
	}

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.logStatsPeriodically(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.run(ctx, mmsis)
	}()
	return nil
}

// Wait blocks until the stream and stats loops have exited.
func (a *AISStreamManager) Wait() {
	a.wg.Wait()
}

func (a *AISStreamManager) run(ctx context.Context, mmsis []string) {
	backoff := a.minBackoff
	for {
		connectedAt := time.Now()
		err := a.session(ctx, mmsis)
		if ctx.Err() != nil {
			a.logEvent("shutdown", "AIS stream stopped", nil)
			return
		}

		a.stats.errors.Add(1)
		a.logEvent("websocket_error", "AIS stream session ended", map[string]interface{}{
			"error": errString(err),
		})

		// a session that stayed up a while earns a fresh backoff
		if time.Since(connectedAt) > a.maxBackoff {
			backoff = a.minBackoff
		}

		a.stats.reconnects.Add(1)
		a.logEvent("reconnection", "Reconnecting to AIS stream", map[string]interface{}{
			"backoff": backoff.String(),
		})

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, a.maxBackoff)
	}
}

// session runs one connection until it fails or ctx ends.
func (a *AISStreamManager) session(ctx context.Context, mmsis []string) error {
	a.logEvent("connection_attempt", "Attempting to connect to AIS stream", map[string]interface{}{
		"url": a.cfg.URL,
	})

	conn, _, err := a.dialer.DialContext(ctx, a.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	a.logEvent("connection_success", "Successfully connected to AIS stream", nil)

	sub := subscription{
		APIKey:          a.cfg.APIKey,
		BoundingBoxes:   [][][2]float64{{{-90, -180}, {90, 180}}},
		FiltersShipMMSI: mmsis,
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	a.logEvent("subscription_success", "Successfully subscribed to AIS stream", map[string]interface{}{
		"mmsi_count": len(mmsis),
	})

	// unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		a.handleMessage(ctx, message)
	}
}

func (a *AISStreamManager) handleMessage(ctx context.Context, raw []byte) {
	a.stats.messagesReceived.Add(1)

	var msg aisstream.AisStreamMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		a.stats.errors.Add(1)
		a.logEvent("parse_error", "Failed to parse message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	telemetry.AISMessages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(msg.MessageType)),
	))

	if err := a.saveMessageToFile(raw, time.Now()); err != nil {
		a.stats.errors.Add(1)
		a.logEvent("filesystem_error", "Error archiving message", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if msg.MessageType != aisstream.POSITION_REPORT || msg.Message.PositionReport == nil {
		return
	}

	mmsi, ok := metaMMSI(msg.MetaData)
	if !ok {
		a.stats.errors.Add(1)
		a.logEvent("parse_error", "Position report without MMSI", nil)
		return
	}

	ts := time.Now().UTC()
	if s, ok := msg.MetaData["time_utc"].(string); ok {
		if parsed, err := utils.ParseTimestamp(s, time.UTC); err == nil {
			ts = parsed
		}
	}

	if err := db.InsertPositionReport(ctx, a.db, mmsi, *msg.Message.PositionReport, ts); err != nil {
		a.stats.errors.Add(1)
		a.logEvent("database_error", "Failed to store position report", map[string]interface{}{
			"mmsi":  mmsi,
			"error": err.Error(),
		})
		return
	}
	a.stats.positionsStored.Add(1)
}

func metaMMSI(meta map[string]interface{}) (string, bool) {
	switch v := meta["MMSI"].(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10), v > 0
	case string:
		return v, v != ""
	}
	return "", false
}

// saveMessageToFile archives raw under <archiveDir>/<date>/<hour>/<unixnano>.json.
func (a *AISStreamManager) saveMessageToFile(raw []byte, now time.Time) error {
	dirPath := filepath.Join(a.cfg.ArchiveDir, now.Format("2006-01-02"), now.Format("15"))
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dirPath, err)
	}

	filename := filepath.Join(dirPath, fmt.Sprintf("%d.json", now.UnixNano()))
	if err := os.WriteFile(filename, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	a.stats.messagesSaved.Add(1)
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
