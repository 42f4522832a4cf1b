package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	aisstream "github.com/aisstream/ais-message-models/golang/aisStream"

	"github.com/sanjigen3D/logisticaint-app-sub000/internal/utils"
)

// VesselMessagesSummary aggregates the archived AIS messages of one vessel.
type VesselMessagesSummary struct {
	EventTypes []string  `json:"eventTypes"`
	Count      int       `json:"count"`
	LastEvent  time.Time `json:"lastEvent"`
}

type messageSummary struct {
	mmsi      string
	eventType string
	timestamp time.Time
}

func readArchivedMessage(path string) (messageSummary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return messageSummary{}, err
	}

	var packet aisstream.AisStreamMessage
	if err := json.Unmarshal(content, &packet); err != nil {
		return messageSummary{}, fmt.Errorf("parse %s: %w", path, err)
	}

	mmsi, ok := packet.MetaData["MMSI"].(float64)
	if !ok {
		return messageSummary{}, fmt.Errorf("%s: no MMSI", path)
	}

	s := messageSummary{
		mmsi:      strconv.FormatInt(int64(mmsi), 10),
		eventType: string(packet.MessageType),
	}
	if ts, ok := packet.MetaData["time_utc"].(string); ok {
		s.timestamp, _ = utils.ParseTimestamp(ts, time.UTC)
	}
	return s, nil
}

// SummarizeArchive walks the AIS archive and returns, per MMSI, the message
// types seen, the message count and the latest event time. Unreadable files
// are skipped.
func SummarizeArchive(root string) (map[string]VesselMessagesSummary, error) {
	summaries := map[string]VesselMessagesSummary{}
	seenTypes := map[string]map[string]bool{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		msg, err := readArchivedMessage(path)
		if err != nil {
			slog.Debug("skipping archived message", "path", path, "error", err)
			return nil
		}

		sum := summaries[msg.mmsi]
		sum.Count++
		if msg.timestamp.After(sum.LastEvent) {
			sum.LastEvent = msg.timestamp
		}
		if seenTypes[msg.mmsi] == nil {
			seenTypes[msg.mmsi] = map[string]bool{}
		}
		if !seenTypes[msg.mmsi][msg.eventType] {
			seenTypes[msg.mmsi][msg.eventType] = true
			sum.EventTypes = append(sum.EventTypes, msg.eventType)
		}
		summaries[msg.mmsi] = sum
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return summaries, nil
	}
	if err != nil {
		return nil, err
	}

	for mmsi, sum := range summaries {
		sort.Strings(sum.EventTypes)
		summaries[mmsi] = sum
	}
	return summaries, nil
}

func FilesExaminerHandler(archiveDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := SummarizeArchive(archiveDir)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, summaries)
	}
}
