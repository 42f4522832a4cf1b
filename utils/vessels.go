package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

// CollectUniqueVessels indexes every leg vessel with an IMO number by IMO.
// The first route mentioning a vessel wins.
func CollectUniqueVessels(routes []models.UnifiedRoute) map[string]db.Vessel {
	imoSet := make(map[string]db.Vessel)
	for _, r := range routes {
		for _, leg := range r.Legs {
			imo := strings.TrimSpace(leg.IMONumber)
			if imo == "" {
				continue
			}
			if _, seen := imoSet[imo]; seen {
				continue
			}
			imoSet[imo] = db.Vessel{
				IMONumber:   imo,
				Name:        leg.VesselName,
				CarrierCode: r.Carrier,
			}
		}
	}
	return imoSet
}

// MMSILookup resolves an IMO number to an MMSI.
type MMSILookup func(ctx context.Context, imo string) (string, error)

type VesselFetcher struct {
	DB     db.Querier
	Lookup MMSILookup

	workers    int
	retries    int
	retryDelay time.Duration
}

func NewVesselFetcher(q db.Querier) *VesselFetcher {
	return &VesselFetcher{
		DB:         q,
		Lookup:     FirstOf(VesselFinderMMSI, MarineTrafficMMSI),
		workers:    3,
		retries:    3,
		retryDelay: time.Second,
	}
}

// FetchVesselData fills in MMSIs, from the database where the vessel is
// known and from a web lookup otherwise. Lookup failures leave MMSI empty.
func (vf *VesselFetcher) FetchVesselData(ctx context.Context, imoSet map[string]db.Vessel) map[string]db.Vessel {
	out := make(map[string]db.Vessel, len(imoSet))

	imos := make([]string, 0, len(imoSet))
	for imo := range imoSet {
		imos = append(imos, imo)
	}

	known, err := db.GetVesselsByIMOs(ctx, vf.DB, imos)
	if err != nil {
		slog.Warn("vessel lookup in database failed", "error", err)
	}

	var httpNeeded []string
	for imo, vessel := range imoSet {
		if dbVessel, ok := known[imo]; ok && dbVessel.MMSI != "" {
			vessel.MMSI = dbVessel.MMSI
			vessel.LastKnownPosition = dbVessel.LastKnownPosition
		} else {
			httpNeeded = append(httpNeeded, imo)
		}
		out[imo] = vessel
	}

	for imo, mmsi := range vf.lookupAll(ctx, httpNeeded) {
		v := out[imo]
		v.MMSI = mmsi
		out[imo] = v
	}
	return out
}

type lookupResult struct {
	imo  string
	mmsi string
	err  error
}

// lookupAll runs the MMSI lookups on a small worker pool to stay under the
// site's rate limit.
func (vf *VesselFetcher) lookupAll(ctx context.Context, imos []string) map[string]string {
	found := make(map[string]string)
	if len(imos) == 0 || vf.Lookup == nil {
		return found
	}

	jobs := make(chan string, len(imos))
	results := make(chan lookupResult, len(imos))

	var wg sync.WaitGroup
	for i := 0; i < vf.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for imo := range jobs {
				mmsi, err := vf.lookupWithRetry(ctx, imo)
				if err != nil {
					slog.Debug("mmsi lookup failed", "worker", workerID, "imo", imo, "error", err)
				}
				results <- lookupResult{imo: imo, mmsi: mmsi, err: err}
			}
		}(i)
	}

	for _, imo := range imos {
		jobs <- imo
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	start := time.Now()
	failures := 0
	for r := range results {
		if r.err == nil && r.mmsi != "" {
			found[r.imo] = r.mmsi
		} else {
			failures++
		}
	}

	slog.Info("mmsi lookups completed", "ok", len(found), "failed", failures, "dur", time.Since(start))
	return found
}

func (vf *VesselFetcher) lookupWithRetry(ctx context.Context, imo string) (string, error) {
	var err error
	for attempt := 0; attempt < vf.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * vf.retryDelay):
			}
		}

		var mmsi string
		mmsi, err = vf.Lookup(ctx, imo)
		if err == nil {
			return mmsi, nil
		}
	}
	return "", err
}

var scrapeClient = &http.Client{Timeout: 5 * time.Second}

// VesselFinderMMSI scrapes the vessel's public detail page.
func VesselFinderMMSI(ctx context.Context, imo string) (string, error) {
	url := fmt.Sprintf("https://www.vesselfinder.com/vessels/details/%s", imo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	// the site rejects non-browser agents
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/91.0.4472.124")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := scrapeClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return ParseMMSIFromHTML(string(body))
}

// ParseMMSIFromHTML extracts the MMSI from the "IMO / MMSI" row of a
// vesselfinder detail page.
func ParseMMSIFromHTML(body string) (string, error) {
	const label = "IMO / MMSI"

	idx := strings.Index(body, label)
	if idx == -1 {
		return "", fmt.Errorf("could not find MMSI in response")
	}

	// skip to the value cell
	rest := body[idx+len(label):]
	for i := 0; i < 2; i++ {
		gt := strings.Index(rest, ">")
		if gt == -1 {
			return "", fmt.Errorf("could not parse MMSI from response")
		}
		rest = rest[gt+1:]
	}

	end := strings.Index(rest, "<")
	if end == -1 {
		return "", fmt.Errorf("could not parse MMSI from response")
	}

	parts := strings.Split(strings.TrimSpace(rest[:end]), "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("unexpected MMSI format %q", rest[:end])
	}

	mmsi := strings.TrimSpace(parts[1])
	if mmsi == "" || mmsi == "-" {
		return "", fmt.Errorf("no MMSI listed")
	}
	return mmsi, nil
}
