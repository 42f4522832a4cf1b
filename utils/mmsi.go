package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FirstOf tries each lookup in order and returns the first MMSI found.
func FirstOf(lookups ...MMSILookup) MMSILookup {
	return func(ctx context.Context, imo string) (string, error) {
		var errs []error
		for _, l := range lookups {
			mmsi, err := l(ctx, imo)
			if err == nil && mmsi != "" {
				return mmsi, nil
			}
			errs = append(errs, err)
		}
		return "", errors.Join(errs...)
	}
}

// MarineTrafficMMSI reads the MMSI from the title of the vessel's
// MarineTraffic page.
func MarineTrafficMMSI(ctx context.Context, imo string) (string, error) {
	url := fmt.Sprintf("https://www.marinetraffic.com/en/ais/details/ships/imo:%s", imo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/91.0.4472.124")

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
	return ParseMMSIFromTitle(string(body))
}

// ParseMMSIFromTitle handles titles of the form
// "Ship NAME (Type) Registered in X - Vessel details ... - IMO 9321483, MMSI 220417000, Call sign OYGR2".
func ParseMMSIFromTitle(body string) (string, error) {
	titleStart := strings.Index(body, "<title>")
	if titleStart == -1 {
		return "", fmt.Errorf("title tag not found")
	}
	titleEnd := strings.Index(body[titleStart:], "</title>")
	if titleEnd == -1 {
		return "", fmt.Errorf("closing title tag not found")
	}
	title := body[titleStart+len("<title>") : titleStart+titleEnd]

	idx := strings.Index(title, "MMSI ")
	if idx == -1 {
		return "", fmt.Errorf("MMSI not found in title")
	}

	rest := title[idx+len("MMSI "):]
	end := strings.IndexAny(rest, ", ")
	if end == -1 {
		end = len(rest)
	}

	mmsi := strings.TrimSpace(rest[:end])
	if mmsi == "" {
		return "", fmt.Errorf("MMSI format invalid")
	}
	return mmsi, nil
}
