// Package calendar buckets unified routes by departure day and steps through
// displayed months.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/internal/utils"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

const dateLayout = "2006-01-02"

// Buckets maps a YYYY-MM-DD day to the routes whose first leg departs on it.
type Buckets map[string][]models.UnifiedRoute

// DateKey returns the calendar day of an ISO-8601 timestamp.
//
// With a nil loc the day is read from the timestamp's own offset. With a
// location the instant is first converted to it, which is how a viewer in that
// zone sees the sailing. Timestamps without an offset are wall time in loc.
func DateKey(dateTime string, loc *time.Location) (string, bool) {
	t, err := utils.ParseTimestamp(dateTime, loc)
	if err != nil {
		return "", false
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout), true
}

// Group buckets routes by the day of legs[0].departure.dateTime. Routes without
// legs or with an unparseable departure are left out of every bucket.
func Group(routes []models.UnifiedRoute, loc *time.Location) Buckets {
	b := make(Buckets)
	for _, r := range routes {
		key, ok := DateKey(r.FirstDeparture(), loc)
		if !ok {
			continue
		}
		b[key] = append(b[key], r)
	}
	return b
}

func (b Buckets) On(date string) []models.UnifiedRoute {
	return b[date]
}

// Dates returns the populated days in ascending order.
func (b Buckets) Dates() []string {
	dates := make([]string, 0, len(b))
	for d := range b {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// IDs returns the route ids per day, for responses that ship routes separately.
func (b Buckets) IDs() map[string][]string {
	ids := make(map[string][]string, len(b))
	for d, routes := range b {
		for _, r := range routes {
			ids[d] = append(ids[d], r.ID)
		}
	}
	return ids
}

// Month is the displayed calendar page.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func NewMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("month %d out of range", month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("year %d out of range", year)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Contains reports whether a YYYY-MM-DD key falls in m.
func (m Month) Contains(date string) bool {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) DaysIn() int {
	// day 0 of the next month is the last day of this one
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type Day struct {
	Date   string                `json:"date"`
	Count  int                   `json:"count"`
	Routes []models.UnifiedRoute `json:"routes,omitempty"`
}

// Days lays out every day of m with the routes departing on it.
func (m Month) Days(b Buckets) []Day {
	n := m.DaysIn()
	days := make([]Day, 0, n)
	for d := 1; d <= n; d++ {
		key := time.Date(m.Year, m.Month, d, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		routes := b.On(key)
		days = append(days, Day{Date: key, Count: len(routes), Routes: routes})
	}
	return days
}
