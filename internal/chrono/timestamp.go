package chrono

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/store"
)

// timestampLayouts are the Date formats found in the archive, most specific first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses a Date metadata value. Values without a zone are read
// in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp returns when an article was published: its Date metadata when it
// parses, otherwise midnight of the day encoded in its identifier.
func Timestamp(e cache.Entry, loc *time.Location) time.Time {
	if t, ok := ParseTimestamp(e.Metadata.Get("Date"), loc); ok {
		return t
	}
	if d, ok := store.PostDate(e.ID); ok {
		return calendarDay(d, loc)
	}
	return e.InsertedAt
}

func calendarDay(d time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}
