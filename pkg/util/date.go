package util

import "time"

// PST is the fixed UTC-8 zone used throughout SOG forcing files. The model
// runs on standard time year round, so this is deliberately not
// America/Vancouver.
var PST = time.FixedZone("PST", -8*60*60)

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// TruncateDay discards the time-of-day component, keeping the location.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
