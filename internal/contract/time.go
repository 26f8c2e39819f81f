package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the calendar-date layout of plain since inputs and commit dates.
const DateFormat = time.DateOnly

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "3 months ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value: %s", matches[1])
	}

	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default: // minute
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// SinceLayout is the timestamp form handed to git as --after. A bare date
// would make git fill in the current time of day.
const SinceLayout = "2006-01-02T15:04:05-07:00"

// git's date parser only accepts years in this window; anything else is
// silently dropped and the bound disappears.
const (
	minSinceYear = 1970
	maxSinceYear = 2099
)

// NormalizeSince turns a user-provided since bound into a SinceLayout timestamp.
// Accepted inputs are YYYY-MM-DD (midnight in now's zone), RFC3339 and "N [units] ago".
// Empty stays empty, as does a bound before the Unix epoch since it excludes nothing.
// Bounds past git's last year are clamped so they still exclude everything.
func NormalizeSince(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := parseSince(s, now)
	if err != nil {
		return "", err
	}
	switch {
	case t.Year() < minSinceYear || t.Unix() <= 0:
		return "", nil
	case t.Year() > maxSinceYear:
		t = time.Date(maxSinceYear, time.December, 31, 23, 59, 59, 0, time.UTC)
	}
	return t.Format(SinceLayout), nil
}

func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation(DateFormat, s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since value %q. Expected YYYY-MM-DD, RFC3339 or 'N [units] ago'", s)
	}
	return t, nil
}
