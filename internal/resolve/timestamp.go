// BYZRA ⸻ internal/resolve/timestamp.go
// parsing of tag date values, with or without a UTC offset

package resolve

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var ErrEmptyValue = errors.New("empty date value")

// Timestamp is a parsed tag value. When HasOffset is false, Time only
// carries the wall clock (its location is a UTC placeholder).
type Timestamp struct {
	Time      time.Time
	HasOffset bool
}

// exiftool emits ':' date separators; XMP and some apps emit ISO-8601.
// fractional seconds are accepted by time.Parse without a layout element.
var awareLayouts = []string{
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05Z0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006:01:02T15:04:05Z07:00",
}

var naiveLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006:01:02T15:04:05",
}

// probe zone for the dateparse fallback; any offset no real zone uses works
var probeZone = time.FixedZone("probe", 5*3600+17*60)

func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Timestamp{}, ErrEmptyValue
	}
	if isZeroDate(value) {
		return Timestamp{}, fmt.Errorf("zero date %q", value)
	}

	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t, HasOffset: true}, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}, nil
		}
	}

	return parseLoose(value)
}

// a four digit year and a time of day down to the second;
// "2018:02:28" and "Feb 28 2018" are dates, not capture times
var (
	yearPattern      = regexp.MustCompile(`(?:^|\D)\d{4}(?:\D|$)`)
	timeOfDayPattern = regexp.MustCompile(`(?:^|[\sT])\d{1,2}:\d{2}:\d{2}(?:[.,]\d+)?(?:\s|$|[+\-Zz])`)
)

// dateparse takes the given location only when the string has no zone of its own,
// so parsing in two zones tells aware values (same instant) from naive ones.
func parseLoose(value string) (Timestamp, error) {
	if !yearPattern.MatchString(value) || !timeOfDayPattern.MatchString(value) {
		return Timestamp{}, fmt.Errorf("unrecognised date %q: no full date and time", value)
	}

	inUTC, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("unrecognised date %q: %w", value, err)
	}
	inProbe, err := dateparse.ParseIn(value, probeZone)
	if err != nil {
		return Timestamp{}, fmt.Errorf("unrecognised date %q: %w", value, err)
	}
	if inUTC.Year() < 1 {
		return Timestamp{}, fmt.Errorf("unrecognised date %q", value)
	}

	if inUTC.Equal(inProbe) && !abbreviatedZone(inUTC) {
		return Timestamp{Time: inUTC, HasOffset: true}, nil
	}
	return Timestamp{Time: anchor(inUTC, time.UTC)}, nil
}

// an unknown abbreviation such as "PST" parses into a made-up zone at +00:00;
// only UTC itself carries no offset
func abbreviatedZone(t time.Time) bool {
	name, offset := t.Zone()
	if offset != 0 {
		return false
	}
	switch name {
	case "", "UTC", "GMT", "Z":
		return false
	}
	return true
}

// "0000:00:00 00:00:00" and exiftool's blank "    :  :  " placeholders
func isZeroDate(value string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
	return strings.Trim(digits, "0") == ""
}

// wall clock of a naive timestamp placed in loc
func anchor(wall time.Time, loc *time.Location) time.Time {
	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
}

func sameWallClock(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}
