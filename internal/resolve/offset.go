// BYZRA ⸻ internal/resolve/offset.go
// offset rules that anchor naive timestamps

package resolve

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tempora/internal/tags"
)

// OffsetRule tries to find the zone a naive value of tag was recorded in.
// wall carries the naive wall clock.
type OffsetRule struct {
	Name string
	Find func(d tags.Dictionary, tag string, wall time.Time) (*time.Location, bool)
}

// rule name reported for values that already carried an offset
const RuleExplicit = "explicit"

// companion offset tags, e.g. EXIF:OffsetTimeOriginal for EXIF:DateTimeOriginal
func CompanionOffsetRule(companions map[string]string) OffsetRule {
	return OffsetRule{
		Name: "companion-offset",
		Find: func(d tags.Dictionary, tag string, _ time.Time) (*time.Location, bool) {
			companion, ok := companions[tag]
			if !ok {
				return nil, false
			}
			value, ok := d.Get(companion)
			if !ok {
				return nil, false
			}
			return parseOffset(value)
		},
	}
}

// same tag name under another namespace with an explicit offset and the same wall clock,
// e.g. XMP:DateTimeOriginal next to a naive EXIF:DateTimeOriginal
func SiblingTagRule() OffsetRule {
	return OffsetRule{
		Name: "sibling-tag",
		Find: func(d tags.Dictionary, tag string, wall time.Time) (*time.Location, bool) {
			name := tags.Name(tag)
			siblings := append(d.WithName(name), d.WithName("SubSec"+name)...)
			for _, key := range siblings {
				if key == tag {
					continue
				}
				ts, err := ParseTimestamp(d[key])
				if err != nil || !ts.HasOffset {
					continue
				}
				if sameWallClock(ts.Time, wall) {
					return ts.Time.Location(), true
				}
			}
			return nil, false
		},
	}
}

// QuickTime stores creation times in UTC
func ContainerUTCRule(utcTags []string) OffsetRule {
	set := make(map[string]struct{}, len(utcTags))
	for _, t := range utcTags {
		set[t] = struct{}{}
	}
	return OffsetRule{
		Name: "container-utc",
		Find: func(_ tags.Dictionary, tag string, _ time.Time) (*time.Location, bool) {
			if _, ok := set[tag]; ok {
				return time.UTC, true
			}
			return nil, false
		},
	}
}

// whole-file offset tags; first one present and parseable wins
func TimeZoneTagRule(zoneTags []string) OffsetRule {
	return OffsetRule{
		Name: "timezone-tag",
		Find: func(d tags.Dictionary, _ string, _ time.Time) (*time.Location, bool) {
			for _, key := range zoneTags {
				value, ok := d.Get(key)
				if !ok {
					continue
				}
				if loc, ok := parseOffset(value); ok {
					return loc, true
				}
				if loc, ok := parseHourOffset(value); ok {
					return loc, true
				}
			}
			return nil, false
		},
	}
}

// "+02:00", "-0330", "+05", "Z"
func parseOffset(value string) (*time.Location, bool) {
	value = strings.TrimSpace(value)
	if value == "Z" || value == "z" {
		return time.UTC, true
	}
	if len(value) < 3 || (value[0] != '+' && value[0] != '-') {
		return nil, false
	}

	digits := strings.ReplaceAll(value[1:], ":", "")
	var hours, minutes int
	var err error
	switch len(digits) {
	case 2:
		hours, err = strconv.Atoi(digits)
	case 4:
		hours, err = strconv.Atoi(digits[:2])
		if err == nil {
			minutes, err = strconv.Atoi(digits[2:])
		}
	default:
		return nil, false
	}
	if err != nil || hours > 14 || minutes > 59 {
		return nil, false
	}

	seconds := hours*3600 + minutes*60
	if value[0] == '-' {
		seconds = -seconds
	}
	return fixedZone(seconds), true
}

// EXIF:TimeZoneOffset is one or two integers of hours; only the first applies
// to the capture time
func parseHourOffset(value string) (*time.Location, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, false
	}
	hours, err := strconv.Atoi(fields[0])
	if err != nil || hours < -12 || hours > 14 {
		return nil, false
	}
	return fixedZone(hours * 3600), true
}

func fixedZone(seconds int) *time.Location {
	if seconds == 0 {
		return time.UTC
	}
	sign := '+'
	abs := seconds
	if seconds < 0 {
		sign = '-'
		abs = -seconds
	}
	return time.FixedZone(fmt.Sprintf("%c%02d:%02d", sign, abs/3600, abs%3600/60), seconds)
}
