// BYZRA ⸻ internal/resolve/gps.go
// time zone lookup from GPS coordinates

package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"

	"tempora/internal/tags"
)

// ZoneFinder maps a coordinate to an IANA zone name, "" when unknown.
// tzf.F satisfies it.
type ZoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

var (
	defaultFinderOnce sync.Once
	defaultFinder     ZoneFinder
	defaultFinderErr  error
)

// shared tzf finder, loaded on first use
func DefaultZoneFinder() (ZoneFinder, error) {
	defaultFinderOnce.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err != nil {
			defaultFinderErr = fmt.Errorf("failed to load time zone data: %w", err)
			return
		}
		defaultFinder = f
	})
	return defaultFinder, defaultFinderErr
}

// zone of the place the file was captured, at that wall clock
func GPSRule(finder ZoneFinder) OffsetRule {
	return OffsetRule{
		Name: "gps",
		Find: func(d tags.Dictionary, _ string, _ time.Time) (*time.Location, bool) {
			if finder == nil {
				return nil, false
			}
			lat, lng, ok := Coordinates(d)
			if !ok {
				return nil, false
			}
			name := finder.GetTimezoneName(lng, lat)
			if name == "" {
				return nil, false
			}
			loc, err := time.LoadLocation(name)
			if err != nil {
				return nil, false
			}
			return loc, true
		},
	}
}

// Coordinates reads signed latitude and longitude from the GPS tags of any namespace.
func Coordinates(d tags.Dictionary) (lat, lng float64, ok bool) {
	lat, ok = coordinate(d, "GPSLatitude", 90)
	if !ok {
		return 0, 0, false
	}
	lng, ok = coordinate(d, "GPSLongitude", 180)
	if !ok {
		return 0, 0, false
	}
	return lat, lng, true
}

func coordinate(d tags.Dictionary, name string, limit float64) (float64, bool) {
	for _, key := range d.WithName(name) {
		value, hemisphere, ok := parseCoordinate(d[key])
		if !ok || value > limit || value < -limit {
			continue
		}
		if hemisphere == "" {
			hemisphere = reference(d, tags.Namespace(key), name+"Ref")
		}
		switch hemisphere {
		case "S", "W":
			if value > 0 {
				value = -value
			}
		}
		return value, true
	}
	return 0, false
}

// Ref value of the same namespace first, any namespace otherwise
func reference(d tags.Dictionary, namespace, name string) string {
	keys := d.WithName(name)
	for _, key := range keys {
		if tags.Namespace(key) == namespace {
			return hemisphereLetter(d[key])
		}
	}
	for _, key := range keys {
		if h := hemisphereLetter(d[key]); h != "" {
			return h
		}
	}
	return ""
}

func hemisphereLetter(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	switch value[0] {
	case 'N', 'S', 'E', 'W':
		return value[:1]
	}
	return ""
}

// 42 deg 3' 45.27" N
var dmsPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*deg\s*(\d+(?:\.\d+)?)'\s*(\d+(?:\.\d+)?)"\s*([NSEWnsew])?$`)

// decimal degrees with an optional hemisphere letter
var decimalPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*([NSEWnsew])?$`)

func parseCoordinate(value string) (float64, string, bool) {
	value = strings.TrimSpace(value)

	if m := dmsPattern.FindStringSubmatch(value); m != nil {
		deg, _ := strconv.ParseFloat(m[1], 64)
		mins, _ := strconv.ParseFloat(m[2], 64)
		sec, _ := strconv.ParseFloat(m[3], 64)
		if mins >= 60 || sec >= 60 {
			return 0, "", false
		}
		abs := deg
		if abs < 0 {
			abs = -abs
		}
		total := abs + mins/60 + sec/3600
		if deg < 0 {
			total = -total
		}
		return total, strings.ToUpper(m[4]), true
	}

	if m := decimalPattern.FindStringSubmatch(value); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, "", false
		}
		return v, strings.ToUpper(m[2]), true
	}

	return 0, "", false
}
