// BYZRA ⸻ internal/tags/tags.go
// tag dictionaries as produced by exiftool, one per file

package tags

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// key exiftool uses for the path of the described file
const SourceFileKey = "SourceFile"

// namespaced tag name -> value, exactly as the tagger produced it
type Dictionary map[string]string

// converts one decoded exiftool JSON object into a dictionary
func FromRaw(raw map[string]any) Dictionary {
	if raw == nil {
		return nil
	}

	d := make(Dictionary, len(raw))
	for key, value := range raw {
		if s, ok := stringify(value); ok {
			d[key] = s
		}
	}
	return d
}

func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := stringify(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// exact lookup
func (d Dictionary) Get(key string) (string, bool) {
	v, ok := d[key]
	return v, ok
}

// path of the described file, false when missing or blank
func (d Dictionary) SourceFile() (string, bool) {
	v, ok := d[SourceFileKey]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// keys whose name part equals name (case-insensitive), sorted
func (d Dictionary) WithName(name string) []string {
	var keys []string
	for key := range d {
		if strings.EqualFold(Name(key), name) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// "EXIF:CreateDate" -> "CreateDate"
func Name(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// "EXIF:CreateDate" -> "EXIF", "" for bare keys
func Namespace(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[:i]
	}
	return ""
}
