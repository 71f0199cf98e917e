// BYZRA ⸻ internal/media/record.go
// resolved, immutable result for one media file

package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// capture times are always rendered from UTC, so the offset reads +00:00
const TimeLayout = "2006:01:02 15:04:05-07:00"

var ErrEmptyPath = errors.New("media record needs a file path")

// Record is created once per file and never modified afterwards.
// Corrections produce a new Record through the With* methods.
type Record struct {
	filePath    string
	captureTime time.Time
	hasTime     bool
	source      string
	sidecarPath string
}

type Option func(*Record)

// normalised to UTC, whole seconds
func WithCaptureTime(t time.Time) Option {
	return func(r *Record) {
		r.captureTime = normalize(t)
		r.hasTime = true
	}
}

// empty label means absent
func WithSource(label string) Option {
	return func(r *Record) {
		r.source = label
	}
}

// empty path means absent
func WithSidecar(path string) Option {
	return func(r *Record) {
		r.sidecarPath = path
	}
}

func New(filePath string, opts ...Option) (Record, error) {
	if filePath == "" {
		return Record{}, ErrEmptyPath
	}

	r := Record{filePath: filePath}
	for _, opt := range opts {
		opt(&r)
	}
	return r, nil
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (r Record) FilePath() string {
	return r.filePath
}

func (r Record) CaptureTime() (time.Time, bool) {
	return r.captureTime, r.hasTime
}

// "" when no capture time was resolved
func (r Record) CaptureTimeString() string {
	if !r.hasTime {
		return ""
	}
	return FormatTime(r.captureTime)
}

func (r Record) Source() (string, bool) {
	return r.source, r.source != ""
}

func (r Record) SidecarPath() (string, bool) {
	return r.sidecarPath, r.sidecarPath != ""
}

// copy of r carrying t as capture time
func (r Record) WithCaptureTime(t time.Time) Record {
	WithCaptureTime(t)(&r)
	return r
}

func (r Record) Equal(other Record) bool {
	return r.filePath == other.filePath &&
		r.hasTime == other.hasTime &&
		r.captureTime.Equal(other.captureTime) &&
		r.source == other.source &&
		r.sidecarPath == other.sidecarPath
}

func (r Record) String() string {
	return fmt.Sprintf("Record(filePath=%q, captureTime=%q, source=%q, sidecarPath=%q)",
		r.filePath, r.CaptureTimeString(), r.source, r.sidecarPath)
}

// renders t in the canonical UTC form
func FormatTime(t time.Time) string {
	return normalize(t).Format(TimeLayout)
}

// parses the canonical form back; any explicit offset is accepted and converted
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid capture time %q: %w", s, err)
	}
	return normalize(t), nil
}

// ╭─ SERIALIZATION ─────────────────────────────╮

type recordJSON struct {
	FilePath    string  `json:"filePath"`
	CaptureTime *string `json:"captureTime,omitempty"`
	Source      *string `json:"source,omitempty"`
	SidecarPath *string `json:"sidecarPath,omitempty"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{FilePath: r.filePath}
	if r.hasTime {
		s := r.CaptureTimeString()
		out.CaptureTime = &s
	}
	if r.source != "" {
		out.Source = &r.source
	}
	if r.sidecarPath != "" {
		out.SidecarPath = &r.sidecarPath
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var opts []Option
	if in.CaptureTime != nil {
		t, err := ParseTime(*in.CaptureTime)
		if err != nil {
			return err
		}
		opts = append(opts, WithCaptureTime(t))
	}
	if in.Source != nil {
		opts = append(opts, WithSource(*in.Source))
	}
	if in.SidecarPath != nil {
		opts = append(opts, WithSidecar(*in.SidecarPath))
	}

	rec, err := New(in.FilePath, opts...)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}
