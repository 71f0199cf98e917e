// BYZRA ⸻ internal/media/record_test.go
// record construction and JSON form

package media

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestCaptureTimeIsNormalisedToUTC(t *testing.T) {
	zone := time.FixedZone("", 2*3600)
	rec, err := New("/a.jpg", WithCaptureTime(time.Date(2018, 6, 11, 17, 32, 57, 450_000_000, zone)))
	if err != nil {
		t.Fatal(err)
	}

	if got := rec.CaptureTimeString(); got != "2018:06:11 15:32:57+00:00" {
		t.Fatalf("CaptureTimeString() = %q", got)
	}
	ct, ok := rec.CaptureTime()
	if !ok || ct.Location() != time.UTC || ct.Nanosecond() != 0 {
		t.Fatalf("CaptureTime() = %v, %v", ct, ok)
	}
}

func TestAbsentFields(t *testing.T) {
	rec, err := New("/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rec.CaptureTime(); ok {
		t.Fatal("capture time should be absent")
	}
	if _, ok := rec.Source(); ok {
		t.Fatal("source should be absent")
	}
	if _, ok := rec.SidecarPath(); ok {
		t.Fatal("sidecar should be absent")
	}
	if rec.CaptureTimeString() != "" {
		t.Fatal("absent capture time renders empty")
	}
}

func TestWithCaptureTimeReturnsNewRecord(t *testing.T) {
	orig, _ := New("/a.jpg", WithSource("iPhone 8"))
	inferred := orig.WithCaptureTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	if _, ok := orig.CaptureTime(); ok {
		t.Fatal("original record was modified")
	}
	if inferred.CaptureTimeString() != "2020:01:01 00:00:00+00:00" {
		t.Fatalf("unexpected inferred time %q", inferred.CaptureTimeString())
	}
	if src, _ := inferred.Source(); src != "iPhone 8" {
		t.Fatal("other fields must carry over")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	full, _ := New("/photos/IMG_0001.HEIC",
		WithCaptureTime(time.Date(2018, 2, 28, 2, 25, 37, 0, time.UTC)),
		WithSource("iPhone 8"),
		WithSidecar("/photos/IMG_0001O.aae"))
	bare, _ := New("/photos/IMG-20190101-WA0001.jpg")

	for _, rec := range []Record{full, bare} {
		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatal(err)
		}
		var back Record
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatal(err)
		}
		if !back.Equal(rec) {
			t.Fatalf("round trip changed record: %v -> %v", rec, back)
		}
	}
}

func TestMarshalOmitsAbsentFields(t *testing.T) {
	rec, _ := New("/a.jpg")
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"filePath":"/a.jpg"}` {
		t.Fatalf("unexpected JSON %s", data)
	}
}

func TestUnmarshalRejectsBadTime(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"filePath":"/a.jpg","captureTime":"yesterday"}`), &rec)
	if err == nil {
		t.Fatal("expected error for malformed capture time")
	}
}

func TestParseTimeAcceptsOtherOffsets(t *testing.T) {
	got, err := ParseTime("2018:06:11 17:32:57+01:00")
	if err != nil {
		t.Fatal(err)
	}
	if FormatTime(got) != "2018:06:11 16:32:57+00:00" {
		t.Fatalf("unexpected %s", FormatTime(got))
	}
}
