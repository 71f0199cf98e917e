// BYZRA ⸻ internal/enrich/neighbours_test.go
// neighbour inference

package enrich

import (
	"testing"

	"tempora/internal/media"
)

func rec(t *testing.T, path, captured string) media.Record {
	t.Helper()
	var opts []media.Option
	if captured != "" {
		tm, err := media.ParseTime(captured)
		if err != nil {
			t.Fatal(err)
		}
		opts = append(opts, media.WithCaptureTime(tm))
	}
	r, err := media.New(path, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestInferFromEarlierNeighbour(t *testing.T) {
	records := []media.Record{
		rec(t, "/p/IMG_10.jpg", ""),
		rec(t, "/p/IMG_8.jpg", "2018:06:11 16:00:00+00:00"),
		rec(t, "/p/IMG_9.jpg", ""),
	}

	got := InferFromNeighbours(records)
	if len(got) != 2 {
		t.Fatalf("got %d inferences", len(got))
	}

	// natural order: IMG_8, IMG_9, IMG_10
	if got[0].Original.FilePath() != "/p/IMG_9.jpg" || got[0].Inferred.CaptureTimeString() != "2018:06:11 16:01:00+00:00" {
		t.Fatalf("IMG_9: %+v", got[0])
	}
	if got[1].Original.FilePath() != "/p/IMG_10.jpg" || got[1].Inferred.CaptureTimeString() != "2018:06:11 16:02:00+00:00" {
		t.Fatalf("IMG_10: %+v", got[1])
	}
	if got[1].Distance != 2 || got[1].From != "/p/IMG_8.jpg" {
		t.Fatalf("IMG_10 neighbour: %+v", got[1])
	}

	if _, ok := records[0].CaptureTime(); ok {
		t.Fatal("original record must stay undated")
	}
}

func TestInferFromLaterNeighbour(t *testing.T) {
	records := []media.Record{
		rec(t, "/p/a1.jpg", ""),
		rec(t, "/p/a2.jpg", ""),
		rec(t, "/p/a3.jpg", "2020:01:01 00:00:00+00:00"),
	}
	got := InferFromNeighbours(records)
	if len(got) != 2 {
		t.Fatalf("got %d inferences", len(got))
	}
	if got[0].Inferred.CaptureTimeString() != "2019:12:31 23:58:00+00:00" || got[0].Distance != -2 {
		t.Fatalf("a1: %+v", got[0])
	}
	if got[1].Inferred.CaptureTimeString() != "2019:12:31 23:59:00+00:00" {
		t.Fatalf("a2: %+v", got[1])
	}
}

func TestFirstRecordUsesEarlierWhenDated(t *testing.T) {
	records := []media.Record{
		rec(t, "/p/a1.jpg", "2020:01:01 00:00:00+00:00"),
		rec(t, "/p/a2.jpg", ""),
		rec(t, "/p/a3.jpg", "2021:01:01 00:00:00+00:00"),
	}
	got := InferFromNeighbours(records)
	if len(got) != 1 || got[0].Inferred.CaptureTimeString() != "2020:01:01 00:01:00+00:00" {
		t.Fatalf("got %+v", got)
	}
}

func TestNoDatedRecords(t *testing.T) {
	records := []media.Record{rec(t, "/p/a.jpg", ""), rec(t, "/p/b.jpg", "")}
	if got := InferFromNeighbours(records); len(got) != 0 {
		t.Fatalf("expected no inference, got %+v", got)
	}
	if got := InferFromNeighbours(nil); len(got) != 0 {
		t.Fatal("empty input")
	}
}

func TestApply(t *testing.T) {
	records := []media.Record{
		rec(t, "/p/b.jpg", ""),
		rec(t, "/p/a.jpg", "2020:01:01 00:00:00+00:00"),
	}
	out := Apply(records, InferFromNeighbours(records))

	if out[0].CaptureTimeString() != "2020:01:01 00:01:00+00:00" {
		t.Fatalf("b.jpg = %s", out[0].CaptureTimeString())
	}
	if !out[1].Equal(records[1]) {
		t.Fatal("dated record changed")
	}
	if _, ok := records[0].CaptureTime(); ok {
		t.Fatal("input slice modified")
	}
}
