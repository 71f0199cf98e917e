// BYZRA ⸻ internal/enrich/neighbours.go
// capture times guessed from the files around an undated one

package enrich

import (
	"sort"
	"time"

	"github.com/maruel/natural"

	"tempora/internal/media"
)

// gap added per position between an undated file and its dated neighbour
const Step = time.Minute

// Inference is a new record derived from an undated one.
type Inference struct {
	Original media.Record
	Inferred media.Record

	// neighbour the time came from; Distance > 0 when it precedes the
	// undated file, < 0 when it follows it
	From     string
	Distance int
}

// InferFromNeighbours walks the records in natural file name order. An undated
// record k positions after the nearest dated one gets its time plus k steps;
// without an earlier dated record, the nearest later one minus k steps is used.
// Only tag-derived times are used as anchors, never other inferences.
func InferFromNeighbours(records []media.Record) []Inference {
	ordered := append([]media.Record{}, records...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return natural.Less(ordered[i].FilePath(), ordered[j].FilePath())
	})

	var out []Inference
	for i, rec := range ordered {
		if _, ok := rec.CaptureTime(); ok {
			continue
		}
		if inf, ok := infer(ordered, i); ok {
			out = append(out, inf)
		}
	}
	return out
}

func infer(ordered []media.Record, i int) (Inference, bool) {
	for k := 1; i-k >= 0; k++ {
		if t, ok := ordered[i-k].CaptureTime(); ok {
			return Inference{
				Original: ordered[i],
				Inferred: ordered[i].WithCaptureTime(t.Add(time.Duration(k) * Step)),
				From:     ordered[i-k].FilePath(),
				Distance: k,
			}, true
		}
	}
	for k := 1; i+k < len(ordered); k++ {
		if t, ok := ordered[i+k].CaptureTime(); ok {
			return Inference{
				Original: ordered[i],
				Inferred: ordered[i].WithCaptureTime(t.Add(-time.Duration(k) * Step)),
				From:     ordered[i+k].FilePath(),
				Distance: -k,
			}, true
		}
	}
	return Inference{}, false
}

// Apply returns records with every inferred record in place of its original.
// records itself is left untouched.
func Apply(records []media.Record, inferences []Inference) []media.Record {
	byPath := make(map[string]media.Record, len(inferences))
	for _, inf := range inferences {
		byPath[inf.Original.FilePath()] = inf.Inferred
	}

	out := make([]media.Record, len(records))
	for i, rec := range records {
		if inferred, ok := byPath[rec.FilePath()]; ok {
			out[i] = inferred
			continue
		}
		out[i] = rec
	}
	return out
}
