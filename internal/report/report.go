// BYZRA ⸻ internal/report/report.go
// format resolution reports for a single file and for batches

package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"

	"tempora/internal/enrich"
	"tempora/internal/media"
	"tempora/internal/resolve"
	"tempora/internal/tags"
	"tempora/internal/util"
)

// how one file was resolved, candidate by candidate
type FileReport struct {
	Path       string
	Record     media.Record
	Candidates []resolve.Candidate
	Rules      []string
	Source     resolve.Classification
	HasSource  bool
}

// resolves d and keeps the intermediate decisions
func Explain(e *resolve.Engine, d tags.Dictionary) (*FileReport, error) {
	rec, err := e.Resolve(d)
	if err != nil {
		return nil, err
	}

	r := &FileReport{
		Path:       rec.FilePath(),
		Record:     rec,
		Candidates: e.Dates.Candidates(d),
		Rules:      e.Dates.Rules(),
	}
	r.Source, r.HasSource = e.Sources.Classify(d, r.Path)
	return r, nil
}

func GenerateReport(r *FileReport) string {
	var sb strings.Builder

	// info header
	sb.WriteString(util.NSH.Render(fmt.Sprintf("File: %s", r.Path)) + "\n")
	sb.WriteString(util.SUB.Render("Offset rules: "+strings.Join(r.Rules, " → ")) + "\n\n")

	if len(r.Candidates) == 0 {
		sb.WriteString(util.LBL.Render("[!] No date tags found") + "\n")
	} else {
		sb.WriteString(util.LBL.Render("Date candidates:") + "\n")
		chosen, hasTime := r.Record.CaptureTime()
		for _, c := range r.Candidates {
			sb.WriteString(candidateLine(c, chosen, hasTime))
		}
	}
	sb.WriteString("\n")

	state := util.Undated
	if _, ok := r.Record.CaptureTime(); ok {
		state = util.Dated
	}
	sb.WriteString(fmt.Sprintf(" %s %s %s\n", util.Ornament, util.NSH.Render("Capture time:"),
		util.RenderTime(r.Record.CaptureTimeString(), state)))

	if r.HasSource {
		sb.WriteString(fmt.Sprintf(" %s %s %s %s\n", util.Ornament, util.NSH.Render("Source:"),
			util.SEC.Render(r.Source.Label), util.SUB.Render("("+r.Source.Via+")")))
	} else {
		sb.WriteString(fmt.Sprintf(" %s %s %s\n", util.Ornament, util.NSH.Render("Source:"), util.SUB.Render("unknown")))
	}

	if sidecar, ok := r.Record.SidecarPath(); ok {
		sb.WriteString(fmt.Sprintf(" %s %s %s\n", util.Ornament, util.NSH.Render("Sidecar:"), sidecar))
	} else {
		sb.WriteString(fmt.Sprintf(" %s %s %s\n", util.Ornament, util.NSH.Render("Sidecar:"), util.SUB.Render("none")))
	}

	return sb.String()
}

func candidateLine(c resolve.Candidate, chosen time.Time, hasTime bool) string {
	switch {
	case c.Err != nil:
		return fmt.Sprintf(" %s %s: %s %s\n", util.RenderMark(util.MarkUnparsable), util.NSH.Render(c.Tag), c.Raw,
			util.SUB.Render("(unparseable)"))
	case !c.Resolved:
		return fmt.Sprintf(" %s %s: %s %s\n", util.RenderMark(util.MarkNaive), util.NSH.Render(c.Tag), c.Raw,
			util.SUB.Render("(no offset)"))
	}

	mark := util.MarkAnchored
	if hasTime && c.Time.Equal(chosen) {
		mark = util.MarkChosen
	}
	return fmt.Sprintf(" %s %s: %s → %s %s\n", util.RenderMark(mark), util.NSH.Render(c.Tag), c.Raw,
		media.FormatTime(c.Time), util.SUB.Render("("+c.Rule+")"))
}

// creates a machine-readable report
func GenerateSimplifiedReport(r *FileReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("file: %s\n", r.Path))
	for _, c := range r.Candidates {
		switch {
		case c.Err != nil:
			sb.WriteString(fmt.Sprintf("candidate:%s: %s invalid\n", c.Tag, c.Raw))
		case !c.Resolved:
			sb.WriteString(fmt.Sprintf("candidate:%s: %s naive\n", c.Tag, c.Raw))
		default:
			sb.WriteString(fmt.Sprintf("candidate:%s: %s %s\n", c.Tag, media.FormatTime(c.Time), c.Rule))
		}
	}
	sb.WriteString(fmt.Sprintf("capture_time: %s\n", r.Record.CaptureTimeString()))
	if r.HasSource {
		sb.WriteString(fmt.Sprintf("source: %s\n", r.Source.Label))
		sb.WriteString(fmt.Sprintf("source_via: %s\n", r.Source.Via))
	} else {
		sb.WriteString("source: \n")
	}
	sidecar, _ := r.Record.SidecarPath()
	sb.WriteString(fmt.Sprintf("sidecar: %s\n", sidecar))

	return sb.String()
}

// ╭─ BATCH SUMMARY ─────────────────────────────╮

type Summary struct {
	Total       int
	Dated       int
	WithSource  int
	WithSidecar int
	Inferred    int
	Skipped     int
	Failed      int
	Earliest    time.Time
	Latest      time.Time
	Sources     map[string]int
	Failures    []string
}

// counts what a batch resolved; inferences may be nil
func Summarize(batch *resolve.Batch, inferences []enrich.Inference) Summary {
	s := Summary{
		Total:    len(batch.Records) + len(batch.Failures) + len(batch.Skipped),
		Skipped:  len(batch.Skipped),
		Failed:   len(batch.Failures),
		Inferred: len(inferences),
		Sources:  make(map[string]int),
	}

	for _, rec := range batch.Records {
		if t, ok := rec.CaptureTime(); ok {
			s.Dated++
			if s.Earliest.IsZero() || t.Before(s.Earliest) {
				s.Earliest = t
			}
			if t.After(s.Latest) {
				s.Latest = t
			}
		}
		if label, ok := rec.Source(); ok {
			s.WithSource++
			s.Sources[label]++
		}
		if _, ok := rec.SidecarPath(); ok {
			s.WithSidecar++
		}
	}

	for _, f := range batch.Failures {
		s.Failures = append(s.Failures, f.Error())
	}
	return s
}

func GenerateSummary(s Summary) string {
	var sb strings.Builder

	resolved := s.Total - s.Skipped - s.Failed
	sb.WriteString(util.LBL.Render(fmt.Sprintf("Resolved %d of %d files", resolved, s.Total)) + "\n")
	sb.WriteString(util.Divider + "\n")

	sb.WriteString(fmt.Sprintf(" %s %s %d\n", util.Ornament, util.NSH.Render("With capture time:"), s.Dated))
	if s.Inferred > 0 {
		sb.WriteString(fmt.Sprintf(" %s %s %d\n", util.Ornament, util.NSH.Render("Inferred from neighbours:"), s.Inferred))
	}
	sb.WriteString(fmt.Sprintf(" %s %s %d\n", util.Ornament, util.NSH.Render("With source:"), s.WithSource))
	sb.WriteString(fmt.Sprintf(" %s %s %d\n", util.Ornament, util.NSH.Render("With sidecar:"), s.WithSidecar))
	if s.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(" %s %s %d\n", util.Ornament, util.NSH.Render("Skipped companions:"), s.Skipped))
	}

	if s.Dated > 0 {
		sb.WriteString(fmt.Sprintf(" %s %s %s → %s\n", util.Ornament, util.NSH.Render("Span:"),
			media.FormatTime(s.Earliest), media.FormatTime(s.Latest)))
	}

	if len(s.Sources) > 0 {
		sb.WriteString("\n" + util.LBL.Render("Sources:") + "\n")
		labels := make([]string, 0, len(s.Sources))
		for label := range s.Sources {
			labels = append(labels, label)
		}
		// most frequent first, ties in natural order
		sort.Slice(labels, func(i, j int) bool {
			a, b := s.Sources[labels[i]], s.Sources[labels[j]]
			if a != b {
				return a > b
			}
			return natural.Less(labels[i], labels[j])
		})
		for _, label := range labels {
			sb.WriteString(fmt.Sprintf(" %s %s: %d\n", util.ORN.Render("•"), util.NSH.Render(label), s.Sources[label]))
		}
	}

	if len(s.Failures) > 0 {
		sb.WriteString("\n" + util.BRH.Render(fmt.Sprintf("[!] %d files could not be resolved:", s.Failed)) + "\n")
		for _, f := range s.Failures {
			sb.WriteString(fmt.Sprintf(" %s %s\n", util.ORN.Render("!"), f))
		}
	}

	return sb.String()
}
