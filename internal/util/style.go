// BYZRA ⸻ internal/util/style.go
// terminal styles for tempora output, palette overrides and the spinner

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Palette maps output roles to colors. palette.toml may set any subset:
//
//	heading = "#FF5C00"
//	text    = "#C0C0C0"
//	muted   = "#444444"
//	value   = "#88AABB"
//	alert   = "#FF007F"
type Palette struct {
	Heading string `toml:"heading"`
	Text    string `toml:"text"`
	Muted   string `toml:"muted"`
	Value   string `toml:"value"`
	Alert   string `toml:"alert"`
}

func DefaultPalette() Palette {
	return Palette{
		Heading: "#FF5C00",
		Text:    "#C0C0C0",
		Muted:   "#444444",
		Value:   "#88AABB",
		Alert:   "#FF007F",
	}
}

// ╭─ STYLES ────────────────────────────────────╮
var (
	LBL lipgloss.Style // headings and command results
	NSH lipgloss.Style // field names, progress lines
	SHE lipgloss.Style // tagline
	SUB lipgloss.Style // hints, rule names, paths
	SEC lipgloss.Style // resolved values
	BRH lipgloss.Style // unresolved values and failures
	ORN lipgloss.Style // bullets

	Ornament string
	Divider  string
)

func init() {
	ApplyPalette(loadPalette())
}

// rebuilds every style from p
func ApplyPalette(p Palette) {
	LBL = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Heading)).Bold(true)
	NSH = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)).Bold(true)
	SHE = NSH.Underline(true)
	SUB = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))
	SEC = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Value)).Bold(true)
	BRH = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Alert)).Bold(true)
	ORN = SUB.Bold(true)

	Ornament = ORN.Render("›")
	Divider = SUB.Render(strings.Repeat("─", 48))
}

// first readable palette.toml over the defaults
func loadPalette() Palette {
	p := DefaultPalette()
	for _, path := range []string{
		"palette.toml",
		filepath.Join(os.Getenv("HOME"), ".tempora", "palette.toml"),
	} {
		if _, err := toml.DecodeFile(path, &p); err == nil {
			break
		}
	}
	return p
}

// ╭─ CAPTURE TIME STATES ───────────────────────╮

// how a record came by its capture time
type TimeState int

const (
	Undated TimeState = iota
	Dated
	Inferred
)

// capture time value in the color of its state; "" renders as unresolved
func RenderTime(value string, state TimeState) string {
	switch {
	case value == "" || state == Undated:
		return BRH.Render("unresolved")
	case state == Inferred:
		return SEC.Italic(true).Render(value) + SUB.Render(" (inferred)")
	}
	return SEC.Render(value)
}

// candidate marks in file reports
const (
	MarkChosen     = "✓"
	MarkAnchored   = "•"
	MarkNaive      = "?"
	MarkUnparsable = "x"
)

func RenderMark(mark string) string {
	if mark == MarkChosen {
		return BRH.Render(mark)
	}
	return ORN.Render(mark)
}

// ╭─ MOTION ────────────────────────────────────╮

// runs fn while a meter spinner ticks next to label
func SpinWhile(label string, fn func() (string, error)) (string, error) {
	type outcome struct {
		out string
		err error
	}
	result := make(chan outcome, 1)
	go func() {
		out, err := fn()
		result <- outcome{out, err}
	}()

	sp := spinner.Meter
	ticker := time.NewTicker(sp.FPS)
	defer ticker.Stop()

	for frame := 0; ; frame = (frame + 1) % len(sp.Frames) {
		select {
		case res := <-result:
			ClearLine()
			return res.out, res.err
		case <-ticker.C:
			fmt.Printf("\r%s %s", ORN.Render(sp.Frames[frame]), LBL.Render(label))
		}
	}
}

func ClearLine() {
	fmt.Print("\r\033[K")
}

// clears the screen and homes the cursor
func Wiper() {
	fmt.Print("\033[H\033[2J")
}
