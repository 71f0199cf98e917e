// BYZRA ⸻ internal/resolve/sidecar.go
// companion files found through naming conventions

package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tempora/internal/config"
)

// Convention derives one candidate sidecar path from a media path.
type Convention struct {
	Name      string
	Candidate func(path string) string
}

// IMG_0001.HEIC -> IMG_0001.aae
func SameStem(suffix string) Convention {
	return Convention{
		Name: "stem" + suffix,
		Candidate: func(path string) string {
			return stem(path) + suffix
		},
	}
}

// IMG_0001.HEIC -> IMG_0001O.aae, written by iOS for edited photos
func StemWithLetter(letter, suffix string) Convention {
	return Convention{
		Name: "stem+" + letter + suffix,
		Candidate: func(path string) string {
			return stem(path) + letter + suffix
		},
	}
}

// IMG_0001.HEIC -> IMG_0001.HEIC.xmp
func Appended(suffix string) Convention {
	return Convention{
		Name: "appended" + suffix,
		Candidate: func(path string) string {
			return path + suffix
		},
	}
}

func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

type SidecarPolicy struct {
	Suffixes []string
	Letters  []string
	Appended []string
}

func SidecarPolicyFromConfig(c config.SidecarConfig) SidecarPolicy {
	return SidecarPolicy{
		Suffixes: append([]string{}, c.Suffixes...),
		Letters:  append([]string{}, c.Letters...),
		Appended: append([]string{}, c.Appended...),
	}
}

// stem conventions, then lettered ones, then appended
func (p SidecarPolicy) Conventions() []Convention {
	var out []Convention
	for _, suffix := range p.Suffixes {
		out = append(out, SameStem(suffix))
	}
	for _, letter := range p.Letters {
		for _, suffix := range p.Suffixes {
			out = append(out, StemWithLetter(letter, suffix))
		}
	}
	for _, suffix := range p.Appended {
		out = append(out, Appended(suffix))
	}
	return out
}

// Prober reports whether a regular file exists at path.
type Prober interface {
	Exists(path string) bool
}

type OSProber struct{}

func (OSProber) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ListingProber reads each directory once and answers from the listing.
// Names are compared exactly, so IMG_0001.aae and IMG_0001.AAE stay distinct
// even on case-insensitive file systems.
type ListingProber struct {
	mu   sync.Mutex
	dirs map[string]map[string]bool
}

func NewListingProber() *ListingProber {
	return &ListingProber{dirs: make(map[string]map[string]bool)}
}

func (p *ListingProber) Exists(path string) bool {
	dir, name := filepath.Split(path)
	dir = filepath.Clean(dir)

	p.mu.Lock()
	defer p.mu.Unlock()

	files, ok := p.dirs[dir]
	if !ok {
		files = listRegular(dir)
		p.dirs[dir] = files
	}
	return files[name]
}

// unreadable directories list as empty
func listRegular(dir string) map[string]bool {
	files := make(map[string]bool)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return files
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			files[e.Name()] = true
		}
	}
	return files
}

type SidecarResolver struct {
	conventions []Convention
	prober      Prober
}

// nil prober means OSProber
func NewSidecarResolver(prober Prober, conventions ...Convention) *SidecarResolver {
	if prober == nil {
		prober = OSProber{}
	}
	return &SidecarResolver{
		conventions: append([]Convention{}, conventions...),
		prober:      prober,
	}
}

// first existing candidate; the media file itself never counts
func (r *SidecarResolver) Resolve(path string) (string, bool) {
	for _, c := range r.conventions {
		candidate := c.Candidate(path)
		if candidate == "" || candidate == path {
			continue
		}
		if r.prober.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *SidecarResolver) Conventions() []Convention {
	return append([]Convention{}, r.conventions...)
}
