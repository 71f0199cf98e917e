// BYZRA ⸻ internal/config/config.go
// config loading & management

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const fileName = "tempora.toml"

// ErrNotFound is returned by Load when no config file exists in the search paths.
var ErrNotFound = errors.New(fileName + " not found in search paths")

type Config struct {
	Dates   DatesConfig   `toml:"dates"`
	Source  SourceConfig  `toml:"source"`
	Sidecar SidecarConfig `toml:"sidecar"`
	Scan    ScanConfig    `toml:"scan"`
	Batch   BatchConfig   `toml:"batch"`
	Watch   WatchConfig   `toml:"watch"`
	Filter  FilterConfig  `toml:"filter"`
	Store   StoreConfig   `toml:"store"`
}

// date candidate policy, most trustworthy tag first
type DatesConfig struct {
	Tags         []string          `toml:"tags"`
	OffsetTags   map[string]string `toml:"offset_tags"`
	UTCTags      []string          `toml:"utc_tags"`
	TimeZoneTags []string          `toml:"timezone_tags"`
	UseGPS       bool              `toml:"use_gps"`
}

type SourceConfig struct {
	// preferred namespaces when several Make/Model tags disagree
	Namespaces []string `toml:"namespaces"`

	// optional Lua file with extra detectors, appended after the built-in ones
	DetectorsScript string `toml:"detectors_script"`
}

type SidecarConfig struct {
	Suffixes []string `toml:"suffixes"`
	Letters  []string `toml:"letters"`
	Appended []string `toml:"appended"`
}

type ScanConfig struct {
	SkipExtensions []string `toml:"skip_extensions"`
	ExcludeDirs    []string `toml:"exclude_dirs"`
}

type BatchConfig struct {
	Workers int `toml:"workers"`
}

// config for daemon mode
type WatchConfig struct {
	Paths             []string `toml:"paths"`
	Recursive         bool     `toml:"recursive"`
	MinFileAgeSeconds int      `toml:"min_file_age_seconds"`
	LogLevel          string   `toml:"log_level"`
}

type FilterConfig struct {
	Extensions []string `toml:"extensions"`
}

type StoreConfig struct {
	// record store used by the daemon; .db/.sqlite selects SQLite
	Path   string `toml:"path"`
	LogDir string `toml:"log_dir"`
}

// search common locations; a missing file is ErrNotFound, a broken one is an error
func Load() (*Config, error) {
	paths := []string{
		filepath.Join("config", fileName),
		"./" + fileName,
		filepath.Join(Dir(), "config", fileName),
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return nil, ErrNotFound
}

// decodes path on top of the defaults, so partial files are fine
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// filter out commented paths
	var activePaths []string
	for _, p := range cfg.Watch.Paths {
		if len(p) > 0 && p[0] != '#' {
			activePaths = append(activePaths, expandHome(p))
		}
	}
	cfg.Watch.Paths = activePaths
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Store.LogDir = expandHome(cfg.Store.LogDir)
	cfg.Source.DetectorsScript = expandHome(cfg.Source.DetectorsScript)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Load, falling back to defaults when nothing is on disk
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if len(c.Dates.Tags) == 0 {
		return errors.New("dates.tags must list at least one tag")
	}
	for _, tag := range c.Dates.Tags {
		if strings.TrimSpace(tag) == "" {
			return errors.New("dates.tags contains an empty tag name")
		}
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}
	for _, suffix := range append(append([]string{}, c.Sidecar.Suffixes...), c.Sidecar.Appended...) {
		if !strings.HasPrefix(suffix, ".") || len(suffix) < 2 {
			return fmt.Errorf("sidecar suffix %q must start with a dot", suffix)
		}
	}
	for _, letter := range c.Sidecar.Letters {
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
			return fmt.Errorf("sidecar letter %q must be a single uppercase letter", letter)
		}
	}
	if c.Watch.MinFileAgeSeconds < 0 {
		return errors.New("watch.min_file_age_seconds cannot be negative")
	}
	return nil
}

// saves the configuration to a file
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// ~/.tempora
func Dir() string {
	return filepath.Join(os.Getenv("HOME"), ".tempora")
}

// config directory exists
func SetupConfigDir() (string, error) {
	configDir := filepath.Join(Dir(), "config")
	err := os.MkdirAll(configDir, 0755)
	return configDir, err
}

func expandHome(path string) string {
	if path == "~" {
		return os.Getenv("HOME")
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(os.Getenv("HOME"), path[2:])
	}
	return path
}
