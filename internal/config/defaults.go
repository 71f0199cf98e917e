// BYZRA ⸻ internal/config/defaults.go
// default resolution policy

package config

import (
	"os"
	"path/filepath"
)

// capture-family tags first; File:FileModifyDate last since re-encodes and syncs rewrite it
var DefaultDateTags = []string{
	"EXIF:DateTimeOriginal",
	"ExifIFD:DateTimeOriginal",
	"QuickTime:DateTimeOriginal",
	"XMP:DateTimeOriginal",
	"EXIF:CreateDate",
	"ExifIFD:CreateDate",
	"QuickTime:CreateDate",
	"QuickTime:CreationDate",
	"Keys:CreationDate",
	"QuickTime:MediaCreateDate",
	"PNG:CreateDate",
	"XMP:CreateDate",
	"XMP:DateCreated",
	"XMP-photoshop:DateCreated",
	"File:FileModifyDate",
}

// returns default config values
func Default() *Config {
	cfg := &Config{}

	cfg.Dates.Tags = append([]string{}, DefaultDateTags...)
	cfg.Dates.OffsetTags = map[string]string{
		"EXIF:DateTimeOriginal":    "EXIF:OffsetTimeOriginal",
		"EXIF:CreateDate":          "EXIF:OffsetTimeDigitized",
		"EXIF:ModifyDate":          "EXIF:OffsetTime",
		"ExifIFD:DateTimeOriginal": "ExifIFD:OffsetTimeOriginal",
		"ExifIFD:CreateDate":       "ExifIFD:OffsetTimeDigitized",
		"ExifIFD:ModifyDate":       "ExifIFD:OffsetTime",
	}
	cfg.Dates.UTCTags = []string{
		"QuickTime:CreateDate",
		"QuickTime:ModifyDate",
		"QuickTime:MediaCreateDate",
		"QuickTime:TrackCreateDate",
	}
	cfg.Dates.TimeZoneTags = []string{
		"EXIF:TimeZoneOffset",
		"MakerNotes:TimeZone",
	}
	cfg.Dates.UseGPS = true

	cfg.Source.Namespaces = []string{"EXIF", "IFD0", "QuickTime", "Keys", "XMP", "XMP-tiff", "MakerNotes"}

	cfg.Sidecar.Suffixes = []string{".aae", ".AAE"}
	cfg.Sidecar.Letters = []string{"O"}
	cfg.Sidecar.Appended = []string{".xmp"}

	cfg.Scan.SkipExtensions = []string{".aae", ".ds_store", ".json", ".xmp"}
	cfg.Scan.ExcludeDirs = []string{".git", ".thumbnails", "@eaDir"}

	cfg.Batch.Workers = 4

	cfg.Watch.Paths = []string{
		filepath.Join(os.Getenv("HOME"), "Pictures"),
	}
	cfg.Watch.Recursive = true
	cfg.Watch.MinFileAgeSeconds = 2
	cfg.Watch.LogLevel = "info"

	cfg.Filter.Extensions = []string{
		".jpg", ".jpeg", ".heic", ".png", ".gif", ".tif", ".tiff", ".webp", ".dng",
		".mov", ".mp4", ".m4v", ".3gp", ".avi",
	}

	cfg.Store.Path = filepath.Join(Dir(), "records.db")
	cfg.Store.LogDir = filepath.Join(Dir(), "logs")

	return cfg
}
