// BYZRA ⸻ internal/scan/native.go
// in-process EXIF reader for JPEG/TIFF when exiftool is not installed

package scan

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"tempora/internal/tags"
)

// exif field -> exiftool family 0 key
var nativeFields = []struct {
	field exif.FieldName
	key   string
}{
	{exif.DateTimeOriginal, "EXIF:DateTimeOriginal"},
	{exif.DateTimeDigitized, "EXIF:CreateDate"},
	{exif.DateTime, "EXIF:ModifyDate"},
	{exif.Make, "EXIF:Make"},
	{exif.Model, "EXIF:Model"},
	{exif.Software, "EXIF:Software"},
	{offsetTimeOriginal, "EXIF:OffsetTimeOriginal"},
	{offsetTimeDigitized, "EXIF:OffsetTimeDigitized"},
	{offsetTime, "EXIF:OffsetTime"},
}

// EXIF 2.31 offset tags, unknown to goexif's field tables
const (
	offsetTime          exif.FieldName = "OffsetTime"
	offsetTimeOriginal  exif.FieldName = "OffsetTimeOriginal"
	offsetTimeDigitized exif.FieldName = "OffsetTimeDigitized"
)

var offsetFields = map[uint16]exif.FieldName{
	0x9010: offsetTime,
	0x9011: offsetTimeOriginal,
	0x9012: offsetTimeDigitized,
}

// decodes the Exif sub-IFD a second time, keeping only the offset tags
func loadOffsetTags(x *exif.Exif) error {
	ptr, err := x.Get(exif.ExifIFDPointer)
	if err != nil {
		return nil
	}
	offset, err := ptr.Int64(0)
	if err != nil {
		return nil
	}

	r := bytes.NewReader(x.Raw)
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to Exif sub-IFD: %w", err)
	}
	dir, _, err := tiff.DecodeDir(r, x.Tiff.Order)
	if err != nil {
		return fmt.Errorf("failed to decode Exif sub-IFD: %w", err)
	}
	x.LoadTags(dir, offsetFields, false)
	return nil
}

// ReadEXIF builds a dictionary with the subset of tags the resolvers use.
// Keys follow exiftool's group names so both sources resolve the same way.
func ReadEXIF(path string) (tags.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	d := tags.Dictionary{tags.SourceFileKey: path}
	if info, err := f.Stat(); err == nil {
		d["File:FileModifyDate"] = info.ModTime().Format("2006:01:02 15:04:05-07:00")
	}

	x, err := exif.Decode(f)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		// files without EXIF still resolve through the file date and detectors
		return d, nil
	}
	// a broken sub-IFD only loses the offsets
	_ = loadOffsetTags(x)

	for _, nf := range nativeFields {
		tag, err := x.Get(nf.field)
		if err != nil {
			continue
		}
		if val, err := tag.StringVal(); err == nil {
			if val = strings.TrimRight(strings.TrimSpace(val), "\x00"); val != "" {
				d[nf.key] = val
			}
		}
	}

	if lat, lng, err := x.LatLong(); err == nil {
		d["Composite:GPSLatitude"] = strconv.FormatFloat(lat, 'f', -1, 64)
		d["Composite:GPSLongitude"] = strconv.FormatFloat(lng, 'f', -1, 64)
	}

	return d, nil
}

// NativeExtractor reads files with ReadEXIF and has the same shape as the exiftool wrapper.
type NativeExtractor struct{}

func (NativeExtractor) Extract(paths ...string) ([]tags.Dictionary, []error) {
	var dicts []tags.Dictionary
	var errs []error
	for _, path := range paths {
		d, err := ReadEXIF(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read metadata of %s: %w", path, err))
			continue
		}
		dicts = append(dicts, d)
	}
	return dicts, errs
}

func (NativeExtractor) Close() error {
	return nil
}
