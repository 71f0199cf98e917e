// BYZRA ⸻ internal/scan/detector.go
// media type detection by magic numbers, extension as fallback

package scan

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type FileType struct {
	Kind      string // "image", "video"
	Extension string // "jpg", "heic", etc
	MimeType  string // "image/jpeg", etc
}

func (ft FileType) IsMedia() bool {
	return ft.Kind == "image" || ft.Kind == "video"
}

func DetectFile(path string) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && ext[0] == '.' {
		ext = ext[1:]
	}

	// 1st magic numbers
	ft, err := detectByMagicNumbers(path)
	if err != nil {
		return FileType{}, err
	}
	if ft.Kind != "" {
		return ft, nil
	}

	// fallback to extension
	ft = detectByExtension(ext)
	if ft.Kind != "" {
		return ft, nil
	}

	return FileType{}, fmt.Errorf("unknown file type for %s", path)
}

// examines file headers to determine type
func detectByMagicNumbers(path string) (FileType, error) {
	file, err := os.Open(path)
	if err != nil {
		return FileType{}, err
	}
	defer file.Close()

	buffer := make([]byte, 16)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return FileType{}, err
	}
	return sniff(buffer[:n]), nil
}

func sniff(buffer []byte) FileType {
	// JPEG: FF D8 FF
	if bytes.HasPrefix(buffer, []byte{0xFF, 0xD8, 0xFF}) {
		return FileType{Kind: "image", Extension: "jpg", MimeType: "image/jpeg"}
	}

	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if bytes.HasPrefix(buffer, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		return FileType{Kind: "image", Extension: "png", MimeType: "image/png"}
	}

	// GIF: 47 49 46 38 (GIF8)
	if bytes.HasPrefix(buffer, []byte{0x47, 0x49, 0x46, 0x38}) {
		return FileType{Kind: "image", Extension: "gif", MimeType: "image/gif"}
	}

	// TIFF: II* or MM*, raw formats such as DNG share it
	if bytes.HasPrefix(buffer, []byte{0x49, 0x49, 0x2A, 0x00}) ||
		bytes.HasPrefix(buffer, []byte{0x4D, 0x4D, 0x00, 0x2A}) {
		return FileType{Kind: "image", Extension: "tiff", MimeType: "image/tiff"}
	}

	// RIFF containers: WEBP images, AVI videos
	if len(buffer) >= 12 && bytes.HasPrefix(buffer, []byte("RIFF")) {
		switch string(buffer[8:12]) {
		case "WEBP":
			return FileType{Kind: "image", Extension: "webp", MimeType: "image/webp"}
		case "AVI ":
			return FileType{Kind: "video", Extension: "avi", MimeType: "video/x-msvideo"}
		}
	}

	// ISO base media: ftyp box at offset 4, major brand after it
	if len(buffer) >= 12 && bytes.Equal(buffer[4:8], []byte("ftyp")) {
		return isoBrand(string(buffer[8:12]))
	}

	return FileType{}
}

func isoBrand(brand string) FileType {
	switch brand {
	case "heic", "heix", "heim", "heis", "mif1", "msf1":
		return FileType{Kind: "image", Extension: "heic", MimeType: "image/heic"}
	case "avif":
		return FileType{Kind: "image", Extension: "avif", MimeType: "image/avif"}
	case "qt  ":
		return FileType{Kind: "video", Extension: "mov", MimeType: "video/quicktime"}
	case "3gp4", "3gp5", "3gp6", "3g2a":
		return FileType{Kind: "video", Extension: "3gp", MimeType: "video/3gpp"}
	case "M4V ", "M4VH", "M4VP":
		return FileType{Kind: "video", Extension: "m4v", MimeType: "video/x-m4v"}
	}
	return FileType{Kind: "video", Extension: "mp4", MimeType: "video/mp4"}
}

// maps file extensions to types (fallback method)
func detectByExtension(ext string) FileType {
	switch ext {
	// image
	case "jpg", "jpeg":
		return FileType{Kind: "image", Extension: ext, MimeType: "image/jpeg"}
	case "png":
		return FileType{Kind: "image", Extension: ext, MimeType: "image/png"}
	case "gif":
		return FileType{Kind: "image", Extension: ext, MimeType: "image/gif"}
	case "tif", "tiff", "dng":
		return FileType{Kind: "image", Extension: ext, MimeType: "image/tiff"}
	case "heic", "heif":
		return FileType{Kind: "image", Extension: ext, MimeType: "image/heic"}
	case "webp":
		return FileType{Kind: "image", Extension: ext, MimeType: "image/webp"}

	// video
	case "mov":
		return FileType{Kind: "video", Extension: ext, MimeType: "video/quicktime"}
	case "mp4", "m4v":
		return FileType{Kind: "video", Extension: ext, MimeType: "video/mp4"}
	case "3gp":
		return FileType{Kind: "video", Extension: ext, MimeType: "video/3gpp"}
	case "avi":
		return FileType{Kind: "video", Extension: ext, MimeType: "video/x-msvideo"}
	}

	return FileType{} // unknown
}
