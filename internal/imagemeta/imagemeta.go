package imagemeta

import (
	"io"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// dateLayouts are tried in order when parsing date strings found in EXIF
// fields or page metadata.
var dateLayouts = []string{
	"2006:01:02 15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"January 2, 2006",
	"January 2006",
	"2006",
}

// CaptureDate extracts the capture timestamp from the image's EXIF block.
// Missing or corrupt EXIF data is a normal condition, reported as ok=false.
func CaptureDate(r io.Reader) (time.Time, bool) {
	meta, err := exif.Decode(r)
	if err != nil {
		return time.Time{}, false
	}

	captured, err := meta.DateTime()
	if err != nil {
		return time.Time{}, false
	}

	return captured, true
}

// ParseDate parses a date string in any of the formats seen in image
// metadata and web page markup.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
