package pkg

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoExifDate is returned when no usable date-taken tag is present.
var ErrNoExifDate = errors.New("no EXIF date tag found")

// ErrNoTimestamp is returned when neither embedded tags nor filesystem attributes
// provide a timestamp.
var ErrNoTimestamp = errors.New("no usable timestamp found")

// DateTakenTags are consulted in order when looking for the capture date.
var DateTakenTags = []string{"DateTimeOriginal", "DateTimeDigitized"}

var exifDateLayouts = []string{
	"2006:01:02 15:04:05",
	"2006:01:02",
	time.RFC3339,
}

// ParseExifDateTime parses an EXIF datetime string. It handles "YYYY:MM:DD HH:MM:SS",
// the date-only "YYYY:MM:DD" form and RFC 3339, after trimming NUL padding and quotes.
// EXIF datetimes carry no zone; they are read as local wall clock, the same clock
// filesystem timestamps are reported in.
func ParseExifDateTime(value string) (time.Time, error) {
	s := strings.Trim(strings.TrimRight(value, "\x00"), "\" ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty EXIF date string")
	}
	var firstErr error
	for _, layout := range exifDateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse EXIF date string '%s': %w", s, firstErr)
}

// DateTaken returns the first parseable date-taken tag.
func DateTaken(tags Tags) (time.Time, error) {
	var parseErr error
	for _, name := range DateTakenTags {
		v, ok := tags.Lookup(name)
		if !ok {
			continue
		}
		t, err := ParseExifDateTime(v)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	if parseErr != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoExifDate, parseErr)
	}
	return time.Time{}, ErrNoExifDate
}

// ResolveDate applies the fallback policy: embedded date taken, then filesystem
// creation time, then filesystem modification time.
func ResolveDate(tags Tags, attrs Attributes) (time.Time, DateSource, error) {
	if t, err := DateTaken(tags); err == nil {
		return t, DateSourceEXIF, nil
	}
	if attrs.CreatedAt != nil && !attrs.CreatedAt.IsZero() {
		return *attrs.CreatedAt, DateSourceCreationTime, nil
	}
	if attrs.ModifiedAt != nil && !attrs.ModifiedAt.IsZero() {
		return *attrs.ModifiedAt, DateSourceModTime, nil
	}
	return time.Time{}, DateSourceNone, ErrNoTimestamp
}
