package pkg

import (
	"strings"
	"time"
)

// DateSource records which fallback produced a record's ResolvedDate.
type DateSource string

const (
	DateSourceNone         DateSource = ""
	DateSourceEXIF         DateSource = "EXIF"
	DateSourceCreationTime DateSource = "FileCreationTime"
	DateSourceModTime      DateSource = "FileModTime"
)

// Attributes holds filesystem-level facts. Any of them may be missing
// depending on platform and filesystem.
type Attributes struct {
	Size       *int64
	CreatedAt  *time.Time
	ModifiedAt *time.Time
	AccessedAt *time.Time
}

// Tag is one embedded metadata entry as reported by a MetadataReader.
type Tag struct {
	Directory string
	Name      string
	Value     string
}

// Tags is an insertion-ordered mapping from tag name to its textual value.
// The zero value is ready to use.
type Tags struct {
	names  []string
	values map[string]string
}

// Set stores value under name. It reports false and leaves the mapping untouched
// when name is already present: the first occurrence wins.
func (t *Tags) Set(name, value string) bool {
	if t.values == nil {
		t.values = make(map[string]string)
	}
	if _, exists := t.values[name]; exists {
		return false
	}
	t.names = append(t.names, name)
	t.values[name] = value
	return true
}

// Get returns the value stored under name.
func (t Tags) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Lookup finds a tag by canonical name, so "DateTimeOriginal",
// "Date/Time Original" and "date_time_original" all match.
func (t Tags) Lookup(name string) (string, bool) {
	want := CanonicalTagName(name)
	for _, n := range t.names {
		if CanonicalTagName(n) == want {
			return t.values[n], true
		}
	}
	return "", false
}

// Names returns tag names in insertion order.
func (t Tags) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of stored tags.
func (t Tags) Len() int { return len(t.names) }

// CanonicalTagName lower-cases name and strips spaces, slashes, underscores and dashes.
func CanonicalTagName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '/', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ImageRecord is one discovered image with its merged metadata.
type ImageRecord struct {
	SourcePath   string
	FileName     string
	Attributes   Attributes
	Tags         Tags
	ResolvedDate time.Time
	DateSource   DateSource
}

// Dated reports whether a usable timestamp was found for the record.
func (r ImageRecord) Dated() bool {
	return r.DateSource != DateSourceNone && !r.ResolvedDate.IsZero()
}
