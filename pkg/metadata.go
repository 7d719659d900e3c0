package pkg

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"sort"
	"strconv"
	"strings"

	exifv3 "github.com/dsoprea/go-exif/v3"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
	_ "github.com/vegidio/heif-go" // Register HEIF/HEVC decoder
	_ "golang.org/x/image/bmp"     // Register BMP decoder
	_ "golang.org/x/image/tiff"    // Register TIFF decoder
	_ "golang.org/x/image/webp"    // Register WEBP decoder
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// MetadataReader turns the bytes of one file into embedded metadata tags.
type MetadataReader interface {
	Name() string
	ReadTags(r io.Reader) ([]Tag, error)
}

// Reader names accepted by NewMetadataReader.
const (
	ReaderGoexif   = "goexif"
	ReaderGoexifV3 = "goexif-v3"
)

// NewMetadataReader returns the EXIF reader registered under name.
func NewMetadataReader(name string) (MetadataReader, error) {
	switch name {
	case "", ReaderGoexif:
		return GoexifReader{}, nil
	case ReaderGoexifV3:
		return GoExifV3Reader{}, nil
	default:
		return nil, fmt.Errorf("unknown metadata reader %q", name)
	}
}

// GoexifReader reads EXIF, GPS, interoperability and maker note tags using goexif.
type GoexifReader struct{}

func (GoexifReader) Name() string { return ReaderGoexif }

type tagCollector struct {
	tags []Tag
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	fieldName := string(name)
	if strings.HasSuffix(fieldName, "IFDPointer") {
		return nil
	}
	c.tags = append(c.tags, Tag{
		Directory: goexifDirectory(fieldName),
		Name:      fieldName,
		Value:     goexifValue(tag),
	})
	return nil
}

func (r GoexifReader) ReadTags(rd io.Reader) ([]Tag, error) {
	x, err := exif.Decode(rd)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		if isGoexifNotFound(err) {
			return nil, ErrNoMetadata
		}
		return nil, fmt.Errorf("failed to decode EXIF data: %w", err)
	}

	c := &tagCollector{}
	if walkErr := x.Walk(c); walkErr != nil {
		return nil, fmt.Errorf("failed to walk EXIF tags: %w", walkErr)
	}
	// goexif keeps fields in a map; sort for a stable order.
	sort.SliceStable(c.tags, func(i, j int) bool {
		if c.tags[i].Directory != c.tags[j].Directory {
			return c.tags[i].Directory < c.tags[j].Directory
		}
		return c.tags[i].Name < c.tags[j].Name
	})
	return c.tags, nil
}

// isGoexifNotFound reports whether a goexif decode error means the file simply has
// no EXIF block: the APP1 scan ran off the end, or APP1 holds something other than EXIF.
func isGoexifNotFound(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return strings.Contains(err.Error(), "failed to find exif intro marker")
}

func goexifDirectory(fieldName string) string {
	switch {
	case strings.HasPrefix(fieldName, "GPS"):
		return "GPS"
	case strings.HasPrefix(fieldName, "Interoperability"):
		return "Interoperability"
	case strings.HasPrefix(fieldName, "Canon"), strings.HasPrefix(fieldName, "Nikon"):
		return "MakerNote"
	default:
		return "Exif"
	}
}

func goexifValue(tag *tiff.Tag) string {
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			return strings.TrimRight(s, "\x00")
		}
	}
	return tag.String()
}

// GoExifV3Reader reads EXIF with dsoprea/go-exif. Directories are IFD paths
// such as "IFD", "IFD/Exif" or "IFD/GPSInfo".
type GoExifV3Reader struct{}

func (GoExifV3Reader) Name() string { return ReaderGoexifV3 }

func (GoExifV3Reader) ReadTags(rd io.Reader) ([]Tag, error) {
	raw, err := exifv3.SearchAndExtractExifWithReader(rd)
	if err != nil {
		if errors.Is(err, exifv3.ErrNoExif) {
			return nil, ErrNoMetadata
		}
		return nil, fmt.Errorf("failed to locate EXIF block: %w", err)
	}

	entries, _, err := exifv3.GetFlatExifDataUniversalSearch(raw, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EXIF block: %w", err)
	}

	tags := make([]Tag, 0, len(entries))
	for _, e := range entries {
		if e.ChildIfdPath != "" {
			continue
		}
		value := e.FormattedFirst
		if s, ok := e.Value.(string); ok {
			value = s
		}
		tags = append(tags, Tag{Directory: e.IfdPath, Name: e.TagName, Value: value})
	}
	return tags, nil
}

// ImageHeaderReader reports the decoded format and pixel dimensions of an image.
type ImageHeaderReader struct{}

func (ImageHeaderReader) Name() string { return "image-header" }

func (ImageHeaderReader) ReadTags(rd io.Reader) ([]Tag, error) {
	cfg, format, err := image.DecodeConfig(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image config: %w", err)
	}
	return []Tag{
		{Directory: "Image", Name: "File Type", Value: strings.ToUpper(format)},
		{Directory: "Image", Name: "Image Width", Value: strconv.Itoa(cfg.Width)},
		{Directory: "Image", Name: "Image Height", Value: strconv.Itoa(cfg.Height)},
	}, nil
}

// headerlessExtensions are accepted image types with no registered header decoder.
var headerlessExtensions = []string{".avif", ".ico"}

// hasHeaderDecoder reports whether ImageHeaderReader is expected to understand fileName.
func hasHeaderDecoder(fileName string) bool {
	for _, ext := range headerlessExtensions {
		if strings.HasSuffix(fileName, ext) {
			return false
		}
	}
	return true
}

// GetImageResolution returns width and height as reported by tags produced by
// ImageHeaderReader. ok is false when either is missing.
func GetImageResolution(tags Tags) (width, height int, ok bool) {
	ws, okW := tags.Get("Image Width")
	hs, okH := tags.Get("Image Height")
	if !okW || !okH {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return w, h, true
}
