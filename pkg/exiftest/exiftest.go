// Package exiftest builds small JPEG files carrying an EXIF block, for tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// EXIF tag ids and TIFF field types used by the builder.
const (
	tagMake              = 0x010F
	tagExifIFDPointer    = 0x8769
	tagDateTimeOriginal  = 0x9003
	tagDateTimeDigitized = 0x9004
	tagUserComment       = 0x9286

	typeASCII     = 2
	typeLong      = 4
	typeUndefined = 7
)

// Options describes what goes into the generated file.
type Options struct {
	Width, Height     int
	Color             color.Color
	Make              string
	DateTimeOriginal  string
	DateTimeDigitized string
	UserComment       string
}

// ExifDate formats t the way cameras write EXIF datetimes.
func ExifDate(t time.Time) string {
	return t.Format("2006:01:02 15:04:05")
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

func ascii(tag uint16, s string) entry {
	v := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(v)), value: v}
}

func long(tag uint16, n uint32) entry {
	v := make([]byte, 4)
	binary.LittleEndian.PutUint32(v, n)
	return entry{tag: tag, typ: typeLong, count: 1, value: v}
}

// encodeIFD lays out one IFD at offset, followed by its out-of-line values.
func encodeIFD(entries []entry, offset uint32) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	dataOffset := offset + 2 + uint32(len(entries))*12 + 4
	var data bytes.Buffer

	binary.Write(&buf, le, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, le, e.tag)
		binary.Write(&buf, le, e.typ)
		binary.Write(&buf, le, e.count)
		if len(e.value) <= 4 {
			field := make([]byte, 4)
			copy(field, e.value)
			buf.Write(field)
			continue
		}
		binary.Write(&buf, le, dataOffset+uint32(data.Len()))
		data.Write(e.value)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	binary.Write(&buf, le, uint32(0))
	buf.Write(data.Bytes())
	return buf.Bytes()
}

// TIFF returns a little-endian TIFF structure with IFD0 and an Exif sub-IFD.
func TIFF(opts Options) []byte {
	var exifEntries []entry
	if opts.DateTimeOriginal != "" {
		exifEntries = append(exifEntries, ascii(tagDateTimeOriginal, opts.DateTimeOriginal))
	}
	if opts.DateTimeDigitized != "" {
		exifEntries = append(exifEntries, ascii(tagDateTimeDigitized, opts.DateTimeDigitized))
	}
	if opts.UserComment != "" {
		v := append([]byte("ASCII\x00\x00\x00"), []byte(opts.UserComment)...)
		exifEntries = append(exifEntries, entry{tag: tagUserComment, typ: typeUndefined, count: uint32(len(v)), value: v})
	}

	ifd0 := func(exifOffset uint32) []entry {
		var es []entry
		if opts.Make != "" {
			es = append(es, ascii(tagMake, opts.Make))
		}
		if len(exifEntries) > 0 {
			es = append(es, long(tagExifIFDPointer, exifOffset))
		}
		return es
	}

	const ifd0Offset = 8
	exifOffset := ifd0Offset + uint32(len(encodeIFD(ifd0(0), ifd0Offset)))

	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(ifd0Offset))
	buf.Write(encodeIFD(ifd0(exifOffset), ifd0Offset))
	if len(exifEntries) > 0 {
		buf.Write(encodeIFD(exifEntries, exifOffset))
	}
	return buf.Bytes()
}

// JPEG returns a decodable JPEG with an APP1 EXIF segment right after SOI.
func JPEG(opts Options) ([]byte, error) {
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = 8
	}
	if h == 0 {
		h = 8
	}
	c := opts.Color
	if c == nil {
		c = color.RGBA{100, 200, 200, 255}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var encoded bytes.Buffer
	if err := jpeg.Encode(&encoded, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	raw := encoded.Bytes()

	payload := append([]byte("Exif\x00\x00"), TIFF(opts)...)
	var out bytes.Buffer
	out.Write(raw[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(raw[2:])
	return out.Bytes(), nil
}

// WriteJPEG writes a JPEG built from opts to dir/name and returns its path.
func WriteJPEG(t testing.TB, dir, name string, opts Options) string {
	t.Helper()
	data, err := JPEG(opts)
	if err != nil {
		t.Fatalf("Failed to build JPEG %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write JPEG %s: %v", path, err)
	}
	return path
}
