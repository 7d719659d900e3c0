package pkg_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/photosort/pkg"
)

// createScanTestDir lays out files under baseDir. nil content means directory.
func createScanTestDir(t *testing.T, baseDir string, structure map[string][]byte) {
	t.Helper()
	for path, content := range structure {
		fullPath := filepath.Join(baseDir, path)
		if content == nil {
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", filepath.Dir(fullPath), err)
		}
		if err := os.WriteFile(fullPath, content, 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", fullPath, err)
		}
	}
}

func realDir(t *testing.T, dir string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func TestScanSourceDirectory(t *testing.T) {
	tests := []struct {
		name          string
		structure     map[string][]byte
		extensions    []string
		expectedFiles []string // relative, in expected order
	}{
		{
			name: "valid directory with images and non-images",
			structure: map[string][]byte{
				"img1.jpg":           []byte("fake jpg"),
				"img2.png":           []byte("fake png"),
				"doc.txt":            []byte("text file"),
				"subDir/img3.jpeg":   []byte("fake jpeg"),
				"subDir/another.doc": []byte("another text"),
				"subDir/emptyDir":    nil,
			},
			expectedFiles: []string{"img1.jpg", "img2.png", "subDir/img3.jpeg"},
		},
		{
			name: "every recognized extension",
			structure: map[string][]byte{
				"a.jpg": {1}, "b.jpeg": {1}, "c.png": {1}, "d.gif": {1}, "e.bmp": {1},
				"f.webp": {1}, "g.tiff": {1}, "h.tif": {1}, "i.avif": {1}, "j.ico": {1},
			},
			expectedFiles: []string{"a.jpg", "b.jpeg", "c.png", "d.gif", "e.bmp", "f.webp", "g.tiff", "h.tif", "i.avif", "j.ico"},
		},
		{
			name: "svg and upper case suffixes are ignored",
			structure: map[string][]byte{
				"vector.svg": []byte("<svg/>"),
				"LOUD.JPG":   []byte("fake"),
				"quiet.jpg":  []byte("fake"),
			},
			expectedFiles: []string{"quiet.jpg"},
		},
		{
			name:          "empty source directory",
			structure:     map[string][]byte{},
			expectedFiles: []string{},
		},
		{
			name: "directory with only empty subdirectories",
			structure: map[string][]byte{
				"empty1":        nil,
				"empty2/empty3": nil,
			},
			expectedFiles: []string{},
		},
		{
			name: "natural ordering",
			structure: map[string][]byte{
				"img10.jpg": {1},
				"img2.jpg":  {1},
				"img1.jpg":  {1},
			},
			expectedFiles: []string{"img1.jpg", "img2.jpg", "img10.jpg"},
		},
		{
			name: "custom extension set",
			structure: map[string][]byte{
				"a.jpg":  {1},
				"b.heic": {1},
			},
			extensions:    []string{".heic"},
			expectedFiles: []string{"b.heic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			createScanTestDir(t, tmpDir, tt.structure)
			log, _ := test.NewNullLogger()

			files, err := pkg.ScanSourceDirectory(tmpDir, tt.extensions, log)
			require.NoError(t, err)
			require.NotNil(t, files)

			root := realDir(t, tmpDir)
			expected := make([]string, len(tt.expectedFiles))
			for i, f := range tt.expectedFiles {
				expected[i] = filepath.Join(root, f)
			}
			assert.Equal(t, expected, files)
		})
	}
}

func TestScanSourceDirectory_SkipsSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	outside := t.TempDir()
	createScanTestDir(t, tmpDir, map[string][]byte{"real.jpg": []byte("fake")})
	createScanTestDir(t, outside, map[string][]byte{"elsewhere.jpg": []byte("fake")})

	if err := os.Symlink(filepath.Join(tmpDir, "real.jpg"), filepath.Join(tmpDir, "link.jpg")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(outside, filepath.Join(tmpDir, "linkdir")))

	log, _ := test.NewNullLogger()
	files, err := pkg.ScanSourceDirectory(tmpDir, nil, log)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(realDir(t, tmpDir), "real.jpg")}, files)
}

func TestScanSourceDirectory_DirectoryAccessError(t *testing.T) {
	tmpDir := t.TempDir()
	notADir := filepath.Join(tmpDir, "file.jpg")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"non-existent source directory", filepath.Join(tmpDir, "non_existent_dir")},
		{"source is a file", notADir},
		{"empty path", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := test.NewNullLogger()
			files, err := pkg.ScanSourceDirectory(tt.path, nil, log)
			require.Error(t, err)
			assert.Nil(t, files)

			var dirErr *pkg.DirectoryAccessError
			require.True(t, errors.As(err, &dirErr), "expected DirectoryAccessError, got %T", err)
			assert.Equal(t, tt.path, dirErr.Path)
		})
	}
}

func TestIsImageExtension(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		extensions []string
		want       bool
	}{
		{"jpg", "photo.jpg", nil, true},
		{"tif", "scan.tif", nil, true},
		{"upper case is not matched", "photo.JPG", nil, false},
		{"svg excluded", "logo.svg", nil, false},
		{"svg excluded even when configured", "logo.svg", []string{".svg"}, false},
		{"no extension", "README", nil, false},
		{"custom set", "clip.heic", []string{".heic"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkg.IsImageExtension(tt.fileName, tt.extensions))
		})
	}
}

func TestCreateTargetDirectory(t *testing.T) {
	baseTargetDir := t.TempDir()

	tests := []struct {
		name        string
		photoDate   time.Time
		expectedDir string
	}{
		{"create new directory YYYY/MM", time.Date(2023, 10, 27, 0, 0, 0, 0, time.UTC), "2023/10"},
		{"existing directory is fine", time.Date(2023, 10, 27, 0, 0, 0, 0, time.UTC), "2023/10"},
		{"different month", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024/01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectedFullPath := filepath.Join(baseTargetDir, tt.expectedDir)

			createdPath, err := pkg.CreateTargetDirectory(baseTargetDir, tt.photoDate)
			require.NoError(t, err)
			assert.Equal(t, expectedFullPath, createdPath)
			assert.DirExists(t, expectedFullPath)
		})
	}
}

func TestEnsureTargetDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "nested")
	require.NoError(t, pkg.EnsureTargetDirectory(target))
	require.NoError(t, pkg.EnsureTargetDirectory(target), "creating an existing directory must succeed")
	assert.DirExists(t, target)
}
