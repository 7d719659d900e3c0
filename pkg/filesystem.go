package pkg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/facette/natsort"
	"github.com/saracen/walker"
	"github.com/sirupsen/logrus"
)

// DefaultImageExtensions is the recognized suffix set. Matching is case-sensitive.
// ".svg" is deliberately absent: vector files carry no readable EXIF.
var DefaultImageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tiff", ".tif", ".avif", ".ico",
}

// ExcludedExtensions can never be enabled, even through configuration.
var ExcludedExtensions = []string{".svg"}

// IsImageExtension reports whether fileName ends with one of extensions.
// A nil extensions slice means DefaultImageExtensions.
func IsImageExtension(fileName string, extensions []string) bool {
	if extensions == nil {
		extensions = DefaultImageExtensions
	}
	for _, ext := range ExcludedExtensions {
		if strings.HasSuffix(fileName, ext) {
			return false
		}
	}
	for _, ext := range extensions {
		if strings.HasSuffix(fileName, ext) {
			return true
		}
	}
	return false
}

// ScanSourceDirectory recursively scans sourceDir for regular files with a recognized
// image extension. Symlinks and other non-regular entries are skipped. The result holds
// absolute paths in natural sort order and is never nil on success.
func ScanSourceDirectory(sourceDir string, extensions []string, log logrus.FieldLogger) ([]string, error) {
	root, err := resolveSourceRoot(sourceDir)
	if err != nil {
		return nil, err
	}

	var (
		mu         sync.Mutex
		imageFiles = []string{}
	)
	walkFn := func(pathname string, fi os.FileInfo) error {
		if !fi.Mode().IsRegular() {
			return nil
		}
		if IsImageExtension(fi.Name(), extensions) {
			mu.Lock()
			imageFiles = append(imageFiles, pathname)
			mu.Unlock()
		}
		return nil
	}
	errorFn := func(pathname string, err error) error {
		if pathname == root {
			return err
		}
		log.WithField("path", pathname).Warnf("Skipping unreadable path: %v", err)
		return nil
	}

	if err := walker.Walk(root, walkFn, walker.WithErrorCallback(errorFn)); err != nil {
		return nil, &DirectoryAccessError{Path: sourceDir, Err: err}
	}

	natsort.Sort(imageFiles)
	return imageFiles, nil
}

// resolveSourceRoot validates sourceDir and returns its absolute, symlink-free form.
func resolveSourceRoot(sourceDir string) (string, error) {
	if sourceDir == "" {
		return "", &DirectoryAccessError{Path: sourceDir, Err: errors.New("no source directory given")}
	}
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", &DirectoryAccessError{Path: sourceDir, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &DirectoryAccessError{Path: sourceDir, Err: err}
	}
	if !info.IsDir() {
		return "", &DirectoryAccessError{Path: sourceDir, Err: errors.New("not a directory")}
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &DirectoryAccessError{Path: sourceDir, Err: err}
	}
	f, err := os.Open(root)
	if err != nil {
		return "", &DirectoryAccessError{Path: sourceDir, Err: err}
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return "", &DirectoryAccessError{Path: sourceDir, Err: err}
	}
	return root, nil
}

// EnsureTargetDirectory creates targetBaseDir if needed. An existing directory is fine.
func EnsureTargetDirectory(targetBaseDir string) error {
	if err := os.MkdirAll(targetBaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create target base directory '%s': %w", targetBaseDir, err)
	}
	return nil
}

// TargetSubdir returns the year/month directory (YYYY/MM) for date under targetBaseDir.
func TargetSubdir(targetBaseDir string, date time.Time) string {
	return filepath.Join(targetBaseDir, date.Format("2006"), date.Format("01"))
}

// CreateTargetDirectory creates the year/month directory structure (YYYY/MM)
// within the target base directory.
func CreateTargetDirectory(targetBaseDir string, date time.Time) (string, error) {
	monthDir := TargetSubdir(targetBaseDir, date)
	if err := os.MkdirAll(monthDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create target directory %s: %w", monthDir, err)
	}
	return monthDir, nil
}
