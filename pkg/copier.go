package pkg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies a file from srcPath to destPath.
// It ensures the destination directory exists and refuses to overwrite an existing
// destination, returning ErrDestinationExists instead. The source's permission bits
// and modification time are carried over.
func CopyFile(srcPath, destPath string) error {
	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", destDir, err)
	}

	sourceFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcPath, err)
	}
	defer sourceFile.Close()

	srcInfo, err := sourceFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", srcPath, err)
	}

	destinationFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, destPath)
		}
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}

	if _, err := io.Copy(destinationFile, sourceFile); err != nil {
		destinationFile.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to copy content from %s to %s: %w", srcPath, destPath, err)
	}

	if err := destinationFile.Sync(); err != nil {
		destinationFile.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to sync destination file %s: %w", destPath, err)
	}
	if err := destinationFile.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to close destination file %s: %w", destPath, err)
	}

	if err := os.Chtimes(destPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("failed to preserve modification time on %s: %w", destPath, err)
	}
	return nil
}
