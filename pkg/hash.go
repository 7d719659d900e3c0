package pkg

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

const hashSize = 32

// CalculateFileHash calculates the BLAKE3 hash of a file's content.
func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s for hashing: %w", filePath, err)
	}
	defer file.Close()

	hash := blake3.New(hashSize, nil)
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to copy file content to hasher for %s: %w", filePath, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// VerifyCopy checks that destPath holds the same bytes as srcPath.
func VerifyCopy(srcPath, destPath string) error {
	srcHash, err := CalculateFileHash(srcPath)
	if err != nil {
		return err
	}
	destHash, err := CalculateFileHash(destPath)
	if err != nil {
		return err
	}
	if srcHash != destHash {
		return fmt.Errorf("content mismatch after copy: %s (%s) vs %s (%s)", srcPath, srcHash, destPath, destHash)
	}
	return nil
}
