package pkg

import (
	"errors"
	"fmt"
)

// ErrNoMetadata is returned by a MetadataReader when the file carries no embedded
// metadata block at all. The extractor treats it as zero tags without a warning.
var ErrNoMetadata = errors.New("no embedded metadata found")

// ErrDestinationExists is returned by CopyFile when the destination path is already taken.
var ErrDestinationExists = errors.New("destination file already exists")

// DirectoryAccessError is the only fatal error of a run: the input root is missing,
// unreadable or not a directory.
type DirectoryAccessError struct {
	Path string
	Err  error
}

func (e *DirectoryAccessError) Error() string {
	return fmt.Sprintf("cannot access source directory '%s': %v", e.Path, e.Err)
}

func (e *DirectoryAccessError) Unwrap() error { return e.Err }

// Kind classifies a recoverable, per-file problem.
type Kind int

const (
	KindAttributeRead Kind = iota + 1
	KindMetadataParse
	KindUndatedRecord
	KindCopy
)

// String returns the kind as written in logs and reports, e.g. "metadata-parse".
func (k Kind) String() string {
	switch k {
	case KindAttributeRead:
		return "attribute-read"
	case KindMetadataParse:
		return "metadata-parse"
	case KindUndatedRecord:
		return "undated-record"
	case KindCopy:
		return "copy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FileError is a recoverable error isolated to a single source file.
type FileError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s error for %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func newFileError(kind Kind, path string, err error) *FileError {
	return &FileError{Kind: kind, Path: path, Err: err}
}

// CountByKind tallies file errors per kind.
func CountByKind(errs []*FileError) map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range errs {
		counts[e.Kind]++
	}
	return counts
}
