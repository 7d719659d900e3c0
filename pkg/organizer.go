package pkg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CopyEntry records where a source file was (or, in a dry run, would be) copied.
type CopyEntry struct {
	Source      string
	Destination string
	Date        time.Time
}

// OrganizeResult summarizes the copy stage.
type OrganizeResult struct {
	Copied   []CopyEntry
	Failures []*FileError
}

// Organizer copies records into a YYYY/MM tree under TargetDir.
type Organizer struct {
	TargetDir string
	KeepNames bool
	DryRun    bool
	Verify    bool
	Log       logrus.FieldLogger

	// OnProcessed, if set, is called after each record, copied or not.
	OnProcessed func(ImageRecord)

	claimed map[string]bool
}

// DestinationName returns the file name a record is copied under before any
// collision suffix: "YYYY-MM-DD-HHMMSS<ext>", or the original name when keepNames is set.
func DestinationName(rec ImageRecord, keepNames bool) string {
	if keepNames {
		return rec.FileName
	}
	return rec.ResolvedDate.Format("2006-01-02-150405") + filepath.Ext(rec.FileName)
}

// VersionedName inserts "-n" before the extension of name. n == 0 returns name.
func VersionedName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + strconv.Itoa(n) + ext
}

// Organize copies records, in order, into the target tree. The order decides which
// file gets the plain name when several map to the same destination. Every problem,
// including a target root that cannot be created, is reported per record.
func (o *Organizer) Organize(records []ImageRecord) OrganizeResult {
	result := OrganizeResult{Copied: []CopyEntry{}}
	var rootErr error
	if !o.DryRun {
		if rootErr = EnsureTargetDirectory(o.TargetDir); rootErr != nil {
			o.logger().WithField("target", o.TargetDir).Errorf("Cannot create target directory: %v", rootErr)
		}
	}
	if o.claimed == nil {
		o.claimed = make(map[string]bool)
	}

	for _, rec := range records {
		var (
			entry CopyEntry
			err   = rootErr
		)
		if err == nil {
			entry, err = o.organizeOne(rec)
		}
		if err != nil {
			fe := newFileError(KindCopy, rec.SourcePath, err)
			o.logger().WithFields(logrus.Fields{"path": rec.SourcePath, "kind": fe.Kind.String()}).
				Errorf("Copy failed: %v", err)
			result.Failures = append(result.Failures, fe)
		} else {
			result.Copied = append(result.Copied, entry)
		}
		if o.OnProcessed != nil {
			o.OnProcessed(rec)
		}
	}
	return result
}

func (o *Organizer) organizeOne(rec ImageRecord) (CopyEntry, error) {
	log := o.logger().WithField("path", rec.SourcePath)
	if !rec.Dated() {
		return CopyEntry{}, fmt.Errorf("record has no resolved date")
	}

	monthDir := TargetSubdir(o.TargetDir, rec.ResolvedDate)
	if !o.DryRun {
		var err error
		if monthDir, err = CreateTargetDirectory(o.TargetDir, rec.ResolvedDate); err != nil {
			return CopyEntry{}, err
		}
	}
	name := DestinationName(rec, o.KeepNames)

	for n := 0; ; n++ {
		candidate := filepath.Join(monthDir, VersionedName(name, n))
		if o.claimed[candidate] {
			continue
		}
		if _, err := os.Lstat(candidate); err == nil {
			log.Debugf("Target %s already exists, trying next version", candidate)
			o.claimed[candidate] = true
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return CopyEntry{}, fmt.Errorf("error checking target path %s: %w", candidate, err)
		}

		entry := CopyEntry{Source: rec.SourcePath, Destination: candidate, Date: rec.ResolvedDate}
		if o.DryRun {
			o.claimed[candidate] = true
			log.Debugf("Dry run: would copy to %s", candidate)
			return entry, nil
		}

		err := CopyFile(rec.SourcePath, candidate)
		if errors.Is(err, ErrDestinationExists) {
			o.claimed[candidate] = true
			continue
		}
		if err != nil {
			return CopyEntry{}, err
		}
		o.claimed[candidate] = true

		if o.Verify {
			if err := VerifyCopy(rec.SourcePath, candidate); err != nil {
				os.Remove(candidate)
				return CopyEntry{}, err
			}
		}
		log.Debugf("Copied to %s", candidate)
		return entry, nil
	}
}

func (o *Organizer) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}
