package pkg

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/djherbis/times"
	"github.com/sirupsen/logrus"
)

// ExcludedTags never make it into a record: their free text is useless for
// ordering or display.
var ExcludedTags = []string{"User Comment"}

// ExtractResult is the outcome of extracting one file. Record is always populated;
// Warnings lists the recoverable problems met on the way.
type ExtractResult struct {
	Record   ImageRecord
	Warnings []*FileError
}

// Extractor builds ImageRecords from files using a chain of metadata readers.
type Extractor struct {
	Readers []MetadataReader
	Workers int
	Log     logrus.FieldLogger

	// OnExtracted, if set, is called once per finished file. It may be called
	// from several goroutines.
	OnExtracted func(ExtractResult)
}

// NewExtractor returns an Extractor using reader followed by the image header probe.
func NewExtractor(reader MetadataReader, workers int, log logrus.FieldLogger) *Extractor {
	readers := []MetadataReader{}
	if reader != nil {
		readers = append(readers, reader)
	}
	readers = append(readers, ImageHeaderReader{})
	if workers <= 0 {
		workers = 1
	}
	return &Extractor{Readers: readers, Workers: workers, Log: log}
}

// Extract produces the record for a single file. It never fails as a whole: every
// problem is reported as a warning on the result.
func (e *Extractor) Extract(path string) ExtractResult {
	log := e.logger().WithField("path", path)
	res := ExtractResult{Record: ImageRecord{SourcePath: path, FileName: filepath.Base(path)}}

	attrs, attrErrs := readAttributes(path)
	res.Record.Attributes = attrs
	for _, err := range attrErrs {
		fe := newFileError(KindAttributeRead, path, err)
		log.WithField("kind", fe.Kind.String()).Warnf("Could not read file attributes: %v", err)
		res.Warnings = append(res.Warnings, fe)
	}

	var tags Tags
	for _, reader := range e.Readers {
		found, err := readWith(reader, path)
		if err != nil {
			if errors.Is(err, ErrNoMetadata) {
				log.Debugf("No embedded metadata found by %s", reader.Name())
				continue
			}
			if errors.Is(err, image.ErrFormat) && !hasHeaderDecoder(res.Record.FileName) {
				log.Debugf("No header decoder for %s", res.Record.FileName)
				continue
			}
			fe := newFileError(KindMetadataParse, path, fmt.Errorf("%s: %w", reader.Name(), err))
			log.WithField("kind", fe.Kind.String()).Warnf("Could not parse metadata with %s: %v", reader.Name(), err)
			res.Warnings = append(res.Warnings, fe)
			continue
		}
		mergeTags(&tags, found, log)
	}
	res.Record.Tags = tags

	date, source, err := ResolveDate(tags, attrs)
	if err != nil {
		fe := newFileError(KindUndatedRecord, path, err)
		log.WithField("kind", fe.Kind.String()).Warn("No usable timestamp; file will not be sorted")
		res.Warnings = append(res.Warnings, fe)
	} else {
		res.Record.ResolvedDate = date
		res.Record.DateSource = source
		log.Debugf("Determined date (%s): %s", source, date.Format("2006-01-02 15:04:05"))
	}
	return res
}

// ExtractAll extracts every path and returns results in the same order as paths.
// With more than one worker, files are processed concurrently and collected
// before returning.
func (e *Extractor) ExtractAll(paths []string) []ExtractResult {
	results := make([]ExtractResult, len(paths))
	workers := e.Workers
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers <= 1 {
		for i, p := range paths {
			results[i] = e.Extract(p)
			e.notify(results[i])
		}
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.Extract(paths[i])
				e.notify(results[i])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func (e *Extractor) notify(res ExtractResult) {
	if e.OnExtracted != nil {
		e.OnExtracted(res)
	}
}

func (e *Extractor) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

func readWith(reader MetadataReader, path string) ([]Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return reader.ReadTags(f)
}

func mergeTags(dst *Tags, found []Tag, log logrus.FieldLogger) {
	for _, t := range found {
		if isExcludedTag(t.Name) {
			continue
		}
		if !dst.Set(t.Name, t.Value) {
			log.Debugf("Ignoring repeated tag %q from directory %q", t.Name, t.Directory)
		}
	}
}

func isExcludedTag(name string) bool {
	canonical := CanonicalTagName(name)
	for _, ex := range ExcludedTags {
		if CanonicalTagName(ex) == canonical {
			return true
		}
	}
	return false
}

// readAttributes gathers size and timestamps. Whatever succeeds is returned
// alongside the errors for whatever did not.
func readAttributes(path string) (Attributes, []error) {
	var (
		attrs Attributes
		errs  []error
	)

	info, err := os.Stat(path)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to stat file: %w", err))
	} else {
		size := info.Size()
		attrs.Size = &size
	}

	ts, err := times.Stat(path)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to read file times: %w", err))
		if info != nil {
			attrs.ModifiedAt = timePtr(info.ModTime())
		}
		return attrs, errs
	}
	attrs.ModifiedAt = timePtr(ts.ModTime())
	attrs.AccessedAt = timePtr(ts.AccessTime())
	if ts.HasBirthTime() {
		attrs.CreatedAt = timePtr(ts.BirthTime())
	}
	return attrs, errs
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
