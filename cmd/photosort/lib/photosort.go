package photosort

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/user/photosort/config"
	"github.com/user/photosort/pkg"
)

// NewLogger builds the application logger: info level by default, debug when
// verbose, JSON lines when asJSON is set.
func NewLogger(out io.Writer, verbose, asJSON bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log
}

func newProgressBar(total int, description string, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		out = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

// Options tweaks a run without going through configuration.
type Options struct {
	// Progress receives progress bars. nil disables them.
	Progress io.Writer
}

// RunApplicationLogic is the core processing function for the photo sorter.
// It scans the source directory, extracts and resolves a date for each image,
// drops duplicates, sorts chronologically and copies into the target tree,
// then writes a report of its actions. A source directory access failure is the
// only error that aborts the run; everything else is recorded in the returned
// report. A report that cannot be written is returned with the error.
func RunApplicationLogic(cfg config.Config, log logrus.FieldLogger, opts Options) (*pkg.RunReport, error) {
	report := &pkg.RunReport{
		RunID:     uuid.NewString(),
		SourceDir: cfg.SourceDir,
		TargetDir: cfg.TargetDir,
		StartedAt: time.Now(),
		DryRun:    cfg.DryRun,
	}
	log = log.WithField("run", report.RunID)
	log.WithFields(logrus.Fields{
		"source": cfg.SourceDir,
		"target": cfg.TargetDir,
		"report": cfg.ReportPath,
		"reader": cfg.Reader,
	}).Info("Photo Sorter Initializing...")

	imageFiles, err := pkg.ScanSourceDirectory(cfg.SourceDir, cfg.Extensions, log)
	if err != nil {
		return nil, err
	}
	report.Scanned = len(imageFiles)

	if report.Scanned == 0 {
		log.Info("No image files found in source directory.")
	} else {
		log.Infof("Found %d image file(s) to process.", report.Scanned)
	}

	records, err := extractRecords(cfg, log, opts, imageFiles, report)
	if err != nil {
		return nil, err
	}

	dated, undated := pkg.PartitionDated(records)
	report.Undated = undated

	unique, duplicates := pkg.Deduplicate(dated)
	report.Duplicates = duplicates
	for _, d := range duplicates {
		log.WithFields(logrus.Fields{"kept": d.Kept.SourcePath, "discarded": d.Discarded.SourcePath}).
			Infof("Skipping duplicate: %s", d.Reason)
	}

	sorted := pkg.SortByDate(unique)

	bar := newProgressBar(len(sorted), "Copying", opts.Progress)
	organizer := &pkg.Organizer{
		TargetDir:   cfg.TargetDir,
		KeepNames:   cfg.KeepNames,
		DryRun:      cfg.DryRun,
		Verify:      cfg.Verify,
		Log:         log,
		OnProcessed: func(pkg.ImageRecord) { _ = bar.Add(1) },
	}
	result := organizer.Organize(sorted)
	_ = bar.Finish()
	report.Copied = result.Copied
	report.Failures = result.Failures
	report.FinishedAt = time.Now()

	log.Info("--- Photo Sorting Process Completed ---")
	if cfg.DryRun {
		log.Info("Dry run: report not written")
	} else {
		if err := pkg.GenerateReport(cfg.ReportPath, report); err != nil {
			return report, fmt.Errorf("failed to generate final report: %w", err)
		}
		log.Infof("Report generated at %s", cfg.ReportPath)
	}
	log.Info(report.Summary())
	return report, nil
}

func extractRecords(cfg config.Config, log logrus.FieldLogger, opts Options, imageFiles []string, report *pkg.RunReport) ([]pkg.ImageRecord, error) {
	reader, err := pkg.NewMetadataReader(cfg.Reader)
	if err != nil {
		return nil, err
	}

	bar := newProgressBar(len(imageFiles), "Reading metadata", opts.Progress)
	extractor := pkg.NewExtractor(reader, cfg.Workers, log)
	extractor.OnExtracted = func(pkg.ExtractResult) { _ = bar.Add(1) }
	results := extractor.ExtractAll(imageFiles)
	_ = bar.Finish()

	records := make([]pkg.ImageRecord, 0, len(results))
	for _, res := range results {
		records = append(records, res.Record)
		report.Warnings = append(report.Warnings, res.Warnings...)
	}
	report.Records = len(records)
	return records, nil
}
