package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunReport aggregates the outcome of one run.
type RunReport struct {
	RunID      string
	SourceDir  string
	TargetDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	Scanned    int
	Records    int
	Warnings   []*FileError
	Undated    []ImageRecord
	Duplicates []Duplicate
	Copied     []CopyEntry
	Failures   []*FileError
}

// WarningCount returns the number of warnings of the given kind.
func (r *RunReport) WarningCount(kind Kind) int {
	return CountByKind(r.Warnings)[kind]
}

// Summary returns the one-line run summary.
func (r *RunReport) Summary() string {
	verb := "Copied"
	if r.DryRun {
		verb = "Planned"
	}
	return fmt.Sprintf("Run Summary: Scanned: %d, %s: %d, Copy Failures: %d, Duplicates: %d, Undated: %d, Attribute Warnings: %d, Metadata Warnings: %d",
		r.Scanned, verb, len(r.Copied), len(r.Failures), len(r.Duplicates), len(r.Undated),
		r.WarningCount(KindAttributeRead), r.WarningCount(KindMetadataParse))
}

// WriteReportTo renders the report as plain text.
func WriteReportTo(w io.Writer, r *RunReport) error {
	var b strings.Builder

	b.WriteString("Photo Sorting Report\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "Run ID: %s\n", r.RunID)
	fmt.Fprintf(&b, "Source: %s\n", r.SourceDir)
	fmt.Fprintf(&b, "Target: %s\n", r.TargetDir)
	if !r.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Started: %s\n", r.StartedAt.Format(time.RFC3339))
	}
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "Finished: %s\n", r.FinishedAt.Format(time.RFC3339))
	}
	if r.DryRun {
		b.WriteString("Mode: dry run (no files written)\n")
	}

	b.WriteString("\nSummary:\n")
	fmt.Fprintf(&b, "  - Total files scanned: %d\n", r.Scanned)
	fmt.Fprintf(&b, "  - Records extracted: %d\n", r.Records)
	fmt.Fprintf(&b, "  - Files successfully copied: %d\n", len(r.Copied))
	fmt.Fprintf(&b, "  - Copy failures: %d\n", len(r.Failures))
	fmt.Fprintf(&b, "  - Duplicate files found and discarded: %d\n", len(r.Duplicates))
	fmt.Fprintf(&b, "  - Undated files skipped: %d\n", len(r.Undated))
	fmt.Fprintf(&b, "  - Attribute read warnings: %d\n", r.WarningCount(KindAttributeRead))
	fmt.Fprintf(&b, "  - Metadata parse warnings: %d\n", r.WarningCount(KindMetadataParse))

	if len(r.Duplicates) > 0 {
		b.WriteString("\nDuplicate Details:\n")
		for _, d := range r.Duplicates {
			fmt.Fprintf(&b, "  - Kept: %s\n", d.Kept.SourcePath)
			fmt.Fprintf(&b, "    Discarded: %s\n", d.Discarded.SourcePath)
			fmt.Fprintf(&b, "    Reason: %s\n\n", d.Reason)
		}
	}

	if len(r.Undated) > 0 {
		b.WriteString("\nUndated Files:\n")
		for _, u := range r.Undated {
			fmt.Fprintf(&b, "  - %s\n", u.SourcePath)
		}
	}

	if len(r.Failures) > 0 {
		b.WriteString("\nCopy Failures:\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  - %s: %v\n", f.Path, f.Err)
		}
	}

	var parseWarnings []*FileError
	for _, w := range r.Warnings {
		if w.Kind == KindMetadataParse || w.Kind == KindAttributeRead {
			parseWarnings = append(parseWarnings, w)
		}
	}
	if len(parseWarnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range parseWarnings {
			fmt.Fprintf(&b, "  - [%s] %s: %v\n", w.Kind, w.Path, w.Err)
		}
	}

	if len(r.Copied) > 0 {
		b.WriteString("\nCopied Files:\n")
		for _, c := range r.Copied {
			fmt.Fprintf(&b, "  - %s -> %s\n", c.Source, c.Destination)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// GenerateReport writes the report to reportPath, creating its directory if needed.
func GenerateReport(reportPath string, r *RunReport) error {
	reportDir := filepath.Dir(reportPath)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for report '%s': %w", reportDir, err)
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", reportPath, err)
	}
	defer file.Close()

	if err := WriteReportTo(file, r); err != nil {
		return fmt.Errorf("failed to write report file '%s': %w", reportPath, err)
	}
	return nil
}
