package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/user/photosort/pkg"
)

// EnvPrefix is prepended to every environment variable, e.g. PHOTOSORT_SOURCE.
const EnvPrefix = "PHOTOSORT"

// Configuration keys. Flags carry the same names.
const (
	KeySource     = "source"
	KeyTarget     = "target"
	KeyReport     = "report"
	KeyReader     = "reader"
	KeyWorkers    = "workers"
	KeyExtensions = "extensions"
	KeyKeepNames  = "keep-names"
	KeyVerify     = "verify"
	KeyDryRun     = "dry-run"
	KeyVerbose    = "verbose"
	KeyLogJSON    = "log-json"
)

const (
	DefaultReportName = "report.txt"
	DefaultWorkers    = 4
	DefaultReader     = pkg.ReaderGoexif
)

type Config struct {
	// directory scanned for images
	SourceDir string
	// root of the YYYY/MM output tree
	TargetDir string
	// where report.txt goes; defaults to TargetDir/report.txt
	ReportPath string

	Reader     string
	Workers    int
	Extensions []string

	KeepNames bool
	Verify    bool
	DryRun    bool

	Verbose bool
	LogJSON bool
}

// LoadDotEnv loads a .env file from the working directory when one exists.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyReader, DefaultReader)
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyExtensions, pkg.DefaultImageExtensions)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads a Config out of v, applying defaults and validating it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		SourceDir:  v.GetString(KeySource),
		TargetDir:  v.GetString(KeyTarget),
		ReportPath: v.GetString(KeyReport),
		Reader:     v.GetString(KeyReader),
		Workers:    v.GetInt(KeyWorkers),
		Extensions: normalizeExtensions(v.GetStringSlice(KeyExtensions)),
		KeepNames:  v.GetBool(KeyKeepNames),
		Verify:     v.GetBool(KeyVerify),
		DryRun:     v.GetBool(KeyDryRun),
		Verbose:    v.GetBool(KeyVerbose),
		LogJSON:    v.GetBool(KeyLogJSON),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.SourceDir, err = filepath.Abs(cfg.SourceDir); err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for source directory '%s': %w", cfg.SourceDir, err)
	}
	if cfg.TargetDir, err = filepath.Abs(cfg.TargetDir); err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for target directory '%s': %w", cfg.TargetDir, err)
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = filepath.Join(cfg.TargetDir, DefaultReportName)
	}
	return cfg, nil
}

// Validate checks required fields and option values.
func (c Config) Validate() error {
	var errs []error
	if c.SourceDir == "" {
		errs = append(errs, errors.New("source directory is required"))
	}
	if c.TargetDir == "" {
		errs = append(errs, errors.New("target directory is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := pkg.NewMetadataReader(c.Reader); err != nil {
		errs = append(errs, err)
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("at least one image extension is required"))
	}
	for _, ext := range c.Extensions {
		for _, excluded := range pkg.ExcludedExtensions {
			if ext == excluded {
				errs = append(errs, fmt.Errorf("extension %q cannot be processed", ext))
			}
		}
	}
	return errors.Join(errs...)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, item := range exts {
		for _, ext := range strings.Split(item, ",") {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			out = append(out, ext)
		}
	}
	return out
}
