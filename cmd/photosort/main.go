package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	photosort "github.com/user/photosort/cmd/photosort/lib"
	"github.com/user/photosort/config"
	"github.com/user/photosort/pkg"
)

var appVersion = "0.2.0"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "photosort",
		Short: "Sort photos into a date-organized folder tree",
		Long: `photosort scans a folder of images, reads each file's capture date from EXIF
metadata (falling back to filesystem timestamps), drops duplicates, and copies the
files in chronological order into TARGET/YYYY/MM. Originals are never modified.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newRunCmd(stdout, stderr), newVersionCmd(), newLicensesCmd())
	return root
}

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan, deduplicate, sort and copy images",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(stderr, "Info: could not load .env file: %v\n", err)
			}
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to load config file %s: %w", cfgFile, err)
				}
			}
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log := photosort.NewLogger(stderr, cfg.Verbose, cfg.LogJSON)
			var progress io.Writer
			if !cfg.Verbose && !cfg.LogJSON {
				progress = stderr
			}
			report, err := photosort.RunApplicationLogic(cfg, log, photosort.Options{Progress: progress})
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, report.Summary())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.StringP(config.KeySource, "s", "", "source directory containing photos to sort (required)")
	flags.StringP(config.KeyTarget, "t", "", "target directory to store sorted photos (required)")
	flags.String(config.KeyReport, "", "report file path (default TARGET/report.txt)")
	flags.String(config.KeyReader, config.DefaultReader, fmt.Sprintf("EXIF reader: %s or %s", pkg.ReaderGoexif, pkg.ReaderGoexifV3))
	flags.IntP(config.KeyWorkers, "j", config.DefaultWorkers, "number of files read concurrently")
	flags.StringSlice(config.KeyExtensions, pkg.DefaultImageExtensions, "recognized image extensions (case-sensitive)")
	flags.Bool(config.KeyKeepNames, false, "keep original file names instead of YYYY-MM-DD-HHMMSS")
	flags.Bool(config.KeyVerify, false, "verify each copy by content hash")
	flags.Bool(config.KeyDryRun, false, "show what would be copied without writing anything")
	flags.BoolP(config.KeyVerbose, "v", false, "enable verbose output for detailed processing information")
	flags.Bool(config.KeyLogJSON, false, "emit JSON log lines")

	cobra.CheckErr(v.BindPFlags(flags))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appVersion)
		},
	}
}

func newLicensesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "licenses",
		Short: "Show license and dependency information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "License Information:")
			fmt.Fprintln(out, "  This application is licensed under the BSD 2-Clause License.")
			fmt.Fprintln(out, "\nDependency Information:")
			for _, d := range dependencies {
				fmt.Fprintf(out, "  - %s (%s)\n", d.name, d.module)
				fmt.Fprintf(out, "    - Purpose: %s\n", d.purpose)
				fmt.Fprintf(out, "    - License: %s\n", d.license)
			}
			fmt.Fprintln(out, "\n  Please refer to the respective repositories for full license texts.")
		},
	}
}

type dependency struct {
	name, module, purpose, license string
}

var dependencies = []dependency{
	{"goexif", "github.com/rwcarlsen/goexif", "Extract EXIF data from image files", "BSD 2-Clause"},
	{"go-exif", "github.com/dsoprea/go-exif/v3", "Alternative IFD-aware EXIF reader", "MIT"},
	{"heif-go", "github.com/vegidio/heif-go", "Decode HEIF/HEIC image headers", "MIT"},
	{"x/image", "golang.org/x/image", "Decode BMP, TIFF and WEBP image headers", "BSD 3-Clause"},
	{"times", "github.com/djherbis/times", "Read file creation and access times", "MIT"},
	{"walker", "github.com/saracen/walker", "Parallel directory traversal", "MIT"},
	{"natsort", "github.com/facette/natsort", "Natural ordering of discovered paths", "BSD 3-Clause"},
	{"blake3", "lukechampine.com/blake3", "Copy verification hashing", "MIT"},
	{"uuid", "github.com/google/uuid", "Run identifiers", "BSD 3-Clause"},
	{"logrus", "github.com/sirupsen/logrus", "Structured logging", "MIT"},
	{"progressbar", "github.com/schollz/progressbar/v3", "Progress display", "MIT"},
	{"cobra", "github.com/spf13/cobra", "Command line interface", "Apache 2.0"},
	{"viper", "github.com/spf13/viper", "Configuration from flags, env and files", "MIT"},
	{"godotenv", "github.com/joho/godotenv", ".env file loading", "MIT"},
}
