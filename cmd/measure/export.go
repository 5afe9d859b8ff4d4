// ABOUTME: CLI commands for exporting and importing measurement data.
// ABOUTME: Supports CSV, JSON, YAML and Markdown, with optional upload to an S3 bucket.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/backup"
	"github.com/harperreed/measure/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportType   string
	exportSince  string
	exportUpload bool
)

type uploader interface {
	Upload(ctx context.Context, ext, contentType string, data []byte) (string, error)
}

// newUploader is swapped out in tests.
var newUploader = func(ctx context.Context, opts backup.Options) (uploader, error) {
	return backup.New(ctx, opts)
}

var contentTypes = map[string]string{
	"csv":      "text/csv",
	"json":     "application/json",
	"yaml":     "application/yaml",
	"markdown": "text/markdown",
}

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export measurement data",
	Long: `Export measurement data in various formats.

FORMATS:

  csv        value|type|date|metric|id|comment lines
  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by type
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --type, -t     Filter by measure type (markdown only)
  --since        Only include data since this date (YYYY-MM-DD, markdown only)
  --upload       Upload to the configured backup bucket

UPLOADS:

  Configure the bucket with 'measure config set backup.bucket <name>'. Set
  backup.age_recipient to an age public key to encrypt uploads.

EXAMPLES:

  measure export csv -o weight.csv
  measure export json --upload
  measure export markdown --type waist --since 2024-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format := strings.ToLower(args[0])

		data, err := exportData(ctx, format)
		if err != nil {
			return err
		}

		if exportUpload {
			b := cfg.Backup
			up, err := newUploader(ctx, backup.Options{
				Bucket:       b.Bucket,
				Prefix:       b.Prefix,
				Region:       b.Region,
				Endpoint:     b.Endpoint,
				PathStyle:    b.PathStyle,
				AgeRecipient: b.AgeRecipient,
			})
			if err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			key, err := up.Upload(ctx, extension(format), contentTypes[format], data)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			logger.Info("uploaded export", "bucket", b.Bucket, "key", key, "bytes", len(data))
			color.Green("✓ Uploaded %s to s3://%s/%s", humanize.Bytes(uint64(len(data))), b.Bucket, key)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else if !exportUpload {
			fmt.Fprint(cmd.OutOrStdout(), string(data))
		}
		return nil
	},
}

func exportData(ctx context.Context, format string) ([]byte, error) {
	var data []byte
	var err error

	switch format {
	case "csv":
		var buf bytes.Buffer
		_, err = storage.ExportCSV(ctx, repo, &buf, cfg.IsMetric())
		data = buf.Bytes()
	case "json":
		data, err = storage.ExportJSON(ctx, repo)
		if err == nil {
			data = append(data, '\n')
		}
	case "yaml":
		data, err = storage.ExportYAML(ctx, repo)
	case "markdown":
		var since time.Time
		if exportSince != "" {
			since, err = time.ParseInLocation("2006-01-02", exportSince, time.Local)
			if err != nil {
				return nil, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
			}
		}
		typeName := ""
		if exportType != "" {
			t, err := catalog.ByName(strings.ToUpper(exportType))
			if err != nil {
				return nil, err
			}
			typeName = t.Name
		}
		var md string
		md, err = storage.ExportMarkdown(ctx, repo, catalog, typeName, since, cfg.IsMetric())
		data = []byte(md)
	default:
		return nil, fmt.Errorf("unknown format: %s (use csv, json, yaml, or markdown)", format)
	}

	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	return data, nil
}

func extension(format string) string {
	if format == "markdown" {
		return "md"
	}
	return format
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import measurement data from CSV or JSON",
	Long: `Import measurements from a CSV file or a JSON backup.

Files ending in .json are read as a full backup (types and measurements).
Anything else is read as CSV lines in the export format. Lines that fail to
parse are reported and skipped. Entries that already exist (same type,
second and value) are skipped.

EXAMPLES:

  measure import weight.csv
  measure import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var summary *storage.ImportSummary
		if strings.EqualFold(filepath.Ext(filename), ".json") {
			summary, err = storage.ImportJSON(ctx, repo, data)
		} else {
			ms, lineErrs, readErr := storage.ReadCSV(bytes.NewReader(data), catalog)
			if readErr != nil {
				return fmt.Errorf("import failed: %w", readErr)
			}
			for _, le := range lineErrs {
				color.Yellow("✗ %v", le)
			}
			summary, err = storage.ImportMeasurements(ctx, repo, ms)
			if summary != nil {
				summary.Skipped += len(lineErrs)
			}
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d measurements from %s", summary.Measurements, filename)
		if summary.Types > 0 || summary.Skipped > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), color.New(color.Faint).Sprintf("  %d types, %d skipped", summary.Types, summary.Skipped))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "", "filter by measure type (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "upload to the configured backup bucket")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
