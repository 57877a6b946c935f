package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash-cli/internal/dashboard"
	"github.com/KaramelBytes/datadash-cli/internal/export"
	"github.com/KaramelBytes/datadash-cli/internal/profile"
)

var (
	insDelimiter     string
	insSampleRows    int
	insMaxRows       int
	insExportSummary bool
	insExportDir     string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.csv>",
	Short: "Profile a CSV locally without contacting the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := profile.DefaultOptions()
		if insSampleRows > 0 {
			opt.SampleRows = insSampleRows
		}
		if cmd.Flags().Changed("max-rows") {
			opt.MaxRows = insMaxRows
		}
		switch insDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", insDelimiter)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		p, err := profile.Preflight(filepath.Base(path), data, opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, p.Markdown())
		for _, w := range p.Warnings {
			printWarn(out, "%s", w)
		}

		if !insExportSummary {
			return nil
		}
		summary, err := p.Summary()
		if err != nil {
			return err
		}
		body, err := export.SummaryToCSV(summary, export.NumericCategory)
		if err != nil {
			printWarn(out, "No numeric columns to export")
			return nil
		}
		dir := currentConfig().ExportDir
		if insExportDir != "" {
			dir = insExportDir
		}
		written, err := saveDownload(dir, &dashboard.Download{
			Filename:    export.SummaryFilename(export.NumericCategory, time.Now()),
			ContentType: dashboard.ContentTypeCSV,
			Body:        []byte(body),
		})
		if err != nil {
			return err
		}
		printOK(out, "Wrote numeric summary to %s", written)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include")
	inspectCmd.Flags().IntVar(&insMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	inspectCmd.Flags().BoolVar(&insExportSummary, "export-summary", false, "write the numeric summary as CSV")
	inspectCmd.Flags().StringVar(&insExportDir, "export-dir", "", "directory for exported files (overrides config)")
}
