package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/visibility"
)

var (
	exportRecords   string
	exportFlags     []string
	exportOut       string
	exportPage      string
	exportLandscape bool
	exportJPEG      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a record bundle to PDF or JPEG",
	Long: `Normalize and render a record bundle, then print it to PDF (or the first
page to JPEG with --jpeg) in headless Chrome.

The output file defaults to First_Last_CV.pdf built from the personal info.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportRecords, "records", "r", "", "Path to the record bundle (required)")
	exportCmd.Flags().StringArrayVarP(&exportFlags, "flag", "f", nil, "Visibility flag override name=true|false (repeatable)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file")
	exportCmd.Flags().StringVar(&exportPage, "page", "", "Page size: A4, A5, LETTER or LEGAL")
	exportCmd.Flags().BoolVar(&exportLandscape, "landscape", false, "Landscape orientation")
	exportCmd.Flags().BoolVar(&exportJPEG, "jpeg", false, "Write a JPEG preview of the first page instead of a PDF")
	_ = exportCmd.MarkFlagRequired("records")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Chrome.Timeout)
	defer cancel()

	bundle, err := readBundle(exportRecords)
	if err != nil {
		return err
	}
	overrides, err := visibility.ParseAssignments(exportFlags)
	if err != nil {
		return err
	}
	opts, err := pageOptions(exportPage, exportLandscape, cmd.Flags().Changed("landscape"))
	if err != nil {
		return err
	}

	cv, doc, err := builder.RenderRecords(bundle, overrides, renderOptionsFor(opts))
	if err != nil {
		return err
	}

	exp, closeExporter := newExporter(ctx)
	defer closeExporter()

	var data []byte
	out := exportOut
	if exportJPEG {
		snap, ok := exp.(export.Snapshotter)
		if !ok {
			return &export.Error{Op: "snapshot", Message: "exporter cannot take snapshots"}
		}
		data, err = snap.Snapshot(ctx, doc, opts)
		if out == "" {
			out = "preview.jpg"
		}
	} else {
		data, err = exp.PDF(ctx, doc, opts)
		if out == "" {
			out = builder.ExportFilename(cv, opts)
		}
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d bytes)\n", successStyle.Render("Wrote"), out, len(data))
	return nil
}
