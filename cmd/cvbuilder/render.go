package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/visibility"
)

var (
	renderRecords   string
	renderFlags     []string
	renderOut       string
	renderPage      string
	renderLandscape bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a record bundle to HTML",
	Long: `Normalize a JSON or YAML record bundle and render it to a standalone HTML
page without touching the database.

Visibility flags are set with --flag name=value, e.g.:
  cvbuilder render --records cv.json --flag showEmail=false --flag showAge=true`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderRecords, "records", "r", "", "Path to the record bundle (required)")
	renderCmd.Flags().StringArrayVarP(&renderFlags, "flag", "f", nil, "Visibility flag override name=true|false (repeatable)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().StringVar(&renderPage, "page", "", "Page size: A4, A5, LETTER or LEGAL")
	renderCmd.Flags().BoolVar(&renderLandscape, "landscape", false, "Landscape orientation")
	_ = renderCmd.MarkFlagRequired("records")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	bundle, err := readBundle(renderRecords)
	if err != nil {
		return err
	}
	overrides, err := visibility.ParseAssignments(renderFlags)
	if err != nil {
		return err
	}
	page, err := pageOptions(renderPage, renderLandscape, cmd.Flags().Changed("landscape"))
	if err != nil {
		return err
	}

	_, doc, err := builder.RenderRecords(bundle, overrides, renderOptionsFor(page))
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if renderOut != "" {
		f, err := os.Create(renderOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := doc.WriteHTML(w); err != nil {
		return err
	}
	if renderOut != "" {
		appLog.Info("rendered cv", "out", renderOut, "sections", len(doc.Sections), "empty", doc.Empty)
	}
	return nil
}
