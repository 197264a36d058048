package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/normalize"
	"github.com/jonathan/cv-builder/internal/types"
)

var (
	statusCV      string
	statusRecords string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which CV sections have entries",
	Long: `Show the completion state of every section of a CV, read either from the
database (--cv) or from a record bundle file (--records).`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusCV, "cv", "", "CV ID in the database")
	statusCmd.Flags().StringVarP(&statusRecords, "records", "r", "", "Path to a record bundle")
	statusCmd.MarkFlagsMutuallyExclusive("cv", "records")
	statusCmd.MarkFlagsOneRequired("cv", "records")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var (
		statuses []types.SectionStatus
		failures []*builder.SectionError
	)
	switch {
	case statusRecords != "":
		bundle, err := readBundle(statusRecords)
		if err != nil {
			return err
		}
		cv, err := normalize.CV(bundle)
		if err != nil {
			return err
		}
		statuses = cv.Completion()
	default:
		cvID, err := uuid.Parse(statusCV)
		if err != nil {
			return fmt.Errorf("invalid CV ID %q: %w", statusCV, err)
		}
		database, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		statuses, failures, err = newService(database, nil).Completion(ctx, cvID)
		if err != nil {
			return err
		}
	}

	printStatus(cmd.OutOrStdout(), statuses, failures)
	return nil
}

// printStatus writes the completion table followed by any load failures.
func printStatus(w io.Writer, statuses []types.SectionStatus, failures []*builder.SectionError) {
	done := 0
	for _, s := range statuses {
		if s.Complete {
			done++
		}
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("CV completion: %d/%d sections", done, len(statuses))))
	fmt.Fprintln(w, statusTable(statuses))

	for _, f := range failures {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("! %s could not be loaded: %v", f.Section, f.Err)))
	}
}

func statusTable(statuses []types.SectionStatus) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		mark := "-"
		if s.Complete {
			mark = "✓"
		}
		rows = append(rows, []string{s.Title, strconv.Itoa(s.Count), mark})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Section", "Entries", "Done").
		Rows(rows...).
		String()
}
