package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyjia/mrsl-intake/internal/application/port"
	"github.com/garyjia/mrsl-intake/internal/extraction"
)

var extractReferenceDate string

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Extract MRSL fields from a PDF and print them as JSON",
	Long: `Sends the PDF to the configured inference provider and prints the
extracted record. Fields the model could not read are printed as null.
Nothing is submitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractReferenceDate, "reference-date", "",
		"date relative expressions resolve against (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	var refDate time.Time
	if s := strings.TrimSpace(extractReferenceDate); s != "" {
		d, err := time.Parse(extraction.ReferenceDateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid --reference-date %q: expected YYYY-MM-DD", s)
		}
		refDate = d
	}

	app, err := loadApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := app.Intake.FromPath(args[0])
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", args[0], err)
	}

	record, err := app.Extractor.Extract(cmd.Context(), port.ExtractRequest{
		Filename:      doc.Name,
		MediaType:     doc.MediaType,
		Content:       doc.Content,
		ReferenceDate: refDate,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
