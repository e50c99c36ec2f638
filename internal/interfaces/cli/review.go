package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	domainwf "github.com/garyjia/mrsl-intake/internal/domain/workflow"
	"github.com/garyjia/mrsl-intake/internal/interfaces/tui"
)

// reviewProgramOptions is replaced in tests to run without a terminal.
var reviewProgramOptions = []tea.ProgramOption{tea.WithAltScreen()}

var reviewCmd = &cobra.Command{
	Use:   "review <file.pdf>",
	Short: "Extract, review and submit a PDF in the terminal",
	Long: `Extracts the MRSL fields from the PDF and opens an editable form.

Controls:
  tab/shift+tab - Move between fields
  ←/→           - Cycle class codes
  ctrl+s        - Submit to the webhook
  ctrl+r        - Clear and quit
  esc           - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := app.Intake.FromPath(args[0])
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", args[0], err)
	}

	final, err := tui.Run(cmd.Context(), app.Session, app.Notifications, doc, reviewProgramOptions...)
	if err != nil {
		return err
	}

	switch {
	case final.Cleared():
		cmd.Println("Cleared.")
	case final.Snapshot().State == domainwf.StateSubmitted:
		cmd.Printf("Submitted %s.\n", doc.Name)
	default:
		cmd.Println("Not submitted.")
	}
	return nil
}
