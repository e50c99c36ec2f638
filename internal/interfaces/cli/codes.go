package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/mrsl-intake/internal/domain/classcode"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the MRSL class codes",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, e := range classcode.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s\n", e.Code, e.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(codesCmd)
}
