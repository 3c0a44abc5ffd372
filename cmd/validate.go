// =============================================================================
// Transfer Pricing - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks one or more files
// against the import rules without keeping the records.
//
// COMMAND USAGE:
//   transfer-pricing validate <file> [file...]
//
// OUTPUT:
//   ✓ records.csv: 42 record(s)
//   ✗ broken.csv: error: invalid file header: missing totalAmount
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file> [file...]",
	Short: "Check CSV or XLSX files against the import rules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			sess, err := importFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "  ✗ %v\n", err)
				continue
			}
			fmt.Fprintf(out, "  ✓ %s: %d record(s)\n", filepath.Base(path), sess.Store().Len())
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
