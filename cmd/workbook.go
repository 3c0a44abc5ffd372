// =============================================================================
// Transfer Pricing - Workbook Command
// =============================================================================
//
// COMMAND USAGE:
//   transfer-pricing workbook <file> [--out report.xlsx] [--force]
//
// Converts a CSV export (or another workbook) into an XLSX workbook with a
// Transactions sheet and a Crosstab sheet. Without --out the workbook is
// written next to the input with the extension replaced. An existing
// destination is only replaced with --force.
//
// =============================================================================

package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/transfer-pricing/internal/workbook"
	"github.com/ginjaninja78/transfer-pricing/pkg/utils"
	"github.com/spf13/cobra"
)

// outPath is the workbook destination.
var outPath string

// force allows replacing an existing destination.
var force bool

var workbookCmd = &cobra.Command{
	Use:   "workbook <file>",
	Short: "Convert a CSV or XLSX file to an XLSX workbook with a crosstab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := importFile(args[0])
		if err != nil {
			return err
		}

		dest := outPath
		if dest == "" {
			dest = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".xlsx"
		}
		if filepath.Clean(dest) == filepath.Clean(args[0]) {
			return fmt.Errorf("refusing to overwrite the input file %s", args[0])
		}
		if !force && utils.FileExists(dest) {
			return fmt.Errorf("%s already exists (use --force to replace it)", dest)
		}

		var buf bytes.Buffer
		if err := workbook.WriteStore(&buf, sess.Store()); err != nil {
			return fmt.Errorf("failed to build workbook: %w", err)
		}

		path, err := utils.NewFileManager(filepath.Dir(dest)).WriteFile(filepath.Base(dest), buf.Bytes())
		if err != nil {
			return err
		}

		log.Info().Str("file", path).Int("records", sess.Store().Len()).Msg("workbook written")
		fmt.Fprintf(cmd.OutOrStdout(), "workbook written to %s (%d record(s))\n", path, sess.Store().Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workbookCmd)

	workbookCmd.Flags().StringVarP(
		&outPath,
		"out",
		"o",
		"",
		"Destination workbook (default: input name with .xlsx)",
	)

	workbookCmd.Flags().BoolVarP(
		&force,
		"force",
		"f",
		false,
		"Replace the destination if it already exists",
	)
}
