// =============================================================================
// Transfer Pricing - Crosstab Command
// =============================================================================
//
// COMMAND USAGE:
//   transfer-pricing crosstab <file> [--measure quantity|amount]
//
// The file is imported exactly as the 'import' session command would import
// it, then the crosstab is printed with row and column totals.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/transfer-pricing/internal/pivot"
	"github.com/ginjaninja78/transfer-pricing/internal/session"
	"github.com/spf13/cobra"
)

// measure selects the crosstab cell value.
var measure string

var crosstabCmd = &cobra.Command{
	Use:   "crosstab <file>",
	Short: "Print the crosstab of a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := pivot.ParseMeasure(measure)
		if err != nil {
			return err
		}

		sess, err := importFile(args[0])
		if err != nil {
			return err
		}
		session.RenderCrosstab(cmd.OutOrStdout(), sess.ShowCrosstab(m))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(crosstabCmd)

	crosstabCmd.Flags().StringVarP(
		&measure,
		"measure",
		"m",
		string(pivot.MeasureQuantity),
		"Cell value: quantity or amount",
	)
}

// importFile loads path into a fresh session.
// Import failures are returned as the message the session shell would show.
func importFile(path string) (*session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sess := session.New(appConfig, nil, session.WithLogger(log))
	if _, err := sess.Import(f, filepath.Base(path)); err != nil {
		return nil, fmt.Errorf("%s: %s", path, session.Describe(err))
	}
	return sess, nil
}
