// =============================================================================
// Transfer Pricing - Session Command
// =============================================================================
//
// This file defines the 'session' command: an interactive recording session
// over standard input. Records live in memory for the duration of the
// session; use 'export' or 'workbook' inside the session to keep them.
//
// COMMAND USAGE:
//   transfer-pricing session [--export-dir DIR]
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/transfer-pricing/internal/logger"
	"github.com/ginjaninja78/transfer-pricing/internal/session"
	"github.com/ginjaninja78/transfer-pricing/pkg/utils"
	"github.com/spf13/cobra"
)

// exportDir overrides the configured export directory.
var exportDir string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Record transactions interactively",
	Long: `Start an interactive session. Commands are read one per line:

  add <provider> <service> <price> <receiver> <quantity> [date]
  list
  crosstab [quantity|amount]
  import <file.csv|file.xlsx>
  export
  workbook
  suggest <provider|service|receiver> [text]
  help
  quit

Values containing spaces must be double-quoted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringVar(
		&exportDir,
		"export-dir",
		"",
		"Directory for exported files (overrides export_dir)",
	)
}

// runSession wires the session to stdin/stdout and the export directory.
func runSession(cmd *cobra.Command) error {
	if exportDir != "" {
		appConfig.ExportDir = exportDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(appConfig, utils.NewFileManager(appConfig.ExportDir), session.WithLogger(log))
	ctx = logger.WithContext(ctx, log)
	ctxLog := logger.FromContext(ctx)

	ctxLog.Info().
		Str("session", sess.ID).
		Str("export_dir", appConfig.ExportDir).
		Msg("session started")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Transfer Pricing session. Type 'help' for commands.")

	err := session.NewShell(sess, out).Run(ctx, cmd.InOrStdin())

	ctxLog.Info().
		Str("session", sess.ID).
		Int("records", sess.Store().Len()).
		Msg("session ended")
	return err
}
