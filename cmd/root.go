// =============================================================================
// Transfer Pricing - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (transfer-pricing)
//   ├── sessionCmd  (transfer-pricing session)
//   ├── crosstabCmd (transfer-pricing crosstab <file>)
//   ├── validateCmd (transfer-pricing validate <file>)
//   ├── workbookCmd (transfer-pricing workbook <file>)
//   └── versionCmd  (transfer-pricing version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration file (--config)
//   2. Builds the logger (--verbose forces debug level)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/transfer-pricing/internal/config"
	"github.com/ginjaninja78/transfer-pricing/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig and log are prepared by loadConfig for every subcommand.
var (
	appConfig *config.Config
	log       = zerolog.Nop()
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "transfer-pricing",
	Short: "Transfer Pricing - record and summarize inter-department service charges",
	Long: `Transfer Pricing records services that one department provides to another,
summarizes them as a crosstab (provider and service by receiving department),
and imports or exports the records as UTF-8 CSV or XLSX.

Example Usage:
  transfer-pricing session                        # Interactive recording session
  transfer-pricing crosstab records.csv           # Print the quantity crosstab
  transfer-pricing crosstab records.csv -m amount # Sum total amounts instead
  transfer-pricing validate records.csv           # Check a file before import
  transfer-pricing workbook records.csv           # Convert a CSV export to XLSX`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfig reads the configuration file and builds the logger.
func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	l, err := logger.New(level, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	appConfig = cfg
	log = l
	log.Debug().Str("config", cfgFile).Str("export_dir", cfg.ExportDir).Msg("configuration loaded")
	return nil
}
