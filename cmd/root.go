// =============================================================================
// Kohesio Validator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (kohesio-validator)
//   ├── validateCmd (kohesio-validator validate)
//   └── versionCmd  (kohesio-validator version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration file (--config), falling back to defaults
//   2. Builds the logger (--verbose forces debug output)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/kohesio-validator/internal/config"
	"github.com/ginjaninja78/kohesio-validator/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// appConfig is the configuration loaded before a subcommand runs.
var appConfig = config.Default()

// logger is shared by all subcommands.
var logger = zap.NewNop().Sugar()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "kohesio-validator",
	Short: "Kohesio Validator - Cross-field business rules for Kohesio CSV exports",
	Long: `Kohesio Validator checks delimited project exports against business rules
that span several columns of the same row:

  - The operation start date must not be after the operation end date
  - At least one location indicator must be provided
  - A non-euro expenditure currency needs an exchange rate

A rule only runs when every column it needs is present in the header row.
Each input produces a report listing every violation with its row number.

Example Usage:
  kohesio-validator validate projects.csv          # Validate one file
  kohesio-validator validate ./exports --format json
  kohesio-validator validate data.csv --delimiter ";" --stdout`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
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
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initialize loads the configuration and builds the logger.
func initialize() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = l
	logger.Debugw("configuration loaded", "path", cfgFile)
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: A missing file is not an error, the defaults apply.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
