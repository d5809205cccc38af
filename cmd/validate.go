// =============================================================================
// Kohesio Validator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which runs the business rules
// over one or more delimited files and writes a report for each of them.
//
// COMMAND USAGE:
//   kohesio-validator validate [files or directories...] [flags]
//
// FLAGS:
//   --quote       : Field quote character (default from config, '"')
//   --delimiter   : Field separator; "tab", "pipe" and "semicolon" also work
//   --format      : Report format: xml, json, yaml, text or xlsx
//   --output-dir  : Directory for report files
//   --archive-dir : Move inputs without errors here after validation
//   --stdout      : Print reports to standard output instead of files
//
// PROCESSING PIPELINE:
//   1. Expand the arguments into input files
//   2. For each file (concurrently, at most max_concurrency at a time):
//      a. Validate the file
//      b. Write its report
//      c. Archive the input if the report has no errors
//   3. Print a summary, in argument order
//
// The command fails when any file could not be validated or its report
// has errors.
//
// =============================================================================

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/kohesio-validator/internal/config"
	"github.com/ginjaninja78/kohesio-validator/internal/reportwriter"
	"github.com/ginjaninja78/kohesio-validator/internal/validation"
	"github.com/ginjaninja78/kohesio-validator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	quoteFlag       string
	delimiterFlag   string
	formatFlag      string
	outputDirFlag   string
	archiveDirFlag  string
	toStdout        bool
	concurrencyFlag int
)

// errValidationFailed is returned when at least one input failed.
var errValidationFailed = errors.New("validation failed")

// =============================================================================
// VALIDATE COMMAND DEFINITION
// =============================================================================

var validateCmd = &cobra.Command{
	Use:   "validate [files or directories...]",
	Short: "Validate delimited files against the Kohesio business rules",
	Long: `The validate command checks every given file, and every matching file in
every given directory, against the cross-field business rules.

A report is written for each input. The overall result of a report is:
  SUCCESS  no violations
  WARNING  warnings but no errors
  FAILURE  at least one error

Only the first 50000 violations of a file are listed in its report; the
counters always include every violation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		applyFlagOverrides(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		r := &runner{
			cfg:    &cfg,
			logger: logger,
			stdout: toStdout,
			out:    cmd.OutOrStdout(),
			errOut: cmd.ErrOrStderr(),
		}
		return r.run(args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&quoteFlag, "quote", "", "Field quote character")
	validateCmd.Flags().StringVar(&delimiterFlag, "delimiter", "", "Field separator")
	validateCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Report format (xml, json, yaml, text, xlsx)")
	validateCmd.Flags().StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory for report files")
	validateCmd.Flags().StringVar(&archiveDirFlag, "archive-dir", "", "Move inputs without errors to this directory")
	validateCmd.Flags().BoolVar(&toStdout, "stdout", false, "Print reports to standard output instead of writing files")
	validateCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "Number of files validated at the same time")
}

// applyFlagOverrides copies explicitly set flags over the configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("quote") {
		cfg.Quote = quoteFlag
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = delimiterFlag
	}
	if flags.Changed("format") {
		cfg.ReportFormat = formatFlag
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDirFlag
	}
	if flags.Changed("archive-dir") {
		cfg.InputArchiveDir = archiveDirFlag
	}
	if flags.Changed("concurrency") && concurrencyFlag > 0 {
		cfg.MaxConcurrency = concurrencyFlag
	}
}

// =============================================================================
// RUNNER
// =============================================================================

// runner validates a batch of files with one configuration.
type runner struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	// stdout prints reports to out instead of writing them to OutputDir.
	stdout bool

	out    io.Writer
	errOut io.Writer
}

// fileOutcome pairs a file result with its rendered report when printing to
// standard output.
type fileOutcome struct {
	index    int
	result   utils.FileResult
	rendered []byte
}

func (r *runner) run(paths []string) error {
	startTime := time.Now()

	format, err := reportwriter.ParseFormat(r.cfg.ReportFormat)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(r.cfg.OutputDir, r.cfg.InputArchiveDir)
	fm.Extensions = r.cfg.InputExtensions
	fm.FileNameFormat = r.cfg.FileNameFormat

	files, err := fm.DiscoverInputFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files found in %v", paths)
	}

	if !r.stdout {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	r.logger.Infow("validating files", "files", len(files), "format", format, "concurrency", r.cfg.MaxConcurrency)

	validator := validation.New(validation.WithLogger(r.logger))

	// =========================================================================
	// VALIDATE FILES CONCURRENTLY
	// =========================================================================

	var wg sync.WaitGroup
	results := make(chan fileOutcome, len(files))
	slots := make(chan struct{}, r.cfg.MaxConcurrency)

	for i, file := range files {
		wg.Add(1)

		go func(index int, path string) {
			defer wg.Done()

			slots <- struct{}{}
			defer func() { <-slots }()

			results <- r.validateFile(validator, fm, format, index, path)
		}(i, file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// COLLECT RESULTS
	// =========================================================================

	outcomes := make([]fileOutcome, len(files))
	for outcome := range results {
		outcomes[outcome.index] = outcome
	}

	summary := utils.RunSummary{StartTime: startTime}
	for _, outcome := range outcomes {
		if outcome.rendered != nil {
			if _, err := r.out.Write(outcome.rendered); err != nil {
				return fmt.Errorf("failed to print report: %w", err)
			}
		}
		summary.Files = append(summary.Files, outcome.result)
	}
	summary.EndTime = time.Now()

	// Reports own standard output in --stdout mode.
	summaryOut := r.out
	if r.stdout {
		summaryOut = r.errOut
	}
	if err := utils.WriteSummary(summaryOut, summary); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}

	if failed := summary.FailedCount(); failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s)", errValidationFailed, failed, len(files))
	}
	return nil
}

// validateFile runs one file through validation, report output and archival.
func (r *runner) validateFile(validator *validation.Validator, fm *utils.FileManager, format reportwriter.Format, index int, path string) fileOutcome {
	start := time.Now()
	outcome := fileOutcome{index: index, result: utils.FileResult{InputFile: path}}

	fail := func(err error) fileOutcome {
		r.logger.Errorw("validation failed", "file", path, "error", err)
		outcome.result.Err = err
		outcome.result.Duration = time.Since(start)
		return outcome
	}

	req, err := validation.ParseRequest([]validation.Input{
		{Name: validation.InputContent, Value: path},
		{Name: validation.InputQuote, Value: r.cfg.Quote},
		{Name: validation.InputDelimiter, Value: config.ResolveDelimiter(r.cfg.Delimiter)},
	})
	if err != nil {
		return fail(err)
	}

	rep, err := validator.Validate(req)
	if err != nil {
		return fail(err)
	}

	outcome.result.Result = rep.Result
	outcome.result.Counters = rep.Counters
	outcome.result.Truncated = rep.Truncated

	if r.stdout {
		var buf bytes.Buffer
		if err := reportwriter.Write(&buf, rep, format); err != nil {
			return fail(err)
		}
		outcome.rendered = buf.Bytes()
	} else {
		reportPath, err := fm.WriteReport(path, rep, format)
		if err != nil {
			return fail(err)
		}
		outcome.result.ReportFile = reportPath
	}

	if !outcome.result.Failed() {
		archived, err := fm.ArchiveInputFile(path)
		if err != nil {
			r.logger.Warnw("failed to archive input", "file", path, "error", err)
		} else {
			outcome.result.ArchivePath = archived
		}
	}

	outcome.result.Duration = time.Since(start)
	return outcome
}
