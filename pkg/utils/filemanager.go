// =============================================================================
// Kohesio Validator - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a validation run:
//   - Input discovery (files and directories given on the command line)
//   - Report file naming and writing
//   - Input archival after a run without errors
//   - Run summary generation
//
// ARCHIVAL STRATEGY:
//   - Archival is disabled unless an input archive directory is configured
//   - Inputs whose report has errors stay where they are
//   - Archived inputs can be placed in date-based subdirectories
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
	"github.com/ginjaninja78/kohesio-validator/internal/reportwriter"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations around validation runs.
type FileManager struct {
	// OutputDir is the directory where report files are placed.
	OutputDir string

	// InputArchiveDir receives inputs after a run without errors.
	// Empty disables archival.
	InputArchiveDir string

	// Extensions are the file extensions picked up when scanning a directory.
	Extensions []string

	// FileNameFormat is the report file name pattern. See GenerateOutputFileName.
	FileNameFormat string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/file.csv
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		Extensions:      []string{".csv"},
		FileNameFormat:  "{name}_{timestamp}_{uuid}",
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and archive directories if they don't
// exist. Unset directories are skipped.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles expands the given paths into the list of files to
// validate.
//
// PARAMETERS:
//   - paths: Files and directories. Files are taken as-is whatever their
//            extension; directories are scanned (not recursively) for files
//            matching Extensions.
//
// RETURNS:
//   - The files in argument order, directory entries sorted by name,
//     without duplicates.
//   - An error if a path does not exist or a directory cannot be read.
func (fm *FileManager) DiscoverInputFiles(paths []string) ([]string, error) {
	var result []string
	seen := make(map[string]bool)

	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			result = append(result, clean)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access input %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory %s: %w", path, err)
		}

		var files []string
		for _, entry := range entries {
			if entry.IsDir() || !fm.matchesExtension(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
		sort.Strings(files)
		for _, file := range files {
			add(file)
		}
	}

	return result, nil
}

func (fm *FileManager) matchesExtension(name string) bool {
	if len(fm.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range fm.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// =============================================================================
// REPORT OUTPUT
// =============================================================================

// WriteReport renders r into a new file in the output directory.
//
// PARAMETERS:
//   - inputPath: The validated file, used for the {name} placeholder.
//   - r: The report to write. Its ID fills the {uuid} placeholder.
//   - format: The report format, which also selects the extension.
//
// RETURNS:
//   - The path of the written report.
//   - An error if the file cannot be created or rendered.
func (fm *FileManager) WriteReport(inputPath string, r *report.Report, format reportwriter.Format) (string, error) {
	name := GenerateOutputFileName(fm.FileNameFormat, map[string]string{
		"name":   strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
		"uuid":   r.ID,
		"result": string(r.Result),
	}, format.Extension())
	path := filepath.Join(fm.OutputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	writer := bufio.NewWriter(file)
	if err := reportwriter.Write(writer, r, format); err != nil {
		file.Close()
		return "", err
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to flush report file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	return path, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file, or the original path when archival is
//     disabled.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.InputArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves need a copy.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName builds a report file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID unless params sets one
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               any key of params, e.g. {name} or {result}
//   - params: A map of placeholder values.
//   - ext: The extension to append, without a dot. Skipped if the format
//          already ends with it.
//
// EXAMPLE:
//   format: "{name}_{result}"
//   params: {"name": "projects", "result": "FAILURE"}
//   ext:    "xml"
//   output: "projects_FAILURE.xml"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), "."+strings.ToLower(ext)) {
		result += "." + ext
	}

	return result
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a validation run.
type RunSummary struct {
	StartTime time.Time
	EndTime   time.Time
	Files     []FileResult
}

// FileResult is the outcome of validating one input.
type FileResult struct {
	InputFile   string
	ReportFile  string
	ArchivePath string
	Result      report.Outcome
	Counters    report.Counters
	Truncated   bool
	Duration    time.Duration

	// Err is set when the file could not be validated at all.
	Err error
}

// Failed reports whether the file needs attention: a fatal error or a report
// with errors.
func (f FileResult) Failed() bool {
	return f.Err != nil || f.Result == report.OutcomeFailure
}

// FailedCount returns the number of files that failed.
func (s RunSummary) FailedCount() int {
	n := 0
	for _, f := range s.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}

// WriteSummary writes a human-readable run summary to w.
func WriteSummary(w io.Writer, summary RunSummary) error {
	writer := bufio.NewWriter(w)

	fmt.Fprintf(writer, "Kohesio Validator - Run Summary\n"+
		"================================================================================\n"+
		"  Start Time: %s\n"+
		"  Duration:   %s\n"+
		"  Files:      %d\n"+
		"  Failed:     %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		len(summary.Files),
		summary.FailedCount())

	for _, f := range summary.Files {
		fmt.Fprintf(writer, "  Input:  %s\n", f.InputFile)
		if f.Err != nil {
			fmt.Fprintf(writer, "  Error:  %v\n\n", f.Err)
			continue
		}
		fmt.Fprintf(writer, "  Result: %s (errors: %d, warnings: %d, infos: %d)\n",
			f.Result, f.Counters.Errors, f.Counters.Warnings, f.Counters.Infos)
		if f.Truncated {
			fmt.Fprintf(writer, "  Note:   only the first %d items were kept\n", report.MaxReportItems)
		}
		if f.ReportFile != "" {
			fmt.Fprintf(writer, "  Report: %s\n", f.ReportFile)
		}
		if f.ArchivePath != "" && f.ArchivePath != f.InputFile {
			fmt.Fprintf(writer, "  Moved:  %s\n", f.ArchivePath)
		}
		writer.WriteString("\n")
	}

	return writer.Flush()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
