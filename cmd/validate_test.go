package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ginjaninja78/kohesio-validator/internal/config"
	"github.com/ginjaninja78/kohesio-validator/internal/validation"
)

const cleanCSV = "Operation_Start_Date,Operation_End_Date\n01/01/2020,31/12/2020\n"

const failingCSV = "Operation_Start_Date,Operation_End_Date\n01/01/2021,31/12/2020\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newRunner(t *testing.T, cfg *config.Config, stdout bool) (*runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	return &runner{
		cfg:    cfg,
		logger: zap.NewNop().Sugar(),
		stdout: stdout,
		out:    &out,
		errOut: &errOut,
	}, &out, &errOut
}

func TestRunner_WritesReportsAndArchives(t *testing.T) {
	in := t.TempDir()
	good := writeFile(t, in, "good.csv", cleanCSV)
	bad := writeFile(t, in, "bad.csv", failingCSV)

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "reports")
	cfg.InputArchiveDir = filepath.Join(t.TempDir(), "archive")
	cfg.ReportFormat = "json"
	cfg.FileNameFormat = "{name}_{result}"

	r, out, _ := newRunner(t, cfg, false)
	err := r.run([]string{in})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errValidationFailed))

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "good_SUCCESS.json"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "bad_FAILURE.json"))

	assert.NoFileExists(t, good, "inputs without errors are archived")
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, "good.csv"))
	assert.FileExists(t, bad, "inputs with errors stay in place")

	assert.Contains(t, out.String(), "Files:      2")
	assert.Contains(t, out.String(), "Failed:     1")
}

func TestRunner_Stdout(t *testing.T) {
	in := t.TempDir()
	first := writeFile(t, in, "a.csv", cleanCSV)
	second := writeFile(t, in, "b.csv", "Operation_Start_Date;Operation_End_Date\n01/01/2021;31/12/2020")

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "unused")
	cfg.Delimiter = "semicolon"
	cfg.ReportFormat = "text"
	cfg.MaxConcurrency = 1

	// a.csv is comma separated, so with ';' its header is one column and no
	// rule applies.
	r, out, errOut := newRunner(t, cfg, true)
	err := r.run([]string{first, second})
	require.Error(t, err)

	assert.NoDirExists(t, cfg.OutputDir)
	assert.Contains(t, out.String(), "Result:   SUCCESS")
	assert.Contains(t, out.String(), "1. ERROR   [Row: 2][Field: Operation_Start_Date]")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("SUCCESS")), bytes.Index(out.Bytes(), []byte("FAILURE")),
		"reports follow argument order")
	assert.Contains(t, errOut.String(), "Run Summary")
}

func TestRunner_AllClean(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clean.csv", cleanCSV)

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	r, _, _ := newRunner(t, cfg, false)
	require.NoError(t, r.run([]string{path}))
	assert.FileExists(t, path, "archival is off by default")
}

func TestRunner_FatalFileError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.csv", "A,B\n\"open,1\n")

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	r, out, _ := newRunner(t, cfg, false)
	err := r.run([]string{path})
	require.Error(t, err)
	assert.Contains(t, out.String(), "Error:")

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no report for a file that could not be read")
}

func TestRunner_BadArguments(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	r, _, _ := newRunner(t, cfg, false)
	assert.Error(t, r.run([]string{filepath.Join(t.TempDir(), "absent.csv")}))
	assert.Error(t, r.run([]string{t.TempDir()}), "empty directory")

	cfg.ReportFormat = "pdf"
	assert.Error(t, r.run([]string{writeFile(t, t.TempDir(), "x.csv", cleanCSV)}))
}

func TestRunner_QuoteIsRequired(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Quote = ""

	r, out, _ := newRunner(t, cfg, false)
	require.Error(t, r.run([]string{writeFile(t, t.TempDir(), "x.csv", cleanCSV)}))
	assert.Contains(t, out.String(), validation.ErrMissingInput.Error())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Module:     KohesioPlugin")
	assert.Contains(t, out.String(), "Version:    "+Version)
}
