package cmd

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/fastpy/optimize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	cases := map[string]string{
		"script.py":      "script_FAST.py",
		"dir/app.py":     "dir/app_FAST.py",
		"archive.tar.gz": "archive.tar_FAST.gz",
		"noext":          "noext_FAST",
		".env":           ".env_FAST",
		"pkg/.env":       "pkg/.env_FAST",
	}
	for in, want := range cases {
		assert.Equal(t, want, outputPath(in), in)
	}
}

func testPipeline() (*pipeline, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &pipeline{python: "python3", stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func mustLookup(t *testing.T, selector string) optimize.Optimization {
	t.Helper()
	opt, err := optimize.Lookup(selector)
	require.NoError(t, err)
	return opt
}

func TestOptimizeFileWritesFastCopy(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(in, []byte("def f():\n    return 1\n"), 0644))

	p, stdout, stderr := testPipeline()
	require.NoError(t, p.optimizeFile(in, mustLookup(t, "5")))

	out, err := os.ReadFile(filepath.Join(dir, "script_FAST.py"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# [OPTIMIZATION: Caching with lru_cache applied]\n"))
	assert.Contains(t, string(out), "from functools import lru_cache\n")
	assert.Contains(t, string(out), "@lru_cache\ndef f():\n")
	assert.Contains(t, stdout.String(), "script_FAST.py")
	assert.Empty(t, stderr.String())
}

func TestOptimizeFileExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "script.py")
	dst := filepath.Join(dir, "custom.py")
	require.NoError(t, os.WriteFile(in, []byte("x = 1\n"), 0644))

	p, _, _ := testPipeline()
	p.output = dst
	require.NoError(t, p.optimizeFile(in, mustLookup(t, "2")))

	_, err := os.Stat(dst)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "script_FAST.py"))
	assert.True(t, os.IsNotExist(err), "derived name not written when overridden")
}

func TestOptimizeFileMissingInput(t *testing.T) {
	p, _, _ := testPipeline()
	err := p.optimizeFile(filepath.Join(t.TempDir(), "absent.py"), mustLookup(t, "1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestTransformWarnsOnUnparseableSource(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.py")
	require.NoError(t, os.WriteFile(in, []byte("def f(:\n"), 0644))

	p, _, stderr := testPipeline()
	require.NoError(t, p.optimizeFile(in, mustLookup(t, "numba")))
	assert.Contains(t, stderr.String(), "warning:")

	// The run still writes output: banner and import around the
	// untouched source.
	out, err := os.ReadFile(filepath.Join(dir, "broken_FAST.py"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "def f(:\n")
	assert.Contains(t, string(out), "from numba import njit")
}

func TestRunExecutesProducedFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(in, []byte("x = 1\n"), 0644))

	p, stdout, _ := testPipeline()
	p.run = true
	p.python = "true" // stands in for an interpreter that exits 0
	require.NoError(t, p.optimizeFile(in, mustLookup(t, "4")))
	assert.Contains(t, stdout.String(), "Executing")
}

func TestRunSurfacesChildFailure(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(in, []byte("x = 1\n"), 0644))

	p, _, _ := testPipeline()
	p.run = true
	p.python = "false" // stands in for an interpreter that exits non-zero
	err := p.optimizeFile(in, mustLookup(t, "4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running")

	// The output file was still written before execution failed.
	_, statErr := os.Stat(filepath.Join(dir, "script_FAST.py"))
	assert.NoError(t, statErr)
}

func TestInvalidModeProducesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(in, []byte("x = 1\n"), 0644))

	_, err := optimize.Lookup("9")
	require.Error(t, err)

	// The dispatcher rejects the mode before the pipeline runs, so no
	// _FAST file can appear.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Len(t, entries, 1)
	assert.Equal(t, "script.py", entries[0].Name())
}

func TestPromptsReadSingleShot(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	in := bufio.NewReader(strings.NewReader("script.py\n"))
	file, err := promptFile(in)
	require.NoError(t, err)
	assert.Equal(t, "script.py", file)

	in = bufio.NewReader(strings.NewReader("  5\n"))
	sel, err := promptMode(in)
	require.NoError(t, err)
	assert.Equal(t, "5", sel)

	// Last line without a trailing newline still counts.
	in = bufio.NewReader(strings.NewReader("cache"))
	sel, err = promptMode(in)
	require.NoError(t, err)
	assert.Equal(t, "cache", sel)

	in = bufio.NewReader(strings.NewReader(""))
	_, err = promptFile(in)
	require.Error(t, err)
}

func TestRenderMenuListsCatalog(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	menu := renderMenu()
	assert.Contains(t, menu, "Please select one of the following optimization methods:")
	for _, o := range optimize.All() {
		assert.Contains(t, menu, o.Label)
	}
	assert.Contains(t, menu, "1 - Multiprocessing support\n")
	assert.Contains(t, menu, "5 - Caching with lru_cache\n")
}
