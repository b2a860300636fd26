package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rubiojr/fastpy/optimize"
	"github.com/urfave/cli/v3"
)

// pipeline carries the driver options threaded from the CLI flags and runs
// the linear read → transform → write → execute sequence.
type pipeline struct {
	python string // interpreter used by run
	output string // explicit output path, empty to derive from the input
	run    bool
	stdout io.Writer
	stderr io.Writer
}

func newPipeline(cmd *cli.Command) *pipeline {
	return &pipeline{
		python: cmd.String("python"),
		output: cmd.String("output"),
		run:    cmd.Bool("run"),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// transform reads path and applies opt. Recoverable transformation
// diagnostics are printed as warnings; the returned text is still usable.
func (p *pipeline) transform(path string, opt optimize.Optimization) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	out, warnings := opt.Apply(string(src))
	for _, w := range warnings {
		fmt.Fprintf(p.stderr, "warning: %s\n", w)
	}
	return out, nil
}

// optimizeFile runs the full pipeline: read, transform, write the _FAST
// file and, when requested, execute it with the configured interpreter.
func (p *pipeline) optimizeFile(path string, opt optimize.Optimization) error {
	out, err := p.transform(path, opt)
	if err != nil {
		return err
	}

	dst := p.output
	if dst == "" {
		dst = outputPath(path)
	}
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	fmt.Fprintf(p.stdout, "Optimized file saved as %s\n", dst)

	if !p.run {
		return nil
	}
	fmt.Fprintf(p.stdout, "Executing %s...\n", dst)
	c := exec.Command(p.python, dst)
	c.Stdin = os.Stdin
	c.Stdout = p.stdout
	c.Stderr = p.stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("running %s: %w", dst, err)
	}
	return nil
}

// outputPath derives the output name: script.py becomes script_FAST.py.
// A name without an extension gets a bare _FAST suffix; a leading-dot name
// with no other extension (.env) counts as extensionless.
func outputPath(path string) string {
	dir, file := filepath.Split(path)
	ext := filepath.Ext(file)
	if ext == file {
		ext = ""
	}
	return dir + strings.TrimSuffix(file, ext) + "_FAST" + ext
}
