package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rubiojr/fastpy/optimize"
	"github.com/rubiojr/fastpy/watch"
	"github.com/urfave/cli/v3"
)

// Execute runs the fastpy CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "fastpy",
		Usage:                  "Generate a _FAST copy of a Python file with a mechanical optimization pass",
		Version:                version,
		UseShortOptionHandling: true,
		ArgsUsage:              "[file.py] [mode 1-6]",
		Flags:                  pipelineFlags(),
		Action:                 optimizeAction,
		Commands: []*cli.Command{
			{
				Name:      "emit",
				Usage:     "Print the transformed source to stdout",
				ArgsUsage: "<file.py> <mode>",
				Action:    emitAction,
			},
			{
				Name:      "diff",
				Usage:     "Show a unified diff between the input and the transformed source",
				ArgsUsage: "<file.py> <mode>",
				Action:    diffAction,
			},
			{
				Name:      "watch",
				Usage:     "Re-run the transformation whenever the file changes",
				ArgsUsage: "<file.py> <mode>",
				Flags:     pipelineFlags(),
				Action:    watchAction,
			},
			{
				Name:   "modes",
				Usage:  "List the optimization catalog",
				Action: modesAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "run",
			Usage: "Execute the optimized file after writing it",
		},
		&cli.StringFlag{
			Name:  "python",
			Value: "python3",
			Usage: "Interpreter used by --run",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file name (default: <name>_FAST<ext>)",
		},
	}
}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	p := newPipeline(cmd)

	// --run is accepted anywhere on the line, also after the positional
	// arguments where flag parsing has already stopped (urfave quirk).
	var args []string
	for _, a := range cmd.Args().Slice() {
		if a == "--run" {
			p.run = true
			continue
		}
		args = append(args, a)
	}

	var file, selector string
	in := bufio.NewReader(os.Stdin)
	switch len(args) {
	case 0:
		var err error
		if file, err = promptFile(in); err != nil {
			return err
		}
		if selector, err = promptMode(in); err != nil {
			return err
		}
	case 1:
		file = args[0]
		var err error
		if selector, err = promptMode(in); err != nil {
			return err
		}
	default:
		file, selector = args[0], args[1]
	}

	opt, err := optimize.Lookup(selector)
	if err != nil {
		return err
	}
	return p.optimizeFile(file, opt)
}

func emitAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 2 {
		return fmt.Errorf("usage: fastpy emit <file.py> <mode>")
	}
	opt, err := optimize.Lookup(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	p := &pipeline{stdout: os.Stdout, stderr: os.Stderr}
	out, err := p.transform(cmd.Args().First(), opt)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func diffAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 2 {
		return fmt.Errorf("usage: fastpy diff <file.py> <mode>")
	}
	opt, err := optimize.Lookup(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	out, warnings := opt.Apply(string(src))
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(src)),
		B:        difflib.SplitLines(out),
		FromFile: path,
		ToFile:   outputPath(path),
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("computing diff: %w", err)
	}
	fmt.Print(text)
	return nil
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 2 {
		return fmt.Errorf("usage: fastpy watch <file.py> <mode>")
	}
	opt, err := optimize.Lookup(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	p := newPipeline(cmd)

	w, err := watch.New(path)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "watching %s (interrupt to stop)\n", path)
	return w.Run(ctx, func() error {
		return p.optimizeFile(path, opt)
	})
}

func modesAction(ctx context.Context, cmd *cli.Command) error {
	for _, o := range optimize.All() {
		fmt.Printf("%d  %-16s %s\n", o.ID, o.Name, o.Label)
	}
	return nil
}
