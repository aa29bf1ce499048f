package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/mini/compiler"
	"github.com/slowlang/mini/compiler/config"
	"github.com/slowlang/mini/compiler/diag"
	"github.com/slowlang/mini/compiler/format"
	"github.com/slowlang/mini/compiler/parse"
	"github.com/slowlang/mini/compiler/vm"
)

// exitDiags is the exit code of a program with diagnostics.
const exitDiags = 2

func main() {
	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "dump syntax tree",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	fmtCmd := &cli.Command{
		Name:        "fmt",
		Description: "print source in canonical form",
		Action:      fmtAct,
		Args:        cli.Args{},
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "report diagnostics without emitting code",
		Action:      checkAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "emit assembly listing next to the source or to --output",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "", "output file, - for stdout"),
		},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile and execute on the built-in machine",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("max-steps", 0, "stop after that many instructions"),
		},
	}

	app := &cli.Command{
		Name:        "mini",
		Description: "mini is a tool for managing MiNI source code",
		Flags: []*cli.Flag{
			cli.NewFlag("config,c", "", "yaml config file"),
			cli.NewFlag("verbose,v", "", "verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			parseCmd,
			fmtCmd,
			checkCmd,
			compileCmd,
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func newContext(c *cli.Command) context.Context {
	if v := c.String("verbose"); v != "" {
		tlog.SetVerbosity(v)
	}

	ctx := context.Background()

	return tlog.ContextWithSpan(ctx, tlog.Root())
}

func parseAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	for _, a := range c.Args {
		x, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		fmt.Printf("%s\n", repr.String(x, repr.Indent("  ")))
	}

	return nil
}

func fmtAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	for _, a := range c.Args {
		x, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		b, err := format.Format(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func checkAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read file")
		}

		_, _, err = compiler.Check(ctx, a, text)
		if err != nil {
			return reportExit(a, err)
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	out := c.String("output")

	if err = checkOutput(out, len(c.Args)); err != nil {
		return err
	}

	for _, a := range c.Args {
		name := out
		if name == "" {
			name = a + cfg.Ext
		}

		err = compileFile(ctx, a, name, cfg)
		if err != nil {
			return reportExit(a, err)
		}
	}

	return nil
}

// checkOutput rejects several sources compiled into one explicit output.
func checkOutput(out string, srcs int) error {
	if out != "" && srcs > 1 {
		return errors.New("--output takes a single source file, got %d", srcs)
	}

	return nil
}

// compileFile never leaves a partial or stale output file behind.
func compileFile(ctx context.Context, src, dst string, cfg config.Config) (err error) {
	obj, err := compiler.CompileFile(ctx, src, cfg)
	if err != nil {
		if dst != "-" {
			e := os.Remove(dst)
			if e != nil && !errors.Is(e, os.ErrNotExist) {
				tlog.SpanFromContext(ctx).Printw("remove stale output", "dst", dst, "err", e)
			}
		}

		return err
	}

	if dst == "-" {
		_, err = os.Stdout.Write(obj)
		if err != nil {
			return errors.Wrap(err, "write")
		}

		return nil
	}

	f, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close output")
		}

		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	_, err = f.Write(obj)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	tlog.SpanFromContext(ctx).Printw("compiled", "src", src, "dst", dst, "size", len(obj))

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := newContext(c)

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a, cfg)
		if err != nil {
			return reportExit(a, err)
		}

		p, err := vm.Load(obj)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}

		m := vm.New(p, os.Stdin, os.Stdout)
		m.MaxSteps = c.Int("max-steps")

		err = m.Run(ctx)
		if err != nil {
			return errors.Wrap(err, "run %v", a)
		}
	}

	return nil
}

// reportExit prints diagnostics the way users expect them and exits,
// other errors are returned as is.
func reportExit(name string, err error) error {
	var d *diag.Error
	if !errors.As(err, &d) {
		return err
	}

	fmt.Fprintf(os.Stderr, "%v: %v\n", name, d)

	os.Exit(exitDiags)

	return nil
}
