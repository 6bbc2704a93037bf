// Command fnscript runs, checks and inspects fnscript programs.
//
// Usage:
//
//	fnscript [global flags] run [-e code] [file]
//	fnscript [global flags] repl
//	fnscript [global flags] check <file>...
//	fnscript [global flags] tokens <file>
//	fnscript [global flags] ast <file>
//	fnscript [global flags] test [--filter s] [--parallel n] <dir>
//	fnscript [global flags] dumpconfig [file]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/signal"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/inconshreveable/log15"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/example/fnscript/interpreter"
	"github.com/example/fnscript/lexer"
	"github.com/example/fnscript/parser"
	"github.com/example/fnscript/runtime"
	"github.com/example/fnscript/testrunner"
)

const version = "0.1.0"

var (
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug",
		Value: defaultVerbosity,
	}
	maxStepsFlag = cli.Int64Flag{
		Name:  "max-steps",
		Usage: "Evaluation step budget per run (0 = unlimited)",
	}
	maxDepthFlag = cli.IntFlag{
		Name:  "max-depth",
		Usage: "Maximum user function call depth (0 = unlimited)",
		Value: interpreter.DefaultLimits.MaxDepth,
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Wall clock limit per evaluation (0 = none)",
	}
	strictArityFlag = cli.BoolFlag{
		Name:  "strict-arity",
		Usage: "Fail calls whose argument count differs from the parameter count",
	}
	cacheSizeFlag = cli.IntFlag{
		Name:  "cache-size",
		Usage: "Parse cache entries (0 disables the cache)",
		Value: interpreter.DefaultCacheSize,
	}
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	evalFlag = cli.StringFlag{
		Name:  "e",
		Usage: "Evaluate inline code instead of a file",
	}
	filterFlag = cli.StringFlag{
		Name:  "filter",
		Usage: "Only run scripts whose path contains this substring",
	}
	parallelFlag = cli.IntFlag{
		Name:  "parallel",
		Usage: "Number of scripts run concurrently",
		Value: goruntime.NumCPU(),
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "Also list passing scripts",
	}
)

// errFailed reports that a command already printed its diagnostics.
var errFailed = errors.New("failed")

var (
	errorColor = color.New(color.FgRed, color.Bold)
	passColor  = color.New(color.FgGreen)
	skipColor  = color.New(color.FgYellow)
	valueColor = color.New(color.FgCyan)
)

// host holds the streams commands write to.
type host struct {
	stdout io.Writer
	stderr io.Writer
}

func newApp(h *host) *cli.App {
	app := cli.NewApp()
	app.Name = "fnscript"
	app.Usage = "the fnscript interpreter"
	app.Version = version
	app.Writer = h.stdout
	app.ErrWriter = h.stderr
	app.Flags = []cli.Flag{
		configFileFlag,
		verbosityFlag,
		maxStepsFlag,
		maxDepthFlag,
		timeoutFlag,
		strictArityFlag,
		cacheSizeFlag,
		noColorFlag,
	}
	app.Commands = []cli.Command{
		{
			Action:    h.wrap(h.run),
			Name:      "run",
			Usage:     "Run a script",
			ArgsUsage: "[file]",
			Flags:     []cli.Flag{evalFlag},
			Category:  "SCRIPT COMMANDS",
			Description: `The run command evaluates a script file, or the code given with -e,
and prints the final value unless it is null.`,
		},
		{
			Action:   h.wrap(h.repl),
			Name:     "repl",
			Usage:    "Start an interactive session",
			Category: "SCRIPT COMMANDS",
			Description: `The repl command reads statements line by line. Input that ends in
the middle of a statement continues on the next line. Type :help for
session commands.`,
		},
		{
			Action:      h.wrap(h.check),
			Name:        "check",
			Usage:       "Parse scripts without running them",
			ArgsUsage:   "<file>...",
			Category:    "SCRIPT COMMANDS",
			Description: `The check command lexes and parses every file and reports all errors.`,
		},
		{
			Action:    h.wrap(h.tokens),
			Name:      "tokens",
			Usage:     "Print the token stream of a script",
			ArgsUsage: "<file>",
			Category:  "DEBUG COMMANDS",
		},
		{
			Action:    h.wrap(h.ast),
			Name:      "ast",
			Usage:     "Dump the syntax tree of a script",
			ArgsUsage: "<file>",
			Category:  "DEBUG COMMANDS",
		},
		{
			Action:    h.wrap(h.test),
			Name:      "test",
			Usage:     "Run a directory of script tests",
			ArgsUsage: "<dir>",
			Flags:     []cli.Flag{filterFlag, parallelFlag, verboseFlag},
			Category:  "SCRIPT COMMANDS",
			Description: `The test command runs every *.fns script below dir and compares it
with its .out (expected output) or .err (expected error kind) file.`,
		},
		{
			Action: func(ctx *cli.Context) error {
				return dumpConfig(ctx, h.stdout)
			},
			Name:      "dumpconfig",
			Usage:     "Show configuration values",
			ArgsUsage: "[file]",
			Category:  "MISCELLANEOUS COMMANDS",
			Description: `The dumpconfig command prints the effective configuration as TOML,
after applying the --config file and command line flags. The output
can be passed back with --config.`,
		},
	}
	return app
}

func main() {
	h := &host{stdout: os.Stdout, stderr: os.Stderr}
	if err := newApp(h).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// wrap turns errFailed into a silent exit status 1.
func (h *host) wrap(action func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		err := action(ctx)
		if err == errFailed {
			return cli.NewExitError("", 1)
		}
		return err
	}
}

// prepare resolves the configuration and the logger for a command.
func (h *host) prepare(ctx *cli.Context) (fnscriptConfig, log15.Logger, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return cfg, nil, err
	}
	if cfg.Output.NoColor {
		color.NoColor = true
	}
	return cfg, newLogger(h.stderr, cfg.Output), nil
}

func newInterpreter(cfg fnscriptConfig, out io.Writer, logger log15.Logger) (*interpreter.Interpreter, error) {
	opts := []interpreter.Option{
		interpreter.WithOutput(out),
		interpreter.WithLimits(cfg.limits()),
		interpreter.WithLogger(logger),
	}
	if cfg.Limits.StrictArity {
		opts = append(opts, interpreter.WithStrictArity())
	}
	if cfg.Cache.Size > 0 {
		cache, err := interpreter.NewParseCache(cfg.Cache.Size)
		if err != nil {
			return nil, err
		}
		opts = append(opts, interpreter.WithParseCache(cache))
	} else {
		opts = append(opts, interpreter.WithParseCache(nil))
	}
	return interpreter.New(opts...)
}

// evalContext is cancelled by an interrupt or after timeout.
func evalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// printDiagnostic writes err in diagnostic form, header in colour.
func printDiagnostic(w io.Writer, file string, err error) {
	text := interpreter.Diagnose(err).Format(file)
	head, rest := text, ""
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		head, rest = text[:i], text[i:]
	}
	errorColor.Fprint(w, head)
	fmt.Fprintln(w, rest)
}

func readScript(ctx *cli.Context, usage string) (string, string, error) {
	if ctx.NArg() != 1 {
		return "", "", fmt.Errorf("usage: fnscript %s %s", ctx.Command.Name, usage)
	}
	file := ctx.Args().First()
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return "", "", err
	}
	return file, string(data), nil
}

func (h *host) run(ctx *cli.Context) error {
	cfg, logger, err := h.prepare(ctx)
	if err != nil {
		return err
	}

	var file, source string
	if code := ctx.String(evalFlag.Name); code != "" {
		file, source = "<eval>", code
	} else if file, source, err = readScript(ctx, "[-e code] <file>"); err != nil {
		return err
	}

	interp, err := newInterpreter(cfg, h.stdout, logger)
	if err != nil {
		return err
	}
	ectx, cancel := evalContext(cfg.Limits.Timeout)
	defer cancel()

	val, err := interp.EvalContext(ectx, source)
	if err != nil {
		printDiagnostic(h.stderr, file, err)
		return errFailed
	}
	logger.Debug("Run finished", "file", file, "steps", interp.Steps())
	if val.Type() != runtime.TypeNull {
		fmt.Fprintln(h.stdout, runtime.ToString(val))
	}
	return nil
}

func (h *host) check(ctx *cli.Context) error {
	if _, _, err := h.prepare(ctx); err != nil {
		return err
	}
	files := ctx.Args()
	if len(files) == 0 {
		return fmt.Errorf("usage: fnscript check <file>...")
	}

	errs := make([]error, len(files))
	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			data, err := ioutil.ReadFile(file)
			if err != nil {
				errs[i] = err
				return nil
			}
			_, errs[i] = parser.Parse(string(data))
			return nil
		})
	}
	g.Wait()

	failed := false
	for i, file := range files {
		if errs[i] != nil {
			failed = true
			printDiagnostic(h.stderr, file, errs[i])
			continue
		}
		fmt.Fprintf(h.stdout, "%s: ok\n", file)
	}
	if failed {
		return errFailed
	}
	return nil
}

func (h *host) tokens(ctx *cli.Context) error {
	file, source, err := readScript(ctx, "<file>")
	if err != nil {
		return err
	}
	toks, err := lexer.Tokenize(source)
	if err != nil {
		printDiagnostic(h.stderr, file, err)
		return errFailed
	}
	for _, tok := range toks {
		fmt.Fprintf(h.stdout, "%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Literal)
	}
	return nil
}

var astDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (h *host) ast(ctx *cli.Context) error {
	file, source, err := readScript(ctx, "<file>")
	if err != nil {
		return err
	}
	program, err := parser.Parse(source)
	if err != nil {
		printDiagnostic(h.stderr, file, err)
		return errFailed
	}
	astDumper.Fdump(h.stdout, program)
	return nil
}

func (h *host) test(ctx *cli.Context) error {
	cfg, logger, err := h.prepare(ctx)
	if err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return fmt.Errorf("usage: fnscript test [--filter s] [--parallel n] <dir>")
	}

	results, summary, err := testrunner.Run(context.Background(), testrunner.Config{
		Dir:         ctx.Args().First(),
		Filter:      ctx.String(filterFlag.Name),
		Parallel:    ctx.Int(parallelFlag.Name),
		Timeout:     cfg.Limits.Timeout,
		Limits:      cfg.limits(),
		StrictArity: cfg.Limits.StrictArity,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	verbose := ctx.Bool(verboseFlag.Name)
	for _, r := range results {
		if r.Result == testrunner.Pass && !verbose {
			continue
		}
		resultColor(r.Result).Fprintf(h.stdout, "%-5s", r.Result)
		fmt.Fprintf(h.stdout, " %s", r.Path)
		if r.Message != "" {
			fmt.Fprintf(h.stdout, ": %s", r.Message)
		}
		fmt.Fprintln(h.stdout)
	}
	fmt.Fprintf(h.stdout, "%d scripts: %d passed, %d failed, %d skipped, %d errors (%v)\n",
		summary.Total, summary.Passed, summary.Failed, summary.Skipped, summary.Errors,
		summary.Elapsed.Round(time.Millisecond))
	if !summary.OK() {
		return errFailed
	}
	return nil
}

func resultColor(r testrunner.Result) *color.Color {
	switch r {
	case testrunner.Pass:
		return passColor
	case testrunner.Skip:
		return skipColor
	}
	return errorColor
}
