package testrunner

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"golang.org/x/sync/errgroup"

	"github.com/example/fnscript/interpreter"
)

// ScriptExt is the extension of runnable scripts. Each script is paired with
// a sibling expectation file: name.out holds the exact print output of a
// successful run, name.err holds the error kind the run must fail with.
const (
	ScriptExt = ".fns"
	OutExt    = ".out"
	ErrExt    = ".err"
)

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path    string
	Result  Result
	Message string
	Elapsed time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

// OK reports whether nothing failed or errored.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errors == 0
}

type Config struct {
	Dir         string
	Filter      string             // substring of the script path relative to Dir
	Parallel    int                // concurrent scripts, <= 0 means 1
	Timeout     time.Duration      // per script, 0 means none
	Limits      interpreter.Limits // zero value means interpreter.DefaultLimits
	StrictArity bool
	Logger      log15.Logger
}

// Run discovers scripts under cfg.Dir and runs each in a fresh interpreter.
// Results are ordered by path.
func Run(ctx context.Context, cfg Config) ([]TestResult, Summary, error) {
	scripts, err := Discover(cfg.Dir, cfg.Filter)
	if err != nil {
		return nil, Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}
	parallel := cfg.Parallel
	if parallel <= 0 {
		parallel = 1
	}
	if cfg.Limits == (interpreter.Limits{}) {
		cfg.Limits = interpreter.DefaultLimits
	}

	// One parse cache for the whole run; scripts never share bindings.
	cache, err := interpreter.NewParseCache(len(scripts) + 1)
	if err != nil {
		return nil, Summary{}, err
	}

	start := time.Now()
	results := make([]TestResult, len(scripts))
	sem := make(chan struct{}, parallel)
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range scripts {
		i, path := i, path
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			rel, _ := filepath.Rel(cfg.Dir, path)
			results[i] = runScript(gctx, cfg, cache, logger, path, rel)
			logger.Debug("Script finished", "path", rel, "result", results[i].Result, "elapsed", results[i].Elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{Total: len(results), Elapsed: time.Since(start)}
	for _, tr := range results {
		switch tr.Result {
		case Pass:
			summary.Passed++
		case Fail:
			summary.Failed++
		case Skip:
			summary.Skipped++
		case Error:
			summary.Errors++
		}
	}
	return results, summary, nil
}

// Discover lists scripts below dir whose relative path contains filter.
func Discover(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var scripts []string
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ScriptExt {
			return nil
		}
		if filter != "" {
			rel, _ := filepath.Rel(dir, path)
			if !strings.Contains(rel, filter) {
				return nil
			}
		}
		scripts = append(scripts, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(scripts)
	return scripts, nil
}

func runScript(ctx context.Context, cfg Config, cache *interpreter.ParseCache, logger log15.Logger, path, rel string) TestResult {
	source, err := ioutil.ReadFile(path)
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: "read error: " + err.Error()}
	}
	exp, err := loadExpectation(strings.TrimSuffix(path, ScriptExt))
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: err.Error()}
	}
	if exp == nil {
		return TestResult{Path: rel, Result: Skip, Message: "no " + OutExt + " or " + ErrExt + " file"}
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var out bytes.Buffer
	opts := []interpreter.Option{
		interpreter.WithOutput(&out),
		interpreter.WithLimits(cfg.Limits),
		interpreter.WithParseCache(cache),
		interpreter.WithLogger(logger.New("script", rel)),
	}
	if cfg.StrictArity {
		opts = append(opts, interpreter.WithStrictArity())
	}
	interp, err := interpreter.New(opts...)
	if err != nil {
		return TestResult{Path: rel, Result: Error, Message: err.Error()}
	}

	start := time.Now()
	_, evalErr := interp.EvalContext(ctx, string(source))
	tr := TestResult{Path: rel, Elapsed: time.Since(start)}
	tr.Result, tr.Message = exp.check(out.String(), evalErr)
	return tr
}

type expectation struct {
	output  *string
	errKind string
}

// loadExpectation reads base.out or base.err. It returns nil when neither
// exists.
func loadExpectation(base string) (*expectation, error) {
	if data, err := ioutil.ReadFile(base + OutExt); err == nil {
		s := string(data)
		return &expectation{output: &s}, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if data, err := ioutil.ReadFile(base + ErrExt); err == nil {
		kind := strings.TrimSpace(string(data))
		if kind == "" {
			return nil, fmt.Errorf("%s is empty", base+ErrExt)
		}
		return &expectation{errKind: kind}, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return nil, nil
}

func (e *expectation) check(output string, err error) (Result, string) {
	if e.output != nil {
		if err != nil {
			d := interpreter.Diagnose(err)
			return Fail, fmt.Sprintf("unexpected %s: %s", d.Kind, d.Message)
		}
		if output != *e.output {
			return Fail, fmt.Sprintf("output mismatch: want %q, got %q", *e.output, output)
		}
		return Pass, ""
	}

	if err == nil {
		return Fail, "expected " + e.errKind + " error, run succeeded"
	}
	if d := interpreter.Diagnose(err); d.Kind != e.errKind {
		return Fail, fmt.Sprintf("expected %s error, got %s: %s", e.errKind, d.Kind, d.Message)
	}
	return Pass, ""
}
