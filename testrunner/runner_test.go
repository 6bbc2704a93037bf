package testrunner

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fnscript/interpreter"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "fnscript-runner")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func resultsByPath(results []TestResult) map[string]TestResult {
	m := make(map[string]TestResult, len(results))
	for _, r := range results {
		m[filepath.ToSlash(r.Path)] = r
	}
	return m
}

func TestRunTestdata(t *testing.T) {
	results, summary, err := Run(context.Background(), Config{
		Dir:      "testdata",
		Parallel: 4,
		Timeout:  5 * time.Second,
		Limits:   interpreter.Limits{MaxDepth: 200},
	})
	require.NoError(t, err)

	for _, r := range results {
		if r.Result == Fail || r.Result == Error {
			t.Errorf("%s %s: %s", r.Result, r.Path, r.Message)
		}
	}
	assert.True(t, summary.OK())
	assert.Equal(t, 11, summary.Total)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, summary.Total, summary.Passed+summary.Skipped)

	byPath := resultsByPath(results)
	assert.Equal(t, Skip, byPath["pending/untested.fns"].Result)
	assert.Equal(t, Pass, byPath["errors/runaway.fns"].Result)
}

func TestRunFilter(t *testing.T) {
	results, summary, err := Run(context.Background(), Config{Dir: "testdata", Filter: "errors"})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Total)
	for _, r := range results {
		assert.Contains(t, r.Path, "errors")
	}
}

func TestResultsSortedByPath(t *testing.T) {
	results, _, err := Run(context.Background(), Config{Dir: "testdata", Parallel: 8})
	require.NoError(t, err)
	for i := 1; i < len(results); i++ {
		assert.True(t, results[i-1].Path < results[i].Path, "%s before %s", results[i-1].Path, results[i].Path)
	}
}

func TestRunReportsFailures(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, dir, "wrong_output.fns", `print(1)`)
	writeFile(t, dir, "wrong_output.out", "2\n")
	writeFile(t, dir, "unexpected_error.fns", `missing`)
	writeFile(t, dir, "unexpected_error.out", "")
	writeFile(t, dir, "wrong_kind.fns", `1 = 2`)
	writeFile(t, dir, "wrong_kind.err", "NotCallable\n")
	writeFile(t, dir, "no_error.fns", `print(1)`)
	writeFile(t, dir, "no_error.err", "ConstAssignment")
	writeFile(t, dir, "empty_err.fns", `1`)
	writeFile(t, dir, "empty_err.err", "  \n")

	results, summary, err := Run(context.Background(), Config{Dir: dir})
	require.NoError(t, err)
	assert.False(t, summary.OK())
	assert.Equal(t, 4, summary.Failed)
	assert.Equal(t, 1, summary.Errors)

	byPath := resultsByPath(results)
	assert.Contains(t, byPath["wrong_output.fns"].Message, "output mismatch")
	assert.Contains(t, byPath["unexpected_error.fns"].Message, "UnresolvedIdentifier")
	assert.Contains(t, byPath["wrong_kind.fns"].Message, "InvalidAssignmentTarget")
	assert.Contains(t, byPath["no_error.fns"].Message, "run succeeded")
	assert.Equal(t, Error, byPath["empty_err.fns"].Result)
}

func TestRunTimeout(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, dir, "slow.fns", "fn f(n) { f(n + 1) } f(0)")
	writeFile(t, dir, "slow.err", "Canceled")

	results, _, err := Run(context.Background(), Config{
		Dir:     dir,
		Timeout: time.Nanosecond,
		Limits:  interpreter.Limits{MaxSteps: 1 << 40, MaxDepth: 1 << 20},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Pass, results[0].Result, results[0].Message)
}

func TestRunCanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Run(ctx, Config{Dir: "testdata"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMissingDir(t *testing.T) {
	_, _, err := Run(context.Background(), Config{Dir: "does-not-exist"})
	assert.Error(t, err)
}
