package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/inconshreveable/log15"
	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPrompter struct {
	inputs  []interface{} // string or error
	prompts []string
}

func (p *scriptedPrompter) Prompt(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.inputs) == 0 {
		return "", io.EOF
	}
	next := p.inputs[0]
	p.inputs = p.inputs[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func TestReadSourceSingleLine(t *testing.T) {
	p := &scriptedPrompter{inputs: []interface{}{"let a = 1;"}}
	src, ok := readSource(p)
	assert.True(t, ok)
	assert.Equal(t, "let a = 1;", src)
	assert.Equal(t, []string{promptMain}, p.prompts)
}

func TestReadSourceContinuation(t *testing.T) {
	p := &scriptedPrompter{inputs: []interface{}{"fn add(a, b) {", "  a + b", "}"}}
	src, ok := readSource(p)
	assert.True(t, ok)
	assert.Equal(t, "fn add(a, b) {\n  a + b\n}", src)
	assert.Equal(t, []string{promptMain, promptCont, promptCont}, p.prompts)
}

func TestReadSourceContinuesOpenString(t *testing.T) {
	p := &scriptedPrompter{inputs: []interface{}{`print("first`, `second")`}}
	src, ok := readSource(p)
	assert.True(t, ok)
	assert.Equal(t, "print(\"first\nsecond\")", src)
	assert.Equal(t, []string{promptMain, promptCont}, p.prompts)
}

func TestReadSourceSyntaxErrorEndsInput(t *testing.T) {
	p := &scriptedPrompter{inputs: []interface{}{"let = 1;", "never read"}}
	src, ok := readSource(p)
	assert.True(t, ok)
	assert.Equal(t, "let = 1;", src)
}

func TestReadSourceEOF(t *testing.T) {
	_, ok := readSource(&scriptedPrompter{})
	assert.False(t, ok)

	_, ok = readSource(&scriptedPrompter{inputs: []interface{}{"fn f() {"}})
	assert.False(t, ok)
}

func TestReadSourceAbort(t *testing.T) {
	p := &scriptedPrompter{inputs: []interface{}{"fn f() {", liner.ErrPromptAborted}}
	src, ok := readSource(p)
	assert.True(t, ok)
	assert.Empty(t, src)
}

func newTestSession(t *testing.T) (*replSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())

	var out, errOut bytes.Buffer
	s, err := newReplSession(defaultConfig(), logger, &out, &errOut)
	require.NoError(t, err)
	return s, &out, &errOut
}

func TestReplSessionKeepsBindings(t *testing.T) {
	s, out, errOut := newTestSession(t)
	assert.True(t, s.handle("let x = 40;"))
	assert.True(t, s.handle("x + 2"))
	assert.True(t, s.handle(`print("side effect")`))
	assert.Equal(t, "40\n42\nside effect\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestReplSessionErrorsDoNotEndSession(t *testing.T) {
	s, out, errOut := newTestSession(t)
	assert.True(t, s.handle("missing"))
	assert.Contains(t, errOut.String(), "error[UnresolvedIdentifier]: missing is not defined\n  --> <repl>:1:1")
	assert.True(t, s.handle("1 + 1"))
	assert.Equal(t, "2\n", out.String())
}

func TestReplSessionCommands(t *testing.T) {
	s, out, errOut := newTestSession(t)
	s.handle("let x = 40;")

	assert.True(t, s.handle(":env"))
	assert.Contains(t, out.String(), "let   x = 40\n")
	assert.Contains(t, out.String(), "const print = <native fn print>\n")

	assert.True(t, s.handle(":reset"))
	s.handle("x")
	assert.Contains(t, errOut.String(), "error[UnresolvedIdentifier]")

	assert.True(t, s.handle(":help"))
	assert.Contains(t, out.String(), ":quit")

	assert.True(t, s.handle(":nope"))
	assert.Contains(t, errOut.String(), "unknown command :nope")

	assert.False(t, s.handle(":quit"))
}
