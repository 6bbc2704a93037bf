package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/example/fnscript/interpreter"
	"github.com/example/fnscript/parser"
	"github.com/example/fnscript/runtime"
)

const (
	historyFile = ".fnscript_history"
	promptMain  = "> "
	promptCont  = ". "
	replFile    = "<repl>"
)

const replHelp = `:help   show this text
:env    list global bindings
:reset  discard all bindings
:quit   leave the session`

// prompter is the part of liner.State the read loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// readSource reads lines until they parse or fail for a reason other than
// running out of input. ok is false at end of input.
func readSource(p prompter) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return "", true
		}
		if _, err := parser.Parse(src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

type replSession struct {
	cfg    fnscriptConfig
	logger log15.Logger
	interp *interpreter.Interpreter
	out    io.Writer
	errOut io.Writer
}

func newReplSession(cfg fnscriptConfig, logger log15.Logger, out, errOut io.Writer) (*replSession, error) {
	s := &replSession{cfg: cfg, logger: logger, out: out, errOut: errOut}
	return s, s.reset()
}

func (s *replSession) reset() error {
	interp, err := newInterpreter(s.cfg, s.out, s.logger)
	if err != nil {
		return err
	}
	s.interp = interp
	return nil
}

// handle evaluates one input. It returns false when the session should end.
func (s *replSession) handle(src string) bool {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return true
	case strings.HasPrefix(src, ":"):
		return s.command(src)
	}

	ctx, cancel := evalContext(s.cfg.Limits.Timeout)
	defer cancel()
	val, err := s.interp.EvalContext(ctx, src)
	if err != nil {
		printDiagnostic(s.errOut, replFile, err)
		return true
	}
	if val.Type() != runtime.TypeNull {
		valueColor.Fprintln(s.out, runtime.ToString(val))
	}
	return true
}

func (s *replSession) command(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return false
	case ":help":
		fmt.Fprintln(s.out, replHelp)
	case ":env":
		global := s.interp.Global()
		for _, name := range global.Names() {
			val, _ := global.Lookup(name)
			kind := "let"
			if global.IsConstant(name) {
				kind = "const"
			}
			fmt.Fprintf(s.out, "%-5s %s = %s\n", kind, name, runtime.ToString(val))
		}
	case ":reset":
		if err := s.reset(); err != nil {
			printDiagnostic(s.errOut, replFile, err)
		}
	default:
		fmt.Fprintf(s.errOut, "unknown command %s, type :help\n", cmd)
	}
	return true
}

func (h *host) repl(ctx *cli.Context) error {
	cfg, logger, err := h.prepare(ctx)
	if err != nil {
		return err
	}
	session, err := newReplSession(cfg, logger, h.stdout, h.stderr)
	if err != nil {
		return err
	}

	histPath := cfg.Output.History
	if histPath == "" {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		} else {
			logger.Warn("Failed to save history", "path", histPath, "err", err)
		}
	}()

	fmt.Fprintf(h.stdout, "fnscript %s, type :help for commands\n", version)
	for {
		src, ok := readSource(ln)
		if !ok {
			fmt.Fprintln(h.stdout)
			return nil
		}
		if src == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if !session.handle(src) {
			return nil
		}
	}
}
