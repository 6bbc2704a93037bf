package main

import (
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const defaultVerbosity = int(log15.LvlWarn)

// newLogger writes records at or above verbosity to w. Terminals get the
// coloured terminal format, everything else logfmt.
func newLogger(w io.Writer, cfg outputConfig) log15.Logger {
	format := log15.LogfmtFormat()
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) && !cfg.NoColor {
		w = colorable.NewColorable(f)
		format = log15.TerminalFormat()
	}
	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(log15.Lvl(cfg.Verbosity), log15.StreamHandler(w, format)))
	return logger
}
