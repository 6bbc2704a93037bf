package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/example/fnscript/interpreter"
)

var configFileFlag = cli.StringFlag{
	Name:  "config",
	Usage: "TOML configuration file",
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type limitsConfig struct {
	MaxSteps    int64
	MaxDepth    int
	Timeout     time.Duration
	StrictArity bool
}

type cacheConfig struct {
	Size int // 0 disables the parse cache
}

type outputConfig struct {
	Verbosity int
	NoColor   bool
	History   string `toml:",omitempty"`
}

type fnscriptConfig struct {
	Limits limitsConfig
	Cache  cacheConfig
	Output outputConfig
}

func defaultConfig() fnscriptConfig {
	return fnscriptConfig{
		Limits: limitsConfig{
			MaxSteps: interpreter.DefaultLimits.MaxSteps,
			MaxDepth: interpreter.DefaultLimits.MaxDepth,
		},
		Cache:  cacheConfig{Size: interpreter.DefaultCacheSize},
		Output: outputConfig{Verbosity: defaultVerbosity},
	}
}

func loadConfig(file string, cfg *fnscriptConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads defaults, then the config file, then flags.
func makeConfig(ctx *cli.Context) (fnscriptConfig, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.GlobalIsSet(maxStepsFlag.Name) {
		cfg.Limits.MaxSteps = ctx.GlobalInt64(maxStepsFlag.Name)
	}
	if ctx.GlobalIsSet(maxDepthFlag.Name) {
		cfg.Limits.MaxDepth = ctx.GlobalInt(maxDepthFlag.Name)
	}
	if ctx.GlobalIsSet(timeoutFlag.Name) {
		cfg.Limits.Timeout = ctx.GlobalDuration(timeoutFlag.Name)
	}
	if ctx.GlobalIsSet(strictArityFlag.Name) {
		cfg.Limits.StrictArity = ctx.GlobalBool(strictArityFlag.Name)
	}
	if ctx.GlobalIsSet(cacheSizeFlag.Name) {
		cfg.Cache.Size = ctx.GlobalInt(cacheSizeFlag.Name)
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Output.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	if ctx.GlobalIsSet(noColorFlag.Name) {
		cfg.Output.NoColor = ctx.GlobalBool(noColorFlag.Name)
	}

	if cfg.Limits.MaxSteps < 0 || cfg.Limits.MaxDepth < 0 {
		return cfg, fmt.Errorf("limits must not be negative (max-steps %d, max-depth %d)", cfg.Limits.MaxSteps, cfg.Limits.MaxDepth)
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context, stdout io.Writer) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := stdout
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}

func (cfg fnscriptConfig) limits() interpreter.Limits {
	return interpreter.Limits{MaxSteps: cfg.Limits.MaxSteps, MaxDepth: cfg.Limits.MaxDepth}
}
