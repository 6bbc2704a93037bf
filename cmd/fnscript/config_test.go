package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fnscript/interpreter"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, interpreter.DefaultLimits, cfg.limits())
	assert.Equal(t, interpreter.DefaultCacheSize, cfg.Cache.Size)
	assert.Equal(t, defaultVerbosity, cfg.Output.Verbosity)
}

func TestLoadConfig(t *testing.T) {
	path := writeScript(t, "fnscript.toml", `
[Limits]
MaxSteps = 1000
MaxDepth = 64
StrictArity = true

[Cache]
Size = 8
`)
	cfg := defaultConfig()
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, interpreter.Limits{MaxSteps: 1000, MaxDepth: 64}, cfg.limits())
	assert.True(t, cfg.Limits.StrictArity)
	assert.Equal(t, 8, cfg.Cache.Size)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, defaultVerbosity, cfg.Output.Verbosity)
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := writeScript(t, "fnscript.toml", "[Limits]\nBogus = 1\n")
	cfg := defaultConfig()
	err := loadConfig(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bogus")
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := defaultConfig()
	assert.Error(t, loadConfig(filepath.Join("does", "not", "exist.toml"), &cfg))
}

// Flags override the file, and dumpconfig output loads back as --config.
func TestDumpConfigAppliesFlags(t *testing.T) {
	path := writeScript(t, "fnscript.toml", "[Limits]\nMaxSteps = 1000\nMaxDepth = 64\n\n[Cache]\nSize = 8\n")
	out := filepath.Join(filepath.Dir(path), "dump.toml")

	_, _, err := runApp(t, "--config", path, "--max-depth", "50", "--timeout", "2s", "dumpconfig", out)
	require.NoError(t, err)

	cfg := defaultConfig()
	require.NoError(t, loadConfig(out, &cfg))
	assert.Equal(t, int64(1000), cfg.Limits.MaxSteps)
	assert.Equal(t, 50, cfg.Limits.MaxDepth)
	assert.Equal(t, 2*time.Second, cfg.Limits.Timeout)
	assert.Equal(t, 8, cfg.Cache.Size)
	assert.True(t, cfg.Output.NoColor)
}

func TestDumpConfigStdout(t *testing.T) {
	stdout, _, err := runApp(t, "dumpconfig")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[Limits]")
	assert.Contains(t, stdout, "MaxDepth = 10000")
	assert.Contains(t, stdout, "[Cache]")
	assert.Contains(t, stdout, "[Output]")
}

func TestBadConfigFails(t *testing.T) {
	path := writeScript(t, "fnscript.toml", "[Limits]\nMaxDepth = \"deep\"\n")
	_, _, err := runApp(t, "--config", path, "run", "-e", "1")
	assert.Error(t, err)
}
