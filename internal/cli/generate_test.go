package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2std/internal/config"
	"github.com/mark3labs/swagger2std/internal/spec"
)

func captureGenerate(t *testing.T) **config.Config {
	t.Helper()
	var captured *config.Config
	generateRunner = func(ctx context.Context, cfg *config.Config, env runEnv) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })
	return &captured
}

func newTestRoot(args ...string) *cobra.Command {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured := captureGenerate(t)

	root := newTestRoot(
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--origin-name", "petstore",
		"--out", "./build",
		"--format", "yaml",
		"--split",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--dry-run",
		"--force",
	)
	require.NoError(t, root.Execute())

	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "./build", cfg.Out)
	assert.Equal(t, "yaml", cfg.Format)
	assert.True(t, cfg.Split)
	assert.Equal(t, []string{"foo", "bar"}, cfg.IncludeTags)
	assert.Equal(t, []string{"baz"}, cfg.ExcludeTags)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)
	require.Len(t, cfg.Origins, 1)
	assert.Equal(t, "petstore", cfg.Origins[0].Name)
	assert.Equal(t, "spec.yaml", cfg.Origins[0].Input)
	assert.True(t, cfg.Origins[0].UsesOperationID())
}

func TestGenerateConfigPrecedence(t *testing.T) {
	captured := captureGenerate(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`out: from-config
format: msgpack
include-tags: [cfgFoo]
exclude-tags: cfgBar
dry-run: true
verbose: true
origins:
  - name: petstore
    input: config-spec.yaml
`), 0o600))

	root := newTestRoot(
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--dry-run=false",
		"--force",
	)
	require.NoError(t, root.Execute())

	cfg := *captured
	require.NotNil(t, cfg)
	assert.Equal(t, "from-config", cfg.Out)
	assert.Equal(t, "msgpack", cfg.Format)
	assert.Equal(t, []string{"flagTag"}, cfg.IncludeTags)
	assert.Equal(t, []string{"cfgBar"}, cfg.ExcludeTags)
	assert.False(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)
	require.Len(t, cfg.Origins, 1)
	assert.Equal(t, "flag-spec.yaml", cfg.Origins[0].Input)
	assert.Empty(t, cfg.Origins[0].Name, "--input replaces configured origins")
}

func TestGenerateConfig_UsageErrors(t *testing.T) {
	captureGenerate(t)

	unknown := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("lang: go\n"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing input", args: []string{"generate"}, want: "--input is required"},
		{name: "bad format", args: []string{"generate", "--input", "a.yaml", "--format", "xml"}, want: "invalid format"},
		{name: "tag overlap", args: []string{"generate", "--input", "a.yaml", "--include-tags", "a", "--exclude-tags", "a"}, want: "overlap"},
		{name: "unknown field", args: []string{"--config", unknown, "generate", "--input", "a.yaml"}, want: `unknown field "lang"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestRoot(tt.args...).Execute()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	t.Parallel()
	err := newTestRoot("generate", "--unknown-flag").Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "unknown flag")
	assert.Contains(t, err.Error(), "Usage:")
}

func TestSpecUsageError(t *testing.T) {
	t.Parallel()
	err := specUsageError(&spec.SpecError{
		Code:        spec.ParseError,
		Message:     "cannot parse",
		Location:    "spec.yaml",
		JSONPointer: "/paths",
	})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, "spec: cannot parse\nLocation: spec.yaml\nPointer: /paths", err.Error())

	plain := errors.New("boom")
	assert.Same(t, plain, specUsageError(plain))
}

func TestWrapOutputError(t *testing.T) {
	t.Parallel()
	err := wrapOutputError(errors.New(`emitter: output directory "/x" is not empty (use --force to overwrite)`), "/x")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "Hint:")

	other := errors.New("encode: boom")
	assert.Same(t, other, wrapOutputError(other, "/x"))
}

func TestPrintPlan(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	printPlan(&buf, "/out", []string{"a.json", "b.json"})
	assert.Equal(t, "Planned writes to /out (2 files):\n- a.json\n- b.json\n", buf.String())
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(newUsageError("bad flag")))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}
