package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	flags.StringP("config", "c", "", "")
	flags.BoolP("verbose", "v", false, "")
	BindFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_FlagsOnly(t *testing.T) {
	cfg, err := Load(newFlags(t,
		"--input", "spec.yaml",
		"--origin-name", "petstore",
		"--using-operation-id=false",
		"--out", "./build",
		"--format", "YAML",
		"--split",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--dry-run",
		"--force",
		"--verbose",
	))
	require.NoError(t, err)

	assert.Equal(t, "./build", cfg.Out)
	assert.Equal(t, "yaml", cfg.Format)
	assert.True(t, cfg.Split)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"foo", "bar"}, cfg.IncludeTags)
	assert.Equal(t, []string{"baz"}, cfg.ExcludeTags)
	require.Len(t, cfg.Origins, 1)
	assert.Equal(t, "petstore", cfg.Origins[0].Name)
	assert.Equal(t, "spec.yaml", cfg.Origins[0].Input)
	assert.False(t, cfg.Origins[0].UsesOperationID())
	assert.Empty(t, cfg.File)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlags(t, "--input", "spec.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "api", cfg.Out)
	assert.Equal(t, "json", cfg.Format)
	assert.False(t, cfg.Split)
	assert.True(t, cfg.Origins[0].UsesOperationID())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
out: from-config
format: msgpack
include-tags: [cfgFoo]
exclude-tags: cfgBar
dry-run: true
force: false
verbose: true
origins:
  - name: petstore
    input: config-spec.yaml
  - name: users
    input: https://example.com/users.json
    using-operation-id: false
`)
	cfg, err := Load(newFlags(t,
		"--config", path,
		"--include-tags", "flagTag",
		"--dry-run=false",
		"--force",
	))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "from-config", cfg.Out)
	assert.Equal(t, "msgpack", cfg.Format)
	assert.Equal(t, []string{"flagTag"}, cfg.IncludeTags)
	assert.Equal(t, []string{"cfgBar"}, cfg.ExcludeTags)
	assert.False(t, cfg.DryRun)
	assert.True(t, cfg.Force)
	assert.True(t, cfg.Verbose)

	require.Len(t, cfg.Origins, 2)
	assert.Equal(t, Origin{Name: "petstore", Input: "config-spec.yaml"}, cfg.Origins[0])
	assert.True(t, cfg.Origins[0].UsesOperationID())
	assert.False(t, cfg.Origins[1].UsesOperationID())
}

func TestLoad_InputFlagReplacesOrigins(t *testing.T) {
	path := writeConfig(t, `
origins:
  - { name: a, input: a.yaml }
  - { name: b, input: b.yaml }
`)
	cfg, err := Load(newFlags(t, "--config", path, "--input", "flag.yaml"))
	require.NoError(t, err)
	require.Len(t, cfg.Origins, 1)
	assert.Equal(t, "flag.yaml", cfg.Origins[0].Input)
	assert.Empty(t, cfg.Origins[0].Name)
}

func TestLoad_OriginFlagsAdjustSingleOrigin(t *testing.T) {
	path := writeConfig(t, "origins:\n  - { name: a, input: a.yaml }\n")
	cfg, err := Load(newFlags(t, "--config", path, "--origin-name", "renamed", "--using-operation-id=false"))
	require.NoError(t, err)
	assert.Equal(t, "renamed", cfg.Origins[0].Name)
	assert.Equal(t, "a.yaml", cfg.Origins[0].Input)
	assert.False(t, cfg.Origins[0].UsesOperationID())

	path = writeConfig(t, "origins:\n  - { name: a, input: a.yaml }\n  - { name: b, input: b.yaml }\n")
	_, err = Load(newFlags(t, "--config", path, "--origin-name", "x"))
	assert.ErrorContains(t, err, "exactly one configured origin")
}

func TestLoad_UnknownFields(t *testing.T) {
	path := writeConfig(t, "lang: go\norigins:\n  - { input: a.yaml }\n")
	_, err := Load(newFlags(t, "--config", path))
	assert.ErrorContains(t, err, `unknown field "lang"`)

	path = writeConfig(t, "origins:\n  - { input: a.yaml, toolName: x }\n")
	_, err = Load(newFlags(t, "--config", path))
	assert.ErrorContains(t, err, `origins[0]: unknown field "toolName"`)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.ErrorContains(t, err, "reading config file")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	valid := func() Config {
		return Config{Out: "out", Format: "json", Origins: []Origin{{Input: "spec.yaml"}}}
	}
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no origins", mutate: func(c *Config) { c.Origins = nil }, errContains: "--input is required"},
		{name: "empty input", mutate: func(c *Config) { c.Origins[0].Input = "" }, errContains: "input is required"},
		{name: "missing out", mutate: func(c *Config) { c.Out = "" }, errContains: "output directory is required"},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xml" }, errContains: "invalid format"},
		{
			name: "tag overlap",
			mutate: func(c *Config) {
				c.IncludeTags = []string{"a", "b"}
				c.ExcludeTags = []string{"b"}
			},
			errContains: "overlap: b",
		},
		{
			name: "two unnamed origins",
			mutate: func(c *Config) {
				c.Origins = append(c.Origins, Origin{Input: "other.yaml"})
			},
			errContains: "name is required",
		},
		{
			name: "duplicate names",
			mutate: func(c *Config) {
				c.Origins = []Origin{{Name: "a", Input: "1"}, {Name: "a", Input: "2"}}
			},
			errContains: `duplicate name "a"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestSanitizeTags(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b", "c"}, sanitizeTags([]string{" a ", "b,c", "a", ""}))
	assert.Nil(t, sanitizeTags(nil))
}

func TestLoad_OperationFilters(t *testing.T) {
	path := writeConfig(t, `
methods: [GET, post]
path-patterns: ["^/pet/\\d{1,3}$"]
allow-file-refs: true
origins:
  - { input: a.yaml }
`)
	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "post"}, cfg.Methods)
	assert.Equal(t, []string{`^/pet/\d{1,3}$`}, cfg.PathPatterns)
	assert.True(t, cfg.AllowFileRefs)

	cfg, err = Load(newFlags(t,
		"--input", "a.yaml",
		"--methods", "delete",
		"--path-patterns", "^/store/.{1,2}",
		"--path-patterns", "^/user",
		"--allow-file-refs",
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"delete"}, cfg.Methods)
	assert.Equal(t, []string{"^/store/.{1,2}", "^/user"}, cfg.PathPatterns, "patterns are not split on commas")
	assert.True(t, cfg.AllowFileRefs)
}

func TestLoad_InvalidOperationFilters(t *testing.T) {
	_, err := Load(newFlags(t, "--input", "a.yaml", "--methods", "fetch"))
	assert.ErrorContains(t, err, `invalid method "fetch"`)

	_, err = Load(newFlags(t, "--input", "a.yaml", "--path-patterns", "("))
	assert.ErrorContains(t, err, "invalid path pattern")
}
