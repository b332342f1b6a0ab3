// Package config merges defaults, the config file and command-line flags
// into the settings used by the generate command.
package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/mark3labs/swagger2std/internal/emitter"
)

// DefaultFile is read from the working directory when --config is not set.
const DefaultFile = "swagger2std.yaml"

type Config struct {
	Out         string   `koanf:"out"`
	Format      string   `koanf:"format"`
	Split       bool     `koanf:"split"`
	DryRun      bool     `koanf:"dry-run"`
	Force       bool     `koanf:"force"`
	Verbose     bool     `koanf:"verbose"`
	IncludeTags []string `koanf:"include-tags"`
	ExcludeTags []string `koanf:"exclude-tags"`
	// Methods and PathPatterns narrow operations further; empty keeps all.
	Methods      []string `koanf:"methods"`
	PathPatterns []string `koanf:"path-patterns"`
	// AllowFileRefs lets a remote OpenAPI 3 document follow file refs.
	AllowFileRefs bool     `koanf:"allow-file-refs"`
	Origins       []Origin `koanf:"origins"`

	// Path of the config file that was read, if any.
	File string `koanf:"-"`
}

// Origin is one input document and the namespace its models live under.
type Origin struct {
	Name  string `koanf:"name"`
	Input string `koanf:"input"`
	// Nil means true.
	UsingOperationID *bool `koanf:"using-operation-id"`
}

// UsesOperationID reports whether interfaces are named after operationIds.
func (o Origin) UsesOperationID() bool {
	return o.UsingOperationID == nil || *o.UsingOperationID
}

var knownKeys = map[string]bool{
	"out": true, "format": true, "split": true, "dry-run": true, "force": true,
	"verbose": true, "include-tags": true, "exclude-tags": true, "methods": true,
	"path-patterns": true, "allow-file-refs": true, "origins": true,
}

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true,
}

var knownOriginKeys = map[string]bool{"name": true, "input": true, "using-operation-id": true}

func defaults() map[string]any {
	return map[string]any{
		"out":    "api",
		"format": string(emitter.FormatJSON),
	}
}

// BindSourceFlags registers the flags that select and filter input
// documents. --config and --verbose are expected as persistent flags on the
// root command.
func BindSourceFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document (replaces config origins)")
	flags.String("origin-name", "", "Namespace for the input's models, e.g. petstore")
	flags.Bool("using-operation-id", true, "Name interfaces after operationId instead of method and URL")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.StringArray("path-patterns", nil, "Only include operations whose path matches this regular expression (repeatable)")
	flags.Bool("allow-file-refs", false, "Let a remote OpenAPI 3 document follow local file refs")
}

// BindFlags registers the source flags plus the output flags of generate.
func BindFlags(flags *pflag.FlagSet) {
	BindSourceFlags(flags)
	flags.StringP("out", "o", "", "Output directory (default \"api\")")
	flags.StringP("format", "f", "", "Output format (json|yaml|msgpack)")
	flags.Bool("split", false, "Write one file per module plus a baseClasses file")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")
}

// Load reads, in increasing precedence, the defaults, the config file and
// every flag the user changed. The result is normalized and validated.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile := getString(flags, "config")
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}
	if configFile != "" {
		fileK := koanf.New(".")
		if err := fileK.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", configFile, err)
		}
		if err := checkKeys(fileK); err != nil {
			return nil, fmt.Errorf("config file %q: %w", configFile, err)
		}
		if err := k.Merge(fileK); err != nil {
			return nil, fmt.Errorf("merging config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(flags)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.File = configFile

	// Without --input, the single-origin flags adjust a lone configured origin.
	if !flags.Changed("input") && (flags.Changed("origin-name") || flags.Changed("using-operation-id")) {
		if len(cfg.Origins) != 1 {
			return nil, fmt.Errorf("--origin-name and --using-operation-id need --input or exactly one configured origin")
		}
		if flags.Changed("origin-name") {
			cfg.Origins[0].Name = getString(flags, "origin-name")
		}
		if flags.Changed("using-operation-id") {
			v := getBool(flags, "using-operation-id")
			cfg.Origins[0].UsingOperationID = &v
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func checkKeys(k *koanf.Koanf) error {
	for _, key := range k.Keys() {
		top, _, _ := strings.Cut(key, ".")
		if !knownKeys[top] {
			return fmt.Errorf("unknown field %q", key)
		}
	}
	for i, origin := range k.Slices("origins") {
		for _, key := range origin.Keys() {
			if !knownOriginKeys[key] {
				return fmt.Errorf("origins[%d]: unknown field %q", i, key)
			}
		}
	}
	return nil
}

func getString(flags *pflag.FlagSet, name string) string {
	v, err := flags.GetString(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func getBool(flags *pflag.FlagSet, name string) bool {
	v, err := flags.GetBool(name)
	return err == nil && v
}

func buildFlagsMap(flags *pflag.FlagSet) map[string]any {
	m := make(map[string]any)
	if flags == nil {
		return m
	}

	for _, name := range []string{"out", "format"} {
		if flags.Changed(name) {
			m[name] = getString(flags, name)
		}
	}
	for _, name := range []string{"split", "dry-run", "force", "verbose", "allow-file-refs"} {
		if flags.Changed(name) {
			m[name] = getBool(flags, name)
		}
	}
	for _, name := range []string{"include-tags", "exclude-tags", "methods"} {
		if !flags.Changed(name) {
			continue
		}
		if v, err := flags.GetStringSlice(name); err == nil {
			m[name] = v
		}
	}

	if flags.Changed("path-patterns") {
		if v, err := flags.GetStringArray("path-patterns"); err == nil {
			m["path-patterns"] = v
		}
	}

	if flags.Changed("input") {
		origin := map[string]any{
			"name":  getString(flags, "origin-name"),
			"input": getString(flags, "input"),
		}
		if flags.Lookup("using-operation-id") != nil {
			origin["using-operation-id"] = getBool(flags, "using-operation-id")
		}
		m["origins"] = []any{origin}
	}
	return m
}

// Normalize trims values and splits comma-separated tags.
func (c *Config) Normalize() {
	c.Out = strings.TrimSpace(c.Out)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.Methods = sanitizeTags(c.Methods)
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToLower(m)
	}
	c.PathPatterns = trimAll(c.PathPatterns)
	for i := range c.Origins {
		c.Origins[i].Name = strings.TrimSpace(c.Origins[i].Name)
		c.Origins[i].Input = strings.TrimSpace(c.Origins[i].Input)
	}
}

func (c *Config) Validate() error {
	if len(c.Origins) == 0 {
		return fmt.Errorf("--input is required (set via flag or origins in the config file)")
	}
	names := make(map[string]bool, len(c.Origins))
	for i, o := range c.Origins {
		if o.Input == "" {
			return fmt.Errorf("origins[%d]: input is required", i)
		}
		if names[o.Name] {
			if o.Name == "" {
				return fmt.Errorf("origins[%d]: name is required when more than one origin is configured", i)
			}
			return fmt.Errorf("origins[%d]: duplicate name %q", i, o.Name)
		}
		names[o.Name] = true
	}
	if c.Out == "" {
		return fmt.Errorf("output directory is required")
	}
	if _, err := emitter.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("invalid format %q (valid: %s)", c.Format, strings.Join(formatNames(), ", "))
	}
	for _, m := range c.Methods {
		if !httpMethods[m] {
			return fmt.Errorf("invalid method %q (valid: get, put, post, delete, options, head, patch)", m)
		}
	}
	for _, p := range c.PathPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid path pattern %q: %w", p, err)
		}
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return fmt.Errorf("include/exclude tags overlap: %s", strings.Join(overlap, ", "))
	}
	return nil
}

func formatNames() []string {
	out := make([]string, 0, len(emitter.Formats))
	for _, f := range emitter.Formats {
		out = append(out, string(f))
	}
	return out
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	var result []string
	for _, tag := range tags {
		for _, part := range strings.Split(tag, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if _, exists := seen[trimmed]; exists {
				continue
			}
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}

// trimAll drops blank entries without splitting on commas, which may be
// part of a regular expression.
func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	sort.Strings(result)
	return result
}
