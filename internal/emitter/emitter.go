// Package emitter writes standard data sources to disk.
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2std/internal/model"
)

// Format selects the serialization of emitted files.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// Formats lists the supported formats in the order they are documented.
var Formats = []Format{FormatJSON, FormatYAML, FormatMsgpack}

// ParseFormat accepts a format name, case-insensitively. "yml" is an alias
// for yaml and the empty string means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("emitter: unsupported format %q", s)
	}
}

// Ext is the file extension used for the format, without the dot.
func (f Format) Ext() string { return string(f) }

// Options controls where and how data sources are written.
type Options struct {
	OutDir string // required
	Format Format // defaults to json
	// Split writes one file per module plus a baseClasses file, under a
	// directory named after the data source.
	Split  bool
	Force  bool // write into a non-empty directory
	DryRun bool // plan only
	Logger *zap.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result lists the planned files in write order.
type Result struct {
	Planned []PlannedFile
}

const defaultSourceName = "api"

// Emit renders every data source and, unless DryRun is set, writes the
// files under OutDir. Data sources must have distinct names.
func Emit(ctx context.Context, sources []*model.DataSource, opts Options) (*Result, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("emitter: no data sources")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	files := map[string][]byte{}
	for _, ds := range sources {
		if ds == nil {
			return nil, fmt.Errorf("emitter: nil data source")
		}
		rendered, err := render(ds, opts, logger)
		if err != nil {
			return nil, err
		}
		for rel, content := range rendered {
			if _, dup := files[rel]; dup {
				return nil, fmt.Errorf("emitter: two data sources render to %s; give each origin a distinct name", rel)
			}
			files[rel] = content
		}
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(ctx, opts.OutDir, rels, files, opts.Force, logger); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

// render maps relative slash-separated paths to file contents. In split
// mode, modules whose file names collide get a numeric suffix.
func render(ds *model.DataSource, opts Options, logger *zap.Logger) (map[string][]byte, error) {
	name := fileName(ds.Name, defaultSourceName)
	ext := opts.Format.Ext()
	files := map[string][]byte{}
	if !opts.Split {
		b, err := encode(ds, opts.Format)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		files[name+"."+ext] = b
		return files, nil
	}

	for _, mod := range ds.Mods {
		base := fileName(mod.Name, "default")
		rel := path.Join(name, "mods", base+"."+ext)
		for n := 2; ; n++ {
			if _, dup := files[rel]; !dup {
				break
			}
			rel = path.Join(name, "mods", fmt.Sprintf("%s-%d.%s", base, n, ext))
		}
		if !strings.HasSuffix(rel, "/"+base+"."+ext) {
			logger.Warn("module file name collides, writing under a suffixed name",
				zap.String("module", mod.Name), zap.String("path", rel))
		}
		b, err := encode(mod, opts.Format)
		if err != nil {
			return nil, fmt.Errorf("encode module %s: %w", mod.Name, err)
		}
		files[rel] = b
	}
	b, err := encode(ds.BaseClasses, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("encode base classes: %w", err)
	}
	files[path.Join(name, "baseClasses."+ext)] = b
	return files, nil
}

func encode(v any, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatMsgpack:
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.SetSortMapKeys(true)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// fileName keeps a name safe to use as a single path element.
func fileName(name, fallback string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". -")
	if out == "" {
		return fallback
	}
	return out
}

func writeFiles(ctx context.Context, outDir string, rels []string, files map[string][]byte, force bool, logger *zap.Logger) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("emitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(abs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		if err := writeAtomic(p, files[rel]); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		logger.Debug("wrote file", zap.String("path", p), zap.Int("bytes", len(files[rel])))
	}
	return nil
}

// writeAtomic writes through a temp file in the target directory and
// renames it into place.
func writeAtomic(p string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, p); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
