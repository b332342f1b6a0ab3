package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2std/internal/config"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2std configuration file",
		Long:  "Scaffold a commented swagger2std configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
			}
			return initRunner(cmd.Context(), cfg, runEnv{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
		},
	}

	cmd.Flags().String("out", config.DefaultFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig, env runEnv) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = config.DefaultFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(env.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config. Every value shown is
// valid, so the file loads as-is once an origin input exists.
const sampleConfigYAML = `# swagger2std configuration (YAML)
# Command-line flags override config values.

# Output directory.
out: ./api

# Output format: json, yaml or msgpack.
format: json

# Write <name>/mods/<module>.<ext> and <name>/baseClasses.<ext>
# instead of a single <name>.<ext> per origin.
split: false

# Only include / exclude operations with these tags.
include-tags: []
exclude-tags: []

# Only include operations using these HTTP methods, or whose path matches
# one of these regular expressions. Empty keeps everything.
methods: []
path-patterns: []

# Let a remote OpenAPI 3 document follow local file refs.
allow-file-refs: false

# Preview planned outputs without writing files.
dry-run: false

# Write into a non-empty output directory.
force: false

# Enable verbose (debug) logging.
verbose: false

# One entry per input document. The name namespaces model references
# (defs.<name>.Pet) and names the output file. --input replaces this list.
origins:
  - name: petstore
    input: ./petstore.yaml
    # Name interfaces after operationId (true) or method and URL (false).
    using-operation-id: true
`
