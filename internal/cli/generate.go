package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/swagger2std/internal/config"
	"github.com/mark3labs/swagger2std/internal/emitter"
	"github.com/mark3labs/swagger2std/internal/model"
	"github.com/mark3labs/swagger2std/internal/normalize"
	"github.com/mark3labs/swagger2std/internal/spec"
)

// runEnv carries what a command writes to.
type runEnv struct {
	Stdout io.Writer
	Stderr io.Writer
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the standard data source for one or more Swagger documents",
		Long: "Load each configured origin, normalize it into modules and base classes, " +
			"and write the result. Options can be provided via flags, a config file, or defaults.",
		Example: strings.TrimSpace(`  swagger2std generate --input petstore.yaml --origin-name petstore --out ./api
  swagger2std --config swagger2std.yaml generate --format yaml --split --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg, runEnv{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("%s: %v", cmd.Name(), err))
	}
	return cfg, nil
}

func runGenerate(ctx context.Context, cfg *config.Config, env runEnv) error {
	logger := newLogger(env.Stderr, cfg.Verbose)
	defer func() { _ = logger.Sync() }()

	sources, err := loadSources(ctx, cfg, logger)
	if err != nil {
		return err
	}

	format, err := emitter.ParseFormat(cfg.Format)
	if err != nil {
		return newUsageError(err.Error())
	}
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	res, err := emitter.Emit(ctx, sources, emitter.Options{
		OutDir: cfg.Out,
		Format: format,
		Split:  cfg.Split,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: logger,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	paths := make([]string, 0, len(res.Planned))
	for _, p := range res.Planned {
		paths = append(paths, p.RelPath)
	}
	if cfg.DryRun {
		printPlan(env.Stdout, absOut, paths)
		return nil
	}
	logger.Info("wrote data sources", zap.String("out", absOut), zap.Int("files", len(paths)))
	return nil
}

// loadSources loads and normalizes every origin concurrently. The result
// keeps the configured origin order.
func loadSources(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]*model.DataSource, error) {
	sources := make([]*model.DataSource, len(cfg.Origins))
	g, gctx := errgroup.WithContext(ctx)
	for i, origin := range cfg.Origins {
		i, origin := i, origin
		g.Go(func() error {
			olog := logger.With(zap.String("input", origin.Input))
			doc, err := spec.Load(gctx, origin.Input,
				spec.WithLogger(olog),
				spec.WithAllowFileRefs(cfg.AllowFileRefs),
			)
			if err != nil {
				return specUsageError(err)
			}
			sources[i] = normalize.Transform(doc, origin.UsesOperationID(), origin.Name,
				normalize.WithLogger(olog),
				normalize.WithOperationFilters(
					spec.WithIncludeTags(cfg.IncludeTags),
					spec.WithExcludeTags(cfg.ExcludeTags),
					spec.WithMethods(cfg.Methods),
					spec.WithPathPatterns(cfg.PathPatterns),
				),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// specUsageError maps structured spec errors into friendly messages.
func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := "spec: " + strings.TrimPrefix(se.Message, "spec: ")
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

func printPlan(w io.Writer, outDir string, relPaths []string) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(relPaths))
	for _, p := range relPaths {
		fmt.Fprintf(w, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	if strings.Contains(lower, "distinct name") {
		return newUsageError(msg)
	}
	return err
}
