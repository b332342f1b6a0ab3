package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/bndr/gotabulate"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2std/internal/config"
	"github.com/mark3labs/swagger2std/internal/model"
)

var inspectRunner = runInspect

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the modules, interfaces and base classes of each origin as tables",
		Example: strings.TrimSpace(`  swagger2std inspect --input petstore.yaml
  swagger2std inspect --input https://example.com/v2/api-docs --include-tags pet`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return inspectRunner(cmd.Context(), cfg, runEnv{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
		},
	}
	config.BindSourceFlags(cmd.Flags())
	return cmd
}

func runInspect(ctx context.Context, cfg *config.Config, env runEnv) error {
	logger := newLogger(env.Stderr, cfg.Verbose)
	defer func() { _ = logger.Sync() }()

	sources, err := loadSources(ctx, cfg, logger)
	if err != nil {
		return err
	}
	for i, ds := range sources {
		if i > 0 {
			fmt.Fprintln(env.Stdout)
		}
		fmt.Fprint(env.Stdout, renderDataSource(ds))
	}
	return nil
}

func renderDataSource(ds *model.DataSource) string {
	name := ds.Name
	if name == "" {
		name = "api"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d modules, %d interfaces, %d base classes\n",
		name, len(ds.Mods), ds.InterfaceCount(), len(ds.BaseClasses))

	if len(ds.Mods) > 0 {
		var rows [][]any
		for _, mod := range ds.Mods {
			for _, inter := range mod.Interfaces {
				rows = append(rows, []any{
					mod.Name,
					inter.Name,
					strings.ToUpper(inter.Method),
					inter.Path,
					fmt.Sprint(len(inter.Parameters)),
					inter.Response.TypeExpr(),
				})
			}
		}
		b.WriteString(renderTable([]string{"Module", "Interface", "Method", "Path", "Params", "Response"}, rows))
	}

	if len(ds.BaseClasses) > 0 {
		rows := make([][]any, 0, len(ds.BaseClasses))
		for _, base := range ds.BaseClasses {
			rows = append(rows, []any{base.Name, base.JustName, propertySummary(base.Properties)})
		}
		b.WriteString(renderTable([]string{"Base class", "Just name", "Properties"}, rows))
	}
	return b.String()
}

func renderTable(headers []string, rows [][]any) string {
	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	return t.Render("grid")
}

func propertySummary(props []model.Property) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		s := p.Name + ": " + p.DataType.TypeExpr()
		if p.Required {
			s += " (required)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
