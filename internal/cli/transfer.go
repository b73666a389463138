package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clusters/pkg/sqlite"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every cluster, field and item to JSONL files in dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				if err := b.Export(args[0]); err != nil {
					return sysError(fmt.Errorf("export: %w", err))
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"exported": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load JSONL files written by export",
		Long: "Load clusters.jsonl, field_definitions.jsonl and items.jsonl from dir.\n" +
			"Records whose ID already exists, or that reference a missing cluster, are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				stats, err := b.Import(args[0])
				if err != nil {
					return sysError(fmt.Errorf("import: %w", err))
				}
				out := cmd.OutOrStdout()
				if a.jsonMode {
					return writeJSON(out, stats)
				}
				tables := make([]string, 0, len(stats))
				for t := range stats {
					tables = append(tables, t)
				}
				sort.Strings(tables)
				for _, t := range tables {
					fmt.Fprintf(out, "Imported %d %s\n", stats[t], t)
				}
				return nil
			})
		},
	}
}
