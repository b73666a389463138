package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clusters/pkg/clusters"
	"github.com/mesh-intelligence/clusters/pkg/sqlite"
)

func newClusterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Create, list, show and delete clusters",
	}
	cmd.AddCommand(newClusterCreateCmd(a))
	cmd.AddCommand(newClusterListCmd(a))
	cmd.AddCommand(newClusterShowCmd(a))
	cmd.AddCommand(newClusterDeleteCmd(a))
	return cmd
}

func newClusterCreateCmd(a *app) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a cluster with an ordered list of fields",
		Example: `  clusters cluster create Books --field Title --field Author --field Year`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				repo := clusters.NewRepository(b)
				c, err := repo.CreateCluster(args[0], fields)
				if err != nil {
					return err
				}
				defs, err := repo.Fields(c.ClusterID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if a.jsonMode {
					return writeJSON(out, clusterView{
						ClusterID:  c.ClusterID,
						Name:       c.Name,
						CreatedAt:  c.CreatedAt,
						FieldCount: len(defs),
						Fields:     newFieldViews(defs),
					})
				}
				fmt.Fprintf(out, "Created cluster %s: %s\n", c.Name, c.ClusterID)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field name, in order (repeatable)")
	return cmd
}

func newClusterListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clusters, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				sums, err := clusters.NewRepository(b).Summaries()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.jsonMode {
					views := make([]clusterView, len(sums))
					for i, s := range sums {
						views[i] = newSummaryView(s)
					}
					return writeJSON(out, views)
				}
				renderSummaries(out, sums)
				return nil
			})
		},
	}
}

func newClusterShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <cluster-id>",
		Short: "Show a cluster's fields and items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				repo := clusters.NewRepository(b)
				c, err := repo.GetCluster(args[0])
				if err != nil {
					return fmt.Errorf("cluster %q: %w", args[0], err)
				}
				defs, err := repo.Fields(c.ClusterID)
				if err != nil {
					return err
				}
				items, err := repo.Items(c.ClusterID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if a.jsonMode {
					view := clusterView{
						ClusterID:  c.ClusterID,
						Name:       c.Name,
						CreatedAt:  c.CreatedAt,
						FieldCount: len(defs),
						ItemCount:  len(items),
						Fields:     newFieldViews(defs),
					}
					for _, it := range items {
						view.Items = append(view.Items, newItemView(it, defs, false))
					}
					return writeJSON(out, view)
				}
				renderCluster(out, c, defs, items)
				return nil
			})
		},
	}
}

func newClusterDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <cluster-id>",
		Short: "Delete a cluster with all of its fields and items",
		Long:  "Delete a cluster with all of its fields and items. This cannot be undone;\na cluster that still has items is only deleted with --yes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				repo := clusters.NewRepository(b)
				c, err := repo.GetCluster(args[0])
				if err != nil {
					return fmt.Errorf("cluster %q: %w", args[0], err)
				}
				items, err := repo.Items(c.ClusterID)
				if err != nil {
					return err
				}
				if len(items) > 0 && !yes {
					return userError(fmt.Errorf("cluster %q has %d items; pass --yes to delete it", c.Name, len(items)))
				}
				if err := repo.DeleteCluster(c.ClusterID); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if a.jsonMode {
					return writeJSON(out, map[string]any{"deleted": c.ClusterID, "items": len(items)})
				}
				fmt.Fprintf(out, "Deleted cluster %s (%d items)\n", c.Name, len(items))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting a cluster that has items")
	return cmd
}
