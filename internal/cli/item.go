package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clusters/pkg/clusters"
	"github.com/mesh-intelligence/clusters/pkg/sqlite"
	"github.com/mesh-intelligence/clusters/pkg/types"
)

func newItemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add, edit, show and delete items",
	}
	cmd.AddCommand(newItemAddCmd(a))
	cmd.AddCommand(newItemEditCmd(a))
	cmd.AddCommand(newItemShowCmd(a))
	cmd.AddCommand(newItemDeleteCmd(a))
	return cmd
}

// parseAssignments splits Field=Value pairs. The value may contain '='.
func parseAssignments(sets []string) ([][2]string, error) {
	out := make([][2]string, 0, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --set %q: want Field=Value", s)
		}
		out = append(out, [2]string{strings.TrimSpace(name), value})
	}
	return out, nil
}

// saveDraft applies assignments to d and saves it.
func saveDraft(d *clusters.ItemDraft, sets [][2]string) (*types.Item, error) {
	for _, kv := range sets {
		if err := d.SetValue(kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("field %q: %w", kv[0], err)
		}
	}
	return d.Save()
}

func (a *app) printItem(cmd *cobra.Command, verb string, item *types.Item, defs []*types.FieldDefinition) error {
	out := cmd.OutOrStdout()
	if a.jsonMode {
		return writeJSON(out, newItemView(item, defs, true))
	}
	fmt.Fprintf(out, "%s item %s: %s\n", verb, item.ItemID, item.Preview(defs))
	return nil
}

func newItemAddCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:     "add <cluster-id>",
		Short:   "Add an item to a cluster",
		Example: `  clusters item add 0192... --set Title=Dune --set Author="Frank Herbert"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := parseAssignments(sets)
			if err != nil {
				return userError(err)
			}
			return a.withBackend(func(b sqlite.Backend) error {
				d, err := clusters.NewItemEditor(b).OpenForCreate(args[0])
				if err != nil {
					return fmt.Errorf("cluster %q: %w", args[0], err)
				}
				item, err := saveDraft(d, assignments)
				if err != nil {
					return err
				}
				return a.printItem(cmd, "Created", item, d.Fields())
			})
		},
	}
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Field=Value (repeatable)")
	return cmd
}

func newItemEditCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Change an item's values",
		Long:  "Change an item's values. Values not given keep their current content;\narchived values are kept as they are.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := parseAssignments(sets)
			if err != nil {
				return userError(err)
			}
			return a.withBackend(func(b sqlite.Backend) error {
				d, err := clusters.NewItemEditor(b).OpenForEdit(args[0])
				if err != nil {
					return fmt.Errorf("item %q: %w", args[0], err)
				}
				item, err := saveDraft(d, assignments)
				if err != nil {
					return err
				}
				return a.printItem(cmd, "Updated", item, d.Fields())
			})
		},
	}
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Field=Value (repeatable)")
	return cmd
}

func newItemShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item's values, including archived ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				repo := clusters.NewRepository(b)
				item, err := repo.GetItem(args[0])
				if err != nil {
					return fmt.Errorf("item %q: %w", args[0], err)
				}
				defs, err := repo.Fields(item.ClusterID)
				if err != nil {
					return err
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), newItemView(item, defs, true))
				}
				renderItem(cmd.OutOrStdout(), item, defs)
				return nil
			})
		},
	}
}

func newItemDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(func(b sqlite.Backend) error {
				if err := clusters.NewRepository(b).DeleteItem(args[0]); err != nil {
					return fmt.Errorf("item %q: %w", args[0], err)
				}
				if a.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", args[0])
				return nil
			})
		},
	}
}
