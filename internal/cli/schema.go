package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clusters/pkg/clusters"
	"github.com/mesh-intelligence/clusters/pkg/sqlite"
	"github.com/mesh-intelligence/clusters/pkg/types"
)

// Schema edit operation kinds.
const (
	opAdd    = "add"
	opRename = "rename"
	opMove   = "move"
	opRemove = "remove"
)

// schemaOp is one parsed operation argument of "schema edit".
type schemaOp struct {
	kind  string
	name  string
	arg   string // new name for rename
	index int    // target position for move
}

// parseSchemaOp parses add:NAME, rename:OLD=NEW, move:NAME=INDEX or
// remove:NAME. Move indexes are zero-based.
func parseSchemaOp(s string) (schemaOp, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return schemaOp{}, fmt.Errorf("invalid operation %q: want kind:args", s)
	}
	op := schemaOp{kind: strings.ToLower(kind)}
	switch op.kind {
	case opAdd, opRemove:
		op.name = rest
	case opRename:
		name, newName, ok := strings.Cut(rest, "=")
		if !ok {
			return schemaOp{}, fmt.Errorf("invalid operation %q: want rename:OLD=NEW", s)
		}
		op.name, op.arg = name, newName
	case opMove:
		name, pos, ok := strings.Cut(rest, "=")
		if !ok {
			return schemaOp{}, fmt.Errorf("invalid operation %q: want move:NAME=INDEX", s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(pos))
		if err != nil {
			return schemaOp{}, fmt.Errorf("invalid operation %q: index %q is not a number", s, pos)
		}
		op.name, op.index = name, n
	default:
		return schemaOp{}, fmt.Errorf("invalid operation %q: unknown kind %q", s, kind)
	}
	return op, nil
}

// apply stages op on the draft. Fields are looked up by their current name.
func (op schemaOp) apply(d *clusters.SchemaDraft, confirmed bool) error {
	if op.kind == opAdd {
		_, err := d.AddField(op.name)
		return err
	}

	f, err := d.FieldByName(op.name)
	if err != nil {
		return fmt.Errorf("field %q: %w", op.name, err)
	}
	switch op.kind {
	case opRename:
		return d.RenameField(f.ID, op.arg)
	case opMove:
		return d.MoveField(f.ID, op.index)
	case opRemove:
		err := d.RemoveField(f.ID, confirmed)
		if errors.Is(err, types.ErrConfirmationRequired) {
			return fmt.Errorf("field %q: items hold values for it, which will be archived; pass --yes to remove it: %w", op.name, err)
		}
		return err
	}
	return nil
}

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Edit a cluster's name and fields",
	}
	cmd.AddCommand(newSchemaEditCmd(a))
	return cmd
}

func newSchemaEditCmd(a *app) *cobra.Command {
	var name string
	var yes bool
	cmd := &cobra.Command{
		Use:   "edit <cluster-id> [operation...]",
		Short: "Apply field operations to a cluster and commit them together",
		Long: `Apply operations to a cluster's schema, then commit them in one transaction.
Operations run in the order given and refer to fields by their current name:

  add:NAME          append a new field
  rename:OLD=NEW    rename a field; item values under OLD become archived
  move:NAME=INDEX   move a field to a zero-based position
  remove:NAME       remove a field; item values are kept as archived data

Removing a field that items hold values for requires --yes. If any
operation fails nothing is committed.`,
		Example: `  clusters schema edit 0192... add:Year rename:Author=Writer move:Year=0`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := make([]schemaOp, 0, len(args)-1)
			for _, s := range args[1:] {
				op, err := parseSchemaOp(s)
				if err != nil {
					return userError(err)
				}
				ops = append(ops, op)
			}
			renaming := cmd.Flags().Changed("name")
			if len(ops) == 0 && !renaming {
				return userError(errors.New("nothing to do: give --name or at least one operation"))
			}

			return a.withBackend(func(b sqlite.Backend) error {
				d, err := clusters.NewSchemaEditor(b).Start(args[0])
				if err != nil {
					return fmt.Errorf("cluster %q: %w", args[0], err)
				}
				if err := editSchema(d, ops, renaming, name, yes); err != nil {
					d.Cancel()
					return err
				}

				repo := clusters.NewRepository(b)
				c, err := repo.GetCluster(d.ClusterID())
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
				fmt.Fprintf(out, "Updated %s: %s\n", c.Name, strings.Join(types.FieldNames(defs), ", "))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new cluster name")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm removing fields that hold item data")
	return cmd
}

// editSchema stages everything on d and commits it.
func editSchema(d *clusters.SchemaDraft, ops []schemaOp, renaming bool, name string, confirmed bool) error {
	if renaming {
		if err := d.SetName(name); err != nil {
			return err
		}
	}
	for _, op := range ops {
		if err := op.apply(d, confirmed); err != nil {
			return err
		}
	}
	return d.Commit()
}
