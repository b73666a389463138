package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clusters/pkg/clusters"
)

const modulePath = "github.com/mesh-intelligence/clusters"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the clusters version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "clusters v%s\nmodule: %s\n", clusters.Version, modulePath)
			return nil
		},
	}
}
