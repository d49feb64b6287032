package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewLsCommand creates the ls command.
func NewLsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <url>",
		Short: "List objects under a prefix",
		Long: `List every object stored under the given URL prefix, one per line.
Ordering is applied here; the stores themselves return keys in backend
scan order.

Example:
  mlrun ls redis://localhost:6379/models/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, key, err := rootOpts.Manager.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			keys, err := store.ListDir(cmd.Context(), key)
			if err != nil {
				return err
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	return cmd
}
