package cli

import (
	"github.com/spf13/cobra"

	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

// RmOptions holds flags for the rm command.
type RmOptions struct {
	*RootOptions
	Recursive bool
	MaxDepth  int
}

// NewRmCommand creates the rm command.
func NewRmCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RmOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rm <url>",
		Short: "Remove an object or a whole prefix",
		Long: `Remove the object at the given URL. With --recursive, remove every
object under the prefix instead; against redis this also sweeps the
spark staging namespace tied to the prefix. Removing something absent
is not an error.

Example:
  mlrun rm redis://localhost:6379/runs/42
  mlrun rm -r redis://localhost:6379/runs/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, key, err := opts.Manager.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var rmOpts []datastore.RmOption
			if opts.Recursive {
				rmOpts = append(rmOpts, datastore.WithRecursive())
			}
			if cmd.Flags().Changed("maxdepth") {
				rmOpts = append(rmOpts, datastore.WithMaxDepth(opts.MaxDepth))
			}
			return store.Rm(cmd.Context(), key, rmOpts...)
		},
	}

	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "remove everything under the prefix")
	cmd.Flags().IntVar(&opts.MaxDepth, "maxdepth", 0, "bound recursion depth (unsupported by all stores)")

	return cmd
}
