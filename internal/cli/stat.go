package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewStatCommand creates the stat command.
func NewStatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <url>",
		Short: "Show object size and modification time",
		Long: `Print size and modification time of the object at the given URL.
The redis store keeps no per key metadata and reports the operation as
not implemented.

Example:
  mlrun stat s3://bucket/models/v3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, key, err := rootOpts.Manager.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			info, err := store.Stat(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "size:     %d\nmodified: %s\n",
				info.Size, info.ModTime.Format(time.RFC3339))
			return nil
		},
	}
	return cmd
}
