package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Offset int64
	Size   int64
	Output string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Read an object, or a byte range of it",
		Long: `Read the object at the given URL and write it to stdout, or to a
file with --output. A byte range can be selected with --offset and
--size.

Example:
  mlrun get redis://localhost:6379/data/model.bin -o model.bin
  mlrun get s3://bucket/logs/run.log --offset 1024 --size 512`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, key, err := opts.Manager.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var getOpts []datastore.GetOption
			if cmd.Flags().Changed("offset") {
				getOpts = append(getOpts, datastore.WithOffset(opts.Offset))
			}
			if cmd.Flags().Changed("size") {
				getOpts = append(getOpts, datastore.WithSize(opts.Size))
			}

			data, err := store.Get(cmd.Context(), key, getOpts...)
			if err != nil {
				return err
			}

			if opts.Output != "" {
				return os.WriteFile(opts.Output, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "first byte to read")
	cmd.Flags().Int64Var(&opts.Size, "size", 0, "number of bytes to read (default: to the end)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")

	return cmd
}
