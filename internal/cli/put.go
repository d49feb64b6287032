package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	File   string
	Append bool
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put <url> [data]",
		Short: "Write an object",
		Long: `Write data to the object at the given URL. The data comes from the
second argument, from a file with --file, or from stdin when neither is
given. With --append the data is appended instead of overwriting.

Example:
  mlrun put redis://localhost:6379/run/status "started"
  mlrun put s3://bucket/conf/app.yaml --file app.yaml
  generate | mlrun put redis://localhost:6379/run/log --append`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 && opts.File != "" {
				return fmt.Errorf("data argument and --file are mutually exclusive")
			}

			var data []byte
			var err error
			switch {
			case len(args) == 2:
				data = []byte(args[1])
			case opts.File != "":
				data, err = os.ReadFile(opts.File)
				if err != nil {
					return err
				}
			default:
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			store, key, err := opts.Manager.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Append {
				return store.Append(cmd.Context(), key, data)
			}
			return store.Put(cmd.Context(), key, data)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read data from file")
	cmd.Flags().BoolVar(&opts.Append, "append", false, "append instead of overwrite")

	return cmd
}
