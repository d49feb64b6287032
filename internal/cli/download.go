package cli

import (
	"github.com/spf13/cobra"

	"github.com/nethajinirmal13/mlrun/pkg/datastore"
)

// NewDownloadCommand creates the download command.
func NewDownloadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <url> <dst-path>",
		Short: "Download an object to a local file",
		Long: `Fetch the object at the given URL and write it to a local file.
The file appears atomically once the download completes.

Example:
  mlrun download redis://localhost:6379/models/v3 model.bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, key, err := rootOpts.Manager.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return datastore.Download(cmd.Context(), store, key, args[1])
		},
	}
	return cmd
}
