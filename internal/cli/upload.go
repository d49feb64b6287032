package cli

import (
	"github.com/spf13/cobra"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <src-path> <url>",
		Short: "Upload a local file to an object",
		Long: `Store the contents of a local file under the given URL. Against
redis the file is streamed in 1 MB chunks.

Example:
  mlrun upload model.bin redis://localhost:6379/models/v3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, key, err := rootOpts.Manager.Resolve(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return store.Upload(cmd.Context(), key, args[0])
		},
	}
	return cmd
}
