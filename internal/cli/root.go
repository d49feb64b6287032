// Package cli implements the mlrun datastore command line tool.
package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/nethajinirmal13/mlrun/internal/config"
	"github.com/nethajinirmal13/mlrun/internal/logging"
	"github.com/nethajinirmal13/mlrun/internal/metrics"
	"github.com/nethajinirmal13/mlrun/pkg/datastore"
	"github.com/nethajinirmal13/mlrun/pkg/datastore/stores"
)

// RootOptions holds global flags and the shared state built once per
// invocation.
type RootOptions struct {
	Verbose bool

	Config  *config.Config
	Manager *datastore.Manager
}

// NewRootCommand creates the root command for the mlrun datastore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mlrun",
		Short: "Object store operations over redis, s3 and local files",
		Long: `mlrun moves objects in and out of the stores reachable by URL:
redis://host:port/path, rediss://host:port/path, s3://bucket/path,
file:///path or a plain filesystem path.

Configuration comes from MLRUN_* environment variables, optionally
layered over the YAML file named by MLRUN_CONFIG_FILE. Redis
credentials are read from REDIS_USER and REDIS_PASSWORD, never from
the URL itself.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.Verbose {
				cfg.LogLevel = "debug"
			}
			if err := logging.Init(logging.Config{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
			}); err != nil {
				return err
			}

			opts.Config = cfg
			opts.Manager = stores.NewManager(stores.Config{
				RedisURL:    cfg.RedisURL,
				FileRoot:    cfg.FileRoot,
				S3Endpoint:  cfg.S3Endpoint,
				S3Region:    cfg.S3Region,
				S3AccessKey: cfg.S3AccessKey,
				S3SecretKey: cfg.S3SecretKey,
				S3PathStyle: cfg.S3PathStyle,
			}, nil)

			if cfg.MetricsAddr != "" {
				startMetricsServer(cfg.MetricsAddr)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewUploadCommand(opts))
	cmd.AddCommand(NewDownloadCommand(opts))
	cmd.AddCommand(NewLsCommand(opts))
	cmd.AddCommand(NewRmCommand(opts))
	cmd.AddCommand(NewStatCommand(opts))

	return cmd
}

// startMetricsServer exposes Prometheus metrics for long transfers.
func startMetricsServer(addr string) {
	server := &http.Server{
		Addr:    addr,
		Handler: metrics.Handler(),
	}
	go func() {
		logging.Info("metrics server listening", logging.String("addr", addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("metrics server error", logging.Err(err))
		}
	}()
}
