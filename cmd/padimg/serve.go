package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/padstack/padimg/internal/config"
	"github.com/padstack/padimg/internal/logging"
	"github.com/padstack/padimg/internal/server"
	"github.com/padstack/padimg/pkg/upload"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the upload server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log := logging.New(cfg.Log.Level, cfg.Log.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := buildStore(ctx, cfg, log)
			if err != nil {
				return err
			}

			log.Info("starting",
				"listen", cfg.Listen,
				"storage", cfg.Upload.Storage.Type,
				"version", version,
			)
			return server.New(cfg, store, log).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.ConfigFileName, "path to the configuration file")
	return cmd
}

// buildStore constructs the storage backend selected by the
// configuration. The selection happens exactly once; everything
// downstream works against the upload.Store interface.
func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (upload.Store, error) {
	st := cfg.Upload.Storage

	switch st.Type {
	case config.StorageLocal:
		return upload.NewDiskStore(st.BaseFolder, log)

	case config.StorageS3:
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(st.Region),
		}
		if st.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(st.AccessKeyID, st.SecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		return upload.NewS3Store(client, st.Bucket, st.BaseFolder, st.Region, log), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", st.Type)
	}
}
