package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/service/storage"
	"github.com/urfave/cli/v3"
)

type Export struct {
	bucket string
	prefix string
}

func (x *Export) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-bucket",
			Usage:       "Cloud Storage bucket for XLSX exports (download only when empty)",
			Category:    "Export",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("AVSAFE_EXPORT_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "export-prefix",
			Usage:       "Object name prefix for uploaded exports",
			Category:    "Export",
			Value:       "exports/",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("AVSAFE_EXPORT_PREFIX"),
		},
	}
}

func (x Export) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure returns an uploader, or nil when no bucket is set
func (x *Export) Configure(ctx context.Context) (*storage.Client, error) {
	if x.bucket == "" {
		return nil, nil
	}
	svc, err := storage.New(ctx, x.bucket, storage.WithPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize export storage", goerr.V("bucket", x.bucket))
	}
	return svc, nil
}
