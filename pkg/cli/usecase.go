package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/cli/config"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/service/metrics"
	"github.com/secmon-lab/avsafe/pkg/service/storage"
	"github.com/secmon-lab/avsafe/pkg/usecase"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
)

// runtime bundles what every command touching reports needs
type runtime struct {
	cfg      *config.AppConfig
	repo     interfaces.Repository
	uc       *usecase.UseCases
	uploader *storage.Client
}

func (r *runtime) Close() {
	if err := r.repo.Close(); err != nil {
		logging.Default().Error("failed to close repository", "error", err.Error())
	}
	if r.uploader != nil {
		if err := r.uploader.Close(); err != nil {
			logging.Default().Error("failed to close export storage", "error", err.Error())
		}
	}
}

type runtimeConfig struct {
	app     *config.App
	repo    *config.Repository
	slack   *config.Slack
	export  *config.Export
	metrics *metrics.Metrics
	options []usecase.Option
}

func newRuntime(ctx context.Context, cfg runtimeConfig) (*runtime, error) {
	appCfg, err := cfg.app.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load app configuration")
	}

	opts := []usecase.Option{
		usecase.WithSLAPolicy(appCfg.SLAPolicy()),
		usecase.WithValidator(appCfg.Validator()),
	}
	if cfg.metrics != nil {
		opts = append(opts, usecase.WithMetrics(cfg.metrics))
	}

	if cfg.slack != nil {
		slackSvc, err := cfg.slack.Configure()
		if err != nil {
			return nil, err
		}
		if slackSvc != nil {
			opts = append(opts, usecase.WithSlack(slackSvc, cfg.slack.ChannelID()))
			logging.Default().Info("Slack notification enabled", "channel", cfg.slack.ChannelID())
		} else {
			logging.Default().Info("Slack not configured, risk alerts and digests are disabled")
		}
	}

	var uploader *storage.Client
	if cfg.export != nil {
		uploader, err = cfg.export.Configure(ctx)
		if err != nil {
			return nil, err
		}
		if uploader != nil {
			opts = append(opts, usecase.WithUploader(uploader))
			logging.Default().Info("Export upload enabled", "export", *cfg.export)
		}
	}

	opts = append(opts, cfg.options...)

	repo, err := cfg.repo.Configure(ctx)
	if err != nil {
		if uploader != nil {
			_ = uploader.Close()
		}
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}

	return &runtime{
		cfg:      appCfg,
		repo:     repo,
		uc:       usecase.New(repo, opts...),
		uploader: uploader,
	}, nil
}
