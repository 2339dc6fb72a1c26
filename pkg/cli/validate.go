package cli

import (
	"context"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/cli/config"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/service/slack"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrChannelNotJoined is returned when the bot cannot post to the alert channel
var ErrChannelNotJoined = goerr.New("slack bot is not a member of the alert channel")

func cmdValidate() *cli.Command {
	var appCfg config.App
	var slackCfg config.Slack
	var checkSlack bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-slack",
		Usage:       "Verify that the bot has joined the alert channel",
		Category:    "Slack",
		Sources:     cli.EnvVars("AVSAFE_CHECK_SLACK"),
		Destination: &checkSlack,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optionally the Slack setup",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			cfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			policy := cfg.SLAPolicy()
			logger.Info("Configuration validation passed",
				"config", appCfg,
				"airports", len(cfg.Airports),
				"departments", len(cfg.Departments),
				"critical_days", policy.CriticalDays,
				"warning_days", policy.WarningDays,
			)
			for _, rt := range types.AllReportTypes() {
				logger.Debug("SLA window", "report_type", rt, "days", policy.WindowFor(rt))
			}

			if !checkSlack {
				return nil
			}

			svc, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if svc == nil {
				return goerr.Wrap(config.ErrMissingSettings, "--check-slack requires --slack-bot-token and --slack-channel-id")
			}
			return checkSlackChannel(ctx, svc, slackCfg.ChannelID())
		},
	}
}

func checkSlackChannel(ctx context.Context, svc slack.Service, channelID string) error {
	channels, err := svc.ListJoinedChannels(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list joined channels")
	}

	idx := slices.IndexFunc(channels, func(ch slack.Channel) bool { return ch.ID == channelID })
	if idx < 0 {
		return goerr.Wrap(ErrChannelNotJoined, "invite the bot to the channel",
			goerr.V("channel_id", channelID), goerr.V("joined", len(channels)))
	}

	logging.Default().Info("Slack channel check passed", "channel_id", channelID, "channel_name", channels[idx].Name)
	return nil
}
