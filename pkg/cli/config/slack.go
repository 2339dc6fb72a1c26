package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for risk alerts and SLA digests)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("AVSAFE_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID that receives alerts",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("AVSAFE_SLACK_CHANNEL_ID"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
	)
}

// ChannelID returns the alert channel
func (x *Slack) ChannelID() string {
	return x.channelID
}

// IsConfigured checks if both the token and the channel are set
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// Configure returns a Slack service, or nil when Slack is not configured.
// Setting only one of token and channel is an error.
func (x *Slack) Configure(opts ...slack.Option) (slack.Service, error) {
	if x.botToken == "" && x.channelID == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.Wrap(ErrMissingSettings, "both --slack-bot-token and --slack-channel-id are required",
			goerr.V("has_token", x.botToken != ""), goerr.V("has_channel", x.channelID != ""))
	}

	svc, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}
