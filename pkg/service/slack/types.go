package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service is the subset of the Slack API used for safety notifications
type Service interface {
	// ListJoinedChannels retrieves the public channels the bot is a member of
	ListJoinedChannels(ctx context.Context) ([]Channel, error)

	// PostMessage posts a Block Kit message to a channel and returns the message timestamp.
	// The text parameter is used as a fallback for notifications.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)
}

// Channel represents a Slack channel
type Channel struct {
	ID   string
	Name string
}
