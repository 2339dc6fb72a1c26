package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/avsafe/pkg/service/slack"
	goslack "github.com/slack-go/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestPostMessage(t *testing.T) {
	var gotChannel, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseForm())
		gotChannel = r.FormValue("channel")
		gotText = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"channel": gotChannel,
			"ts":      "1710489600.000100",
		})
	}))
	defer srv.Close()

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	blocks := []goslack.Block{
		goslack.NewSectionBlock(goslack.NewTextBlockObject(goslack.MarkdownType, "*HZD-20240315-7QK2ZD*", false, false), nil, nil),
	}
	ts, err := svc.PostMessage(context.Background(), "C0123456", blocks, "High risk hazard report")
	gt.NoError(t, err).Required()
	gt.Value(t, ts).Equal("1710489600.000100")
	gt.Value(t, gotChannel).Equal("C0123456")
	gt.Value(t, gotText).Equal("High risk hazard report")
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	if token == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN is not set")
	}

	svc, err := slack.New(token)
	gt.NoError(t, err).Required()

	channels, err := svc.ListJoinedChannels(context.Background())
	gt.NoError(t, err).Required()
	for _, ch := range channels {
		gt.String(t, ch.ID).NotEqual("")
		gt.String(t, ch.Name).NotEqual("")
	}
}
