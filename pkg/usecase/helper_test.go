package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/service/slack"
	goslack "github.com/slack-go/slack"
)

var today = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return today
}

type postedMessage struct {
	channelID string
	blocks    []goslack.Block
	text      string
}

// mockSlackService is a mock implementation of slack.Service for testing
type mockSlackService struct {
	mu       sync.Mutex
	posted   []postedMessage
	postedCh chan postedMessage
	err      error
}

var _ slack.Service = &mockSlackService{}

func newMockSlackService() *mockSlackService {
	return &mockSlackService{postedCh: make(chan postedMessage, 16)}
}

func (m *mockSlackService) ListJoinedChannels(ctx context.Context) ([]slack.Channel, error) {
	return []slack.Channel{{ID: "C-SAFETY", Name: "safety-alerts"}}, nil
}

func (m *mockSlackService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	msg := postedMessage{channelID: channelID, blocks: blocks, text: text}
	m.mu.Lock()
	m.posted = append(m.posted, msg)
	m.mu.Unlock()
	m.postedCh <- msg
	return "1710489600.000100", m.err
}

func (m *mockSlackService) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posted)
}

type mockUploader struct {
	name        string
	contentType string
	size        int
}

func (m *mockUploader) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	m.name = name
	m.contentType = contentType
	m.size = len(data)
	return "gs://avsafe-exports/" + name, nil
}

func hazardSubmission(likelihood, severity string) *model.Submission {
	return &model.Submission{
		Type:         "hazard_report",
		Likelihood:   likelihood,
		Severity:     severity,
		Department:   "Ground Operations",
		Title:        "FOD near stand 12",
		Narrative:    "Loose debris observed on apron near stand 12 during pushback.",
		ReporterName: "Ramp Agent",
		Location:     "OPSK",
		Details: model.ReportDetails{
			Hazard: &model.HazardDetails{Category: "Foreign Object Debris"},
		},
	}
}
