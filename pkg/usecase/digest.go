package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
)

type DigestUseCase struct {
	uc *UseCases
}

// DigestResult describes one digest run
type DigestResult struct {
	Summary   model.SLASummary
	Attention []model.SLAAlert
	Posted    bool
}

// Evaluate computes SLA state for every open report of every type and
// refreshes the SLA gauges
func (d *DigestUseCase) Evaluate(ctx context.Context, ref time.Time) (*DigestResult, error) {
	set, err := d.uc.loadReportSet(ctx)
	if err != nil {
		return nil, err
	}

	summary := model.EvaluateSLA(set.All(), d.uc.policy, ref)
	d.uc.metrics.SetSLACounts(summary.Counts)

	result := &DigestResult{Summary: summary}
	for _, a := range summary.Alerts {
		if a.SLA.Status.NeedsAttention() {
			result.Attention = append(result.Attention, a)
		}
	}
	return result, nil
}

// SendDigest posts the digest to Slack when any report is critical or overdue
func (d *DigestUseCase) SendDigest(ctx context.Context, ref time.Time) error {
	_, err := d.Run(ctx, ref)
	return err
}

func (d *DigestUseCase) Run(ctx context.Context, ref time.Time) (*DigestResult, error) {
	result, err := d.Evaluate(ctx, ref)
	if err != nil {
		return nil, err
	}

	if len(result.Attention) == 0 {
		logging.From(ctx).Info("no reports need SLA attention")
		return result, nil
	}
	if !d.uc.slackEnabled() {
		logging.From(ctx).Info("Slack not configured, digest not posted",
			"attention", len(result.Attention))
		return result, nil
	}

	blocks := buildDigestBlocks(result.Summary, result.Attention, ref)
	text := fmt.Sprintf("%d reports need SLA attention", len(result.Attention))
	_, err = d.uc.slackService.PostMessage(ctx, d.uc.slackChannel, blocks, text)
	d.uc.metrics.Notified(notificationDigest, err)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to post SLA digest", goerr.V("attention", len(result.Attention)))
	}

	result.Posted = true
	return result, nil
}
