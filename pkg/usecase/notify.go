package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	goslack "github.com/slack-go/slack"
)

const (
	notificationHighRisk = "high_risk"
	notificationDigest   = "sla_digest"

	// digestMaxItems keeps the digest below the Slack block limit
	digestMaxItems = 20
)

func (uc *UseCases) notifyHighRisk(ctx context.Context, report *model.Report) error {
	blocks := buildHighRiskBlocks(report)
	text := fmt.Sprintf("%s risk %s: %s", report.RiskLevel, report.Type.Label(), report.Number)
	_, err := uc.slackService.PostMessage(ctx, uc.slackChannel, blocks, text)
	return err
}

// buildHighRiskBlocks renders the alert posted when a High or Extreme report arrives
func buildHighRiskBlocks(report *model.Report) []goslack.Block {
	action := report.Action()

	header := fmt.Sprintf(":rotating_light: %s risk %s", report.RiskLevel, report.Type.Label())
	blocks := []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, header, true, false),
		),
	}

	fields := []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType, "*Report*\n"+report.Number.String(), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Risk*\n%s (L%d / %s)", report.RiskLevel, report.Likelihood.Int(), report.Severity), false, false),
	}
	if report.Department != "" {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType, "*Department*\n"+report.Department, false, false))
	}
	if report.Location != "" {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType, "*Location*\n"+report.Location, false, false))
	}
	blocks = append(blocks, goslack.NewSectionBlock(nil, fields, nil))

	summary := report.Title
	if summary == "" {
		summary = truncate(report.Narrative, 300)
	}
	if summary != "" {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, summary, false, false),
			nil, nil,
		))
	}

	contextText := fmt.Sprintf("%s  |  %s  |  Authority: %s", action.Action, action.Timeline, action.Authority)
	blocks = append(blocks, goslack.NewContextBlock("",
		goslack.NewTextBlockObject(goslack.MarkdownType, contextText, false, false),
	))

	return blocks
}

// buildDigestBlocks renders the SLA digest for alerts needing attention
func buildDigestBlocks(summary model.SLASummary, alerts []model.SLAAlert, ref time.Time) []goslack.Block {
	header := fmt.Sprintf("SLA digest %s", ref.Format(time.DateOnly))
	blocks := []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, header, true, false),
		),
	}

	order := []types.SLABucket{types.SLABucketOverdue, types.SLABucketCritical, types.SLABucketWarning, types.SLABucketOK}
	counts := make([]string, 0, len(order))
	for _, b := range order {
		counts = append(counts, fmt.Sprintf("%s: *%d*", b, summary.Counts[b]))
	}
	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, strings.Join(counts, "  |  "), false, false),
		nil, nil,
	))

	shown := alerts
	if len(shown) > digestMaxItems {
		shown = shown[:digestMaxItems]
	}
	lines := make([]string, 0, len(shown))
	for _, a := range shown {
		line := fmt.Sprintf("• `%s` %s: %s", a.Number, a.Type.Label(), a.SLA.DisplayText)
		if a.Department != "" {
			line += " (" + a.Department + ")"
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, strings.Join(lines, "\n"), false, false),
			nil, nil,
		))
	}
	if rest := len(alerts) - len(shown); rest > 0 {
		blocks = append(blocks, goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("and %d more", rest), false, false),
		))
	}

	return blocks
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
