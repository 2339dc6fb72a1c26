package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/cli/config"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdSummary() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var alertLimit int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "alerts",
			Usage:       "Maximum number of SLA alerts to print",
			Value:       10,
			Destination: &alertLimit,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "summary",
		Usage: "Print the safety dashboard summary",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, runtimeConfig{app: &appCfg, repo: &repoCfg})
			if err != nil {
				return err
			}
			defer rt.Close()

			summary, err := rt.uc.Dashboard.Summary(ctx, time.Now())
			if err != nil {
				return goerr.Wrap(err, "failed to build dashboard summary")
			}

			var w io.Writer = os.Stdout
			if c.Root().Writer != nil {
				w = c.Root().Writer
			}
			printSummary(w, summary, alertLimit)
			return nil
		},
	}
}

var (
	riskColors = map[types.RiskLevel]*color.Color{
		types.RiskLevelLow:     color.New(color.FgGreen),
		types.RiskLevelMedium:  color.New(color.FgYellow),
		types.RiskLevelHigh:    color.New(color.FgRed),
		types.RiskLevelExtreme: color.New(color.FgWhite, color.BgRed, color.Bold),
	}
	bucketColors = map[types.SLABucket]*color.Color{
		types.SLABucketOK:       color.New(color.FgGreen),
		types.SLABucketWarning:  color.New(color.FgYellow),
		types.SLABucketCritical: color.New(color.FgRed),
		types.SLABucketOverdue:  color.New(color.FgRed, color.Bold),
	}
	headerColor = color.New(color.FgCyan, color.Bold)
)

func colorize(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func printSummary(w io.Writer, s *model.DashboardSummary, alertLimit int) {
	_, _ = headerColor.Fprintf(w, "Safety dashboard (%s)\n", s.GeneratedAt.Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "  Total reports: %d   High risk: %s\n",
		s.Total, colorize(riskColors[types.RiskLevelHigh], fmt.Sprint(s.HighRiskCount)))
	_, _ = fmt.Fprintf(w, "  Open investigations: %d   Closed: %d\n",
		s.Investigations.Open, s.Investigations.Closed)
	if s.Investigations.Unclassified > 0 {
		_, _ = fmt.Fprintf(w, "  Unclassified statuses: %d %v\n",
			s.Investigations.Unclassified, s.Investigations.UnclassifiedStatuses)
	}

	_, _ = headerColor.Fprintln(w, "\nReports by type")
	for _, rt := range types.AllReportTypes() {
		_, _ = fmt.Fprintf(w, "  %-28s %5d\n", rt.Label(), s.CountsByType[rt])
	}

	_, _ = headerColor.Fprintln(w, "\nRisk distribution (hazards and incidents)")
	for _, level := range types.AllRiskLevels() {
		label := fmt.Sprintf("%-8s", level)
		_, _ = fmt.Fprintf(w, "  %s %5d\n", colorize(riskColors[level], label), s.RiskDistribution[level])
	}

	if len(s.DepartmentBreakdown) > 0 {
		_, _ = headerColor.Fprintln(w, "\nHazards by department")
		depts := slices.Sorted(maps.Keys(s.DepartmentBreakdown))
		for _, d := range depts {
			_, _ = fmt.Fprintf(w, "  %-28s %5d\n", d, s.DepartmentBreakdown[d])
		}
	}

	_, _ = headerColor.Fprintln(w, "\nHazard SLA")
	for _, b := range types.AllSLABuckets() {
		label := fmt.Sprintf("%-8s", b)
		_, _ = fmt.Fprintf(w, "  %s %5d\n", colorize(bucketColors[b], label), s.SLA.Counts[b])
	}

	alerts := s.SLA.Alerts
	if alertLimit > 0 && len(alerts) > alertLimit {
		alerts = alerts[:alertLimit]
	}
	for _, a := range alerts {
		if !a.SLA.Status.NeedsAttention() {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s  %-24s %s\n",
			a.Number, a.Department, colorize(bucketColors[a.SLA.Status], a.SLA.DisplayText))
	}
}
