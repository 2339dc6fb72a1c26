package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/repository/memory"
	"github.com/secmon-lab/avsafe/pkg/service/metrics"
	"github.com/secmon-lab/avsafe/pkg/usecase"
)

func TestReportUseCase_Submit(t *testing.T) {
	t.Run("classifies and stores hazard", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithClock(fixedClock))
		ctx := context.Background()

		report, err := uc.Report.Submit(ctx, hazardSubmission("3", "C"))
		gt.NoError(t, err).Required()
		gt.Value(t, report.RiskLevel).Equal(types.RiskLevelMedium)
		gt.Value(t, report.Status).Equal(types.InvestigationStatusSubmitted)
		gt.Value(t, report.Number.Prefix()).Equal("HZD")
		gt.String(t, report.Number.String()).Contains("-20240315-")
		gt.Bool(t, report.CreatedAt.Equal(today)).True()

		stored, err := repo.Report().Get(ctx, report.Number)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Details.Hazard.Category).Equal("Foreign Object Debris")
	})

	t.Run("unscored report types are Low", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithClock(fixedClock))
		report, err := uc.Report.Submit(context.Background(), &model.Submission{
			Type:         "captain_dbr",
			Narrative:    "Smooth sector, minor delay at gate.",
			ReporterName: "Capt. Rahman",
			Details: model.ReportDetails{
				CaptainDebrief: &model.CaptainDebriefDetails{OverallAssessment: "Satisfactory"},
			},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, report.RiskLevel).Equal(types.RiskLevelLow)
		gt.Value(t, report.Number.Prefix()).Equal("DBR")
	})

	t.Run("rejects invalid form", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Report.Submit(context.Background(), hazardSubmission("3", "Major"))
		gt.Error(t, err).Is(model.ErrInvalidSubmission)
	})

	t.Run("notifies Slack for high risk", func(t *testing.T) {
		slackSvc := newMockSlackService()
		uc := usecase.New(memory.New(),
			usecase.WithClock(fixedClock),
			usecase.WithSlack(slackSvc, "C-SAFETY"),
		)

		report, err := uc.Report.Submit(context.Background(), hazardSubmission("5", "A"))
		gt.NoError(t, err).Required()
		gt.Value(t, report.RiskLevel).Equal(types.RiskLevelExtreme)

		select {
		case msg := <-slackSvc.postedCh:
			gt.Value(t, msg.channelID).Equal("C-SAFETY")
			gt.String(t, msg.text).Contains(report.Number.String())
			gt.String(t, msg.text).Contains("Extreme")
			gt.Number(t, len(msg.blocks)).GreaterOrEqual(3)
		case <-time.After(5 * time.Second):
			t.Fatal("high risk notification was not posted")
		}
	})

	t.Run("does not notify for medium risk", func(t *testing.T) {
		slackSvc := newMockSlackService()
		uc := usecase.New(memory.New(), usecase.WithSlack(slackSvc, "C-SAFETY"))

		_, err := uc.Report.Submit(context.Background(), hazardSubmission("2", "C"))
		gt.NoError(t, err).Required()

		select {
		case <-slackSvc.postedCh:
			t.Fatal("unexpected notification")
		case <-time.After(100 * time.Millisecond):
		}
		gt.Value(t, slackSvc.count()).Equal(0)
	})
}

func TestReportUseCase_SubmitNumberCollision(t *testing.T) {
	taken := model.ReportNumber("HZD-20240315-AAAAAA")

	t.Run("retries with a fresh number", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()
		_, err := repo.Report().Create(ctx, &model.Report{Number: taken, Type: types.ReportTypeHazard})
		gt.NoError(t, err).Required()

		calls := 0
		gen := func(rt types.ReportType, dept string, now time.Time) model.ReportNumber {
			calls++
			if calls == 1 {
				return taken
			}
			return model.NewReportNumber(rt, dept, now)
		}
		m := metrics.New()
		uc := usecase.New(repo, usecase.WithNumberGenerator(gen), usecase.WithMetrics(m))

		report, err := uc.Report.Submit(ctx, hazardSubmission("1", "E"))
		gt.NoError(t, err).Required()
		gt.Value(t, report.Number).NotEqual(taken)
		gt.Value(t, calls).Equal(2)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		repo := memory.New()
		ctx := context.Background()
		_, err := repo.Report().Create(ctx, &model.Report{Number: taken, Type: types.ReportTypeHazard})
		gt.NoError(t, err).Required()

		gen := func(types.ReportType, string, time.Time) model.ReportNumber { return taken }
		uc := usecase.New(repo, usecase.WithNumberGenerator(gen))

		_, err = uc.Report.Submit(ctx, hazardSubmission("1", "E"))
		gt.Error(t, err).Is(usecase.ErrNumberExhausted)
	})
}

func TestReportUseCase_Get(t *testing.T) {
	uc := usecase.New(memory.New())
	ctx := context.Background()

	created, err := uc.Report.Submit(ctx, hazardSubmission("2", "D"))
	gt.NoError(t, err).Required()

	got, err := uc.Report.Get(ctx, created.Number.String())
	gt.NoError(t, err).Required()
	gt.Value(t, got.ID).Equal(created.ID)

	_, err = uc.Report.Get(ctx, "HZD-20240315-ZZZZZZ")
	gt.Error(t, err).Is(interfaces.ErrReportNotFound)

	_, err = uc.Report.Get(ctx, "not-a-number")
	gt.Error(t, err).Is(model.ErrInvalidNumber)
}

func TestReportUseCase_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*usecase.UseCases, string) {
		uc := usecase.New(memory.New())
		created, err := uc.Report.Submit(ctx, hazardSubmission("4", "B"))
		gt.NoError(t, err).Required()
		return uc, created.Number.String()
	}

	t.Run("moves forward", func(t *testing.T) {
		uc, number := setup(t)
		updated, err := uc.Report.UpdateStatus(ctx, number, "under_investigation")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.InvestigationStatusUnderInvestigation)
		gt.Value(t, updated.RiskLevel).Equal(types.RiskLevelHigh)

		updated, err = uc.Report.UpdateStatus(ctx, number, "Closed")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.InvestigationStatusClosed)
	})

	t.Run("rejects moving backwards", func(t *testing.T) {
		uc, number := setup(t)
		_, err := uc.Report.UpdateStatus(ctx, number, "Pending Review")
		gt.NoError(t, err).Required()

		_, err = uc.Report.UpdateStatus(ctx, number, "Open")
		gt.Error(t, err).Is(usecase.ErrInvalidTransition)
	})

	t.Run("reopens closed report", func(t *testing.T) {
		uc, number := setup(t)
		_, err := uc.Report.UpdateStatus(ctx, number, "Rejected")
		gt.NoError(t, err).Required()

		reopened, err := uc.Report.UpdateStatus(ctx, number, "Open")
		gt.NoError(t, err).Required()
		gt.Value(t, reopened.Status).Equal(types.InvestigationStatusOpen)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		uc, number := setup(t)
		got, err := uc.Report.UpdateStatus(ctx, number, "submitted")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.InvestigationStatusSubmitted)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		uc, number := setup(t)
		_, err := uc.Report.UpdateStatus(ctx, number, "Archived")
		gt.Error(t, err).Is(usecase.ErrInvalidStatus)
	})

	t.Run("unknown report", func(t *testing.T) {
		uc, _ := setup(t)
		_, err := uc.Report.UpdateStatus(ctx, "HZD-20240315-ZZZZZZ", "Open")
		gt.Error(t, err).Is(interfaces.ErrReportNotFound)
	})
}

func TestReportUseCase_SLA(t *testing.T) {
	uc := usecase.New(memory.New(), usecase.WithClock(fixedClock))
	ctx := context.Background()

	created, err := uc.Report.Submit(ctx, hazardSubmission("2", "D"))
	gt.NoError(t, err).Required()

	st, err := uc.Report.SLA(ctx, created.Number.String(), today.AddDate(0, 0, 13))
	gt.NoError(t, err).Required()
	gt.Value(t, st.DaysRemaining).Equal(2)
	gt.Value(t, st.Status).Equal(types.SLABucketCritical)
	gt.Bool(t, strings.HasSuffix(st.DisplayText, "(critical)")).True()
}

func TestReportUseCase_SLAWithZonedClock(t *testing.T) {
	now := time.Date(2024, 3, 15, 2, 0, 0, 0, time.FixedZone("PKT", 5*60*60))
	uc := usecase.New(memory.New(), usecase.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	created, err := uc.Report.Submit(ctx, hazardSubmission("2", "D"))
	gt.NoError(t, err).Required()

	st, err := uc.Report.SLA(ctx, created.Number.String(), now)
	gt.NoError(t, err).Required()
	gt.Value(t, st.DaysRemaining).Equal(15)
	gt.Value(t, st.Status).Equal(types.SLABucketOK)
}
