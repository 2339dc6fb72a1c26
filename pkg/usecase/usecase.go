package usecase

import (
	"time"

	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/domain/model"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
	"github.com/secmon-lab/avsafe/pkg/service/metrics"
	"github.com/secmon-lab/avsafe/pkg/service/slack"
	"github.com/secmon-lab/avsafe/pkg/service/storage"
)

// NumberGenerator mints a report number candidate
type NumberGenerator func(reportType types.ReportType, department string, now time.Time) model.ReportNumber

type UseCases struct {
	repo         interfaces.Repository
	slackService slack.Service
	slackChannel string
	policy       model.SLAPolicy
	validator    *model.SubmissionValidator
	metrics      *metrics.Metrics
	uploader     storage.Service
	now          func() time.Time
	newNumber    NumberGenerator

	Report    *ReportUseCase
	Dashboard *DashboardUseCase
	Export    *ExportUseCase
	Digest    *DigestUseCase
}

type Option func(*UseCases)

// WithSlack enables high risk alerts and SLA digests on channelID
func WithSlack(svc slack.Service, channelID string) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
		uc.slackChannel = channelID
	}
}

func WithSLAPolicy(policy model.SLAPolicy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

func WithValidator(v *model.SubmissionValidator) Option {
	return func(uc *UseCases) {
		uc.validator = v
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithUploader makes exports upload to object storage instead of returning bytes only
func WithUploader(u storage.Service) Option {
	return func(uc *UseCases) {
		uc.uploader = u
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func WithNumberGenerator(gen NumberGenerator) Option {
	return func(uc *UseCases) {
		uc.newNumber = gen
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:      repo,
		policy:    model.DefaultSLAPolicy(),
		validator: model.NewSubmissionValidator(),
		now:       time.Now,
		newNumber: model.NewReportNumber,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Report = &ReportUseCase{uc: uc}
	uc.Dashboard = &DashboardUseCase{uc: uc}
	uc.Export = &ExportUseCase{uc: uc}
	uc.Digest = &DigestUseCase{uc: uc}

	return uc
}

// Policy returns the SLA policy in effect
func (uc *UseCases) Policy() model.SLAPolicy {
	return uc.policy
}

func (uc *UseCases) slackEnabled() bool {
	return uc.slackService != nil && uc.slackChannel != ""
}
