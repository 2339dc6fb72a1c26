package memory

import (
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
)

// Memory keeps every record in process memory. It is intended for
// development and tests; data is lost on restart.
type Memory struct {
	report *reportRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		report: newReportRepository(),
	}
}

func (m *Memory) Report() interfaces.ReportRepository {
	return m.report
}

func (m *Memory) Close() error {
	return nil
}
