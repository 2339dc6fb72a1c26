package interfaces

import "github.com/m-mizutani/goerr/v2"

// Repository defines the interface for data persistence
type Repository interface {
	Report() ReportRepository

	// Close releases backend connections
	Close() error
}

// Errors every backend wraps so callers can match them with errors.Is
var (
	ErrReportNotFound        = goerr.New("report not found")
	ErrDuplicateReportNumber = goerr.New("report number already exists")
)
