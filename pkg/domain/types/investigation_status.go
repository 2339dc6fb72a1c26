package types

import (
	"fmt"
	"slices"
	"strings"
)

// InvestigationStatus tracks where a report is in the investigation workflow
type InvestigationStatus string

const (
	InvestigationStatusDraft              InvestigationStatus = "Draft"
	InvestigationStatusSubmitted          InvestigationStatus = "Submitted"
	InvestigationStatusOpen               InvestigationStatus = "Open"
	InvestigationStatusUnderInvestigation InvestigationStatus = "Under Investigation"
	InvestigationStatusPendingReview      InvestigationStatus = "Pending Review"
	InvestigationStatusCorrectiveAction   InvestigationStatus = "Corrective Action"
	InvestigationStatusClosed             InvestigationStatus = "Closed"
	InvestigationStatusRejected           InvestigationStatus = "Rejected"
)

// AllInvestigationStatuses returns statuses in workflow order
func AllInvestigationStatuses() []InvestigationStatus {
	return []InvestigationStatus{
		InvestigationStatusDraft,
		InvestigationStatusSubmitted,
		InvestigationStatusOpen,
		InvestigationStatusUnderInvestigation,
		InvestigationStatusPendingReview,
		InvestigationStatusCorrectiveAction,
		InvestigationStatusClosed,
		InvestigationStatusRejected,
	}
}

// OpenInvestigationStatuses are counted as open on the dashboard
func OpenInvestigationStatuses() []InvestigationStatus {
	return []InvestigationStatus{
		InvestigationStatusSubmitted,
		InvestigationStatusOpen,
		InvestigationStatusUnderInvestigation,
		InvestigationStatusPendingReview,
		InvestigationStatusCorrectiveAction,
	}
}

// ClosedInvestigationStatuses are counted as closed on the dashboard
func ClosedInvestigationStatuses() []InvestigationStatus {
	return []InvestigationStatus{
		InvestigationStatusClosed,
		InvestigationStatusRejected,
	}
}

func (s InvestigationStatus) IsValid() bool {
	return slices.Contains(AllInvestigationStatuses(), s)
}

func (s InvestigationStatus) IsOpen() bool {
	return slices.Contains(OpenInvestigationStatuses(), s)
}

func (s InvestigationStatus) IsClosed() bool {
	return slices.Contains(ClosedInvestigationStatuses(), s)
}

// Normalize treats an empty status as Submitted, the state of a freshly
// filed report.
func (s InvestigationStatus) Normalize() InvestigationStatus {
	if s == "" {
		return InvestigationStatusSubmitted
	}
	return s
}

func (s InvestigationStatus) String() string {
	return string(s)
}

func (s InvestigationStatus) order() int {
	return slices.Index(AllInvestigationStatuses(), s)
}

// CanTransitionTo reports whether a report may move from s to next. Moving
// forward is always allowed, closed reports may be reopened, and any other
// backwards move is rejected.
func (s InvestigationStatus) CanTransitionTo(next InvestigationStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}
	if s.IsClosed() {
		return next == InvestigationStatusOpen
	}
	return next.order() > s.order()
}

// ParseInvestigationStatus parses a status case-insensitively. Underscores
// are accepted in place of spaces ("under_investigation").
func ParseInvestigationStatus(s string) (InvestigationStatus, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	for _, st := range AllInvestigationStatuses() {
		if strings.EqualFold(normalized, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid investigation status: %s", s)
}
