package model

import (
	"crypto/rand"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/types"
)

// ReportNumber is the human readable reference of a report, such as
// HZD-20240315-7QK2ZD
type ReportNumber string

func (n ReportNumber) String() string {
	return string(n)
}

const (
	reportNumberSuffixLen = 6
	reportNumberAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var reportNumberPattern = regexp.MustCompile(`^[A-Z]{3}-\d{8}-[A-Z0-9]{6}$`)

// NewReportNumber mints a report number dated at now. The department does
// not affect the result. Uniqueness is probabilistic; repositories reject
// duplicates.
func NewReportNumber(reportType types.ReportType, _ string, now time.Time) ReportNumber {
	return ReportNumber(reportType.Prefix() + "-" + now.Format("20060102") + "-" + randomSuffix(reportNumberSuffixLen))
}

// randomSuffix draws n characters from the alphabet with rejection
// sampling so every character is equally likely.
func randomSuffix(n int) string {
	const limit = 256 - 256%len(reportNumberAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		// crypto/rand.Read never returns an error since Go 1.24
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, reportNumberAlphabet[int(b)%len(reportNumberAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

// ParseReportNumber validates the shape of a report number
func ParseReportNumber(s string) (ReportNumber, error) {
	if !reportNumberPattern.MatchString(s) {
		return "", goerr.Wrap(ErrInvalidNumber, "malformed report number", goerr.V(ReportNumberKey, s))
	}
	return ReportNumber(s), nil
}

// Prefix returns the type prefix of the number
func (n ReportNumber) Prefix() string {
	if len(n) < 3 {
		return ""
	}
	return string(n[:3])
}
