package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Likelihood is the ICAO probability score, 1 (extremely improbable) to 5 (frequent)
type Likelihood int

const (
	LikelihoodExtremelyImprobable Likelihood = 1
	LikelihoodImprobable          Likelihood = 2
	LikelihoodRemote              Likelihood = 3
	LikelihoodOccasional          Likelihood = 4
	LikelihoodFrequent            Likelihood = 5
)

// AllLikelihoods returns likelihoods from the most to the least probable,
// matching the row order of the risk matrix.
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodFrequent,
		LikelihoodOccasional,
		LikelihoodRemote,
		LikelihoodImprobable,
		LikelihoodExtremelyImprobable,
	}
}

func (l Likelihood) IsValid() bool {
	return l >= LikelihoodExtremelyImprobable && l <= LikelihoodFrequent
}

func (l Likelihood) Int() int {
	return int(l)
}

// Label returns the ICAO descriptor of the likelihood
func (l Likelihood) Label() string {
	switch l {
	case LikelihoodFrequent:
		return "Frequent"
	case LikelihoodOccasional:
		return "Occasional"
	case LikelihoodRemote:
		return "Remote"
	case LikelihoodImprobable:
		return "Improbable"
	case LikelihoodExtremelyImprobable:
		return "Extremely Improbable"
	default:
		return "Unknown"
	}
}

func (l Likelihood) String() string {
	return strconv.Itoa(int(l))
}

// ParseLikelihood parses form input such as "4" or "4 - Occasional"
func ParseLikelihood(s string) (Likelihood, error) {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, " -"); idx > 0 {
		s = s[:idx]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid likelihood: %s", s)
	}
	l := Likelihood(n)
	if !l.IsValid() {
		return 0, fmt.Errorf("likelihood out of range: %d", n)
	}
	return l, nil
}
