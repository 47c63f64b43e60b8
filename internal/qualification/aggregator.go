package qualification

import (
	"math"

	"registrum/internal/domain"
)

// Aggregate is the summary of a verdict set.
type Aggregate struct {
	Status domain.QualificationStatus
	Score  int
	Counts domain.VerdictCounts
}

// CountVerdicts tallies verdicts by answer.
func CountVerdicts(verdicts []domain.Verdict) domain.VerdictCounts {
	var c domain.VerdictCounts
	for _, v := range verdicts {
		switch v.Answer {
		case domain.AnswerYes:
			c.Yes++
		case domain.AnswerNo:
			c.No++
		default:
			c.NotApplicable++
		}
	}
	return c
}

// Score is round(100 * YES / (YES + NO)); NOT_APPLICABLE is ignored and an
// empty denominator scores 0.
func Score(c domain.VerdictCounts) int {
	decided := c.Yes + c.No
	if decided == 0 {
		return 0
	}
	return int(math.Round(100 * float64(c.Yes) / float64(decided)))
}

// AggregateVerdicts computes score and status. Any mandatory NO rejects; otherwise the
// run is approved when the score reaches threshold and no mandatory item is
// NOT_APPLICABLE, and pending in every other case.
func AggregateVerdicts(verdicts []domain.Verdict, mandatory map[string]bool, threshold int) Aggregate {
	counts := CountVerdicts(verdicts)
	score := Score(counts)

	mandatoryNA := false
	for _, v := range verdicts {
		if !mandatory[v.ItemID] {
			continue
		}
		switch v.Answer {
		case domain.AnswerNo:
			return Aggregate{Status: domain.StatusRejected, Score: score, Counts: counts}
		case domain.AnswerNotApplicable:
			mandatoryNA = true
		}
	}

	status := domain.StatusPending
	if score >= threshold && !mandatoryNA {
		status = domain.StatusApproved
	}
	return Aggregate{Status: status, Score: score, Counts: counts}
}

// MandatorySet returns the ids of the mandatory items.
func MandatorySet(items []domain.ChecklistItem) map[string]bool {
	set := make(map[string]bool)
	for _, item := range items {
		if item.Mandatory {
			set[item.ID] = true
		}
	}
	return set
}
