package verify

import (
	"fmt"
	"time"
)

// TemporalConsistencyChecker cross-verifies three optional date sources: the
// date the text claims, the actual event date corroborated from the web, and
// the image capture date. Checks run in priority order: a wrong-year claim
// verifiable against independent corroboration outranks old-image reuse,
// which outranks no finding.
type TemporalConsistencyChecker struct {
	thresholds Thresholds
}

// NewTemporalConsistencyChecker creates a new temporal checker.
func NewTemporalConsistencyChecker(thresholds Thresholds) *TemporalConsistencyChecker {
	return &TemporalConsistencyChecker{thresholds: thresholds}
}

// Check compares the claimed, actual, and image dates. Any of the three may
// be nil; absence of all dates is a valid terminal state, not an error.
func (c *TemporalConsistencyChecker) Check(claimed, actual, imageDate *time.Time) TemporalResult {
	if claimed == nil && actual == nil && imageDate == nil {
		return TemporalResult{
			HasMismatch: false,
			Verdict:     NoTemporalInfo,
			Severity:    SeverityNone,
			Confidence:  0,
		}
	}

	if claimed != nil && actual != nil {
		diffDays := absDays(*claimed, *actual)

		if diffDays >= c.thresholds.YearMismatchDays {
			return TemporalResult{
				HasMismatch: true,
				Verdict:     WrongYearClaimed,
				Severity:    SeverityCritical,
				ClaimedDate: claimed,
				ActualDate:  actual,
				ImageDate:   imageDate,
				CorrectionMessage: fmt.Sprintf(
					"Claimed year %d but the event actually happened in %d",
					claimed.Year(), actual.Year()),
				Confidence: 95,
			}
		}

		if diffDays > c.thresholds.MonthMismatchDays {
			return TemporalResult{
				HasMismatch: true,
				Verdict:     WrongMonthClaimed,
				Severity:    SeverityHigh,
				ClaimedDate: claimed,
				ActualDate:  actual,
				ImageDate:   imageDate,
				CorrectionMessage: fmt.Sprintf(
					"Event was in %s, not %s",
					actual.Format("January 2006"), claimed.Format("January 2006")),
				Confidence: 85,
			}
		}
	}

	if imageDate != nil && claimed != nil {
		diffDays := absDays(*claimed, *imageDate)

		if diffDays > c.thresholds.OldImageDays {
			return TemporalResult{
				HasMismatch: true,
				Verdict:     OldImageReused,
				Severity:    SeverityCritical,
				ClaimedDate: claimed,
				ActualDate:  actual,
				ImageDate:   imageDate,
				CorrectionMessage: fmt.Sprintf(
					"Image was captured in %d but the claimed incident is from %d",
					imageDate.Year(), claimed.Year()),
				Confidence: 95,
			}
		}
	}

	return TemporalResult{
		HasMismatch: false,
		Verdict:     DatesConsistent,
		Severity:    SeverityNone,
		ClaimedDate: claimed,
		ActualDate:  actual,
		ImageDate:   imageDate,
		Confidence:  70,
	}
}

// absDays returns the absolute whole-day distance between two instants.
func absDays(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
