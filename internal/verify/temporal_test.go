package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(value string) *time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func TestTemporalChecker_NoDates(t *testing.T) {
	checker := NewTemporalConsistencyChecker(DefaultThresholds())

	result := checker.Check(nil, nil, nil)

	assert.False(t, result.HasMismatch)
	assert.Equal(t, NoTemporalInfo, result.Verdict)
	assert.Equal(t, SeverityNone, result.Severity)
	assert.Equal(t, 0, result.Confidence)
}

func TestTemporalChecker_WrongYearClaimed(t *testing.T) {
	checker := NewTemporalConsistencyChecker(DefaultThresholds())

	result := checker.Check(date("2023-06-01"), date("2024-06-01"), nil)

	assert.True(t, result.HasMismatch)
	assert.Equal(t, WrongYearClaimed, result.Verdict)
	assert.Equal(t, SeverityCritical, result.Severity)
	assert.Equal(t, 95, result.Confidence)
	assert.Contains(t, result.CorrectionMessage, "2023")
	assert.Contains(t, result.CorrectionMessage, "2024")
}

func TestTemporalChecker_WrongMonthClaimed(t *testing.T) {
	checker := NewTemporalConsistencyChecker(DefaultThresholds())

	result := checker.Check(date("2024-03-01"), date("2024-06-15"), nil)

	assert.True(t, result.HasMismatch)
	assert.Equal(t, WrongMonthClaimed, result.Verdict)
	assert.Equal(t, SeverityHigh, result.Severity)
	assert.Equal(t, 85, result.Confidence)
}

func TestTemporalChecker_OldImageReused(t *testing.T) {
	checker := NewTemporalConsistencyChecker(DefaultThresholds())

	result := checker.Check(date("2024-06-01"), nil, date("2022-01-01"))

	assert.True(t, result.HasMismatch)
	assert.Equal(t, OldImageReused, result.Verdict)
	assert.Equal(t, SeverityCritical, result.Severity)
	assert.Equal(t, 95, result.Confidence)
}

func TestTemporalChecker_ClaimMismatchOutranksImageReuse(t *testing.T) {
	checker := NewTemporalConsistencyChecker(DefaultThresholds())

	result := checker.Check(date("2023-06-01"), date("2024-06-01"), date("2020-01-01"))

	assert.Equal(t, WrongYearClaimed, result.Verdict)
}

func TestTemporalChecker_DatesConsistent(t *testing.T) {
	checker := NewTemporalConsistencyChecker(DefaultThresholds())

	result := checker.Check(date("2024-06-01"), date("2024-06-03"), date("2024-05-28"))

	assert.False(t, result.HasMismatch)
	assert.Equal(t, DatesConsistent, result.Verdict)
	assert.Equal(t, 70, result.Confidence)
}
