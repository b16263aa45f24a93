package textproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_ExtractsEventTypeAndKeywords(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("Massive flood submerged parts of Chennai after heavy rain")

	assert.Equal(t, "flood", signal.EventType)
	assert.Equal(t, "Chennai", signal.Location)
	assert.Contains(t, signal.Keywords, "flood")
	assert.Contains(t, signal.Keywords, "rain")
	assert.Contains(t, signal.Keywords, "massive")
	assert.NotContains(t, signal.Keywords, "the")
}

func TestProcessor_KeywordCap(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process(
		"fire burning blaze flames smoke flood flooding submerged deluge " +
			"earthquake tremor seismic quake explosion blast detonation rescue " +
			"emergency relief evacuation severe heavy massive")

	assert.LessOrEqual(t, len(signal.Keywords), 15)
}

func TestProcessor_NumericDate(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("Bridge collapse on 15/06/2024 in Mumbai")

	require.Len(t, signal.ClaimedDates, 1)
	claimed := signal.ClaimedDates[0]
	assert.Equal(t, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), claimed.Date)
	assert.Equal(t, 0.95, claimed.Confidence)
	assert.Equal(t, "15/06/2024", claimed.SourceSpan)
}

func TestProcessor_MonthDayYearDate(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("Protest rally on June 5, 2024 in Delhi")

	require.NotEmpty(t, signal.ClaimedDates)
	claimed := signal.ClaimedDates[0]
	assert.Equal(t, time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC), claimed.Date)
	assert.Equal(t, 0.95, claimed.Confidence)
}

func TestProcessor_MonthYearDate(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("Cyclone hit Chennai in December 2023")

	require.NotEmpty(t, signal.ClaimedDates)
	claimed := signal.ClaimedDates[0]
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), claimed.Date)
	assert.Equal(t, 0.80, claimed.Confidence)
}

func TestProcessor_BareYearLowConfidence(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("Earthquake damage from 2021 resurfacing")

	require.Len(t, signal.ClaimedDates, 1)
	assert.Equal(t, 2021, signal.ClaimedDates[0].Date.Year())
	assert.Equal(t, 0.60, signal.ClaimedDates[0].Confidence)
}

func TestProcessor_RelativeDate(t *testing.T) {
	fixed := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	processor := &Processor{now: func() time.Time { return fixed }}

	signal := processor.Process("Breaking: fire reported yesterday near the port")

	var yesterday *time.Time
	for _, claimed := range signal.ClaimedDates {
		if claimed.SourceSpan == "yesterday" {
			date := claimed.Date
			yesterday = &date
			assert.Equal(t, 0.90, claimed.Confidence)
		}
	}
	require.NotNil(t, yesterday)
	assert.Equal(t, 9, yesterday.Day())
}

func TestProcessor_NumericDateSuppressesBareYear(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("Accident on 01/03/2024")

	require.Len(t, signal.ClaimedDates, 1)
	assert.Equal(t, "01/03/2024", signal.ClaimedDates[0].SourceSpan)
}

func TestProcessor_EmptyText(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("")

	assert.Equal(t, "incident", signal.EventType)
	assert.Empty(t, signal.Keywords)
	assert.Empty(t, signal.Location)
	assert.Empty(t, signal.ClaimedDates)
}

func TestBuildSearchQuery(t *testing.T) {
	processor := NewProcessor()

	signal := processor.Process("Heavy flood in Chennai during December 2023")
	query := processor.BuildSearchQuery(signal)

	assert.Contains(t, query, "Chennai")
	assert.Contains(t, query, "flood")
	assert.Contains(t, query, "December 2023")
}

func TestBuildSearchQuery_NoSignal(t *testing.T) {
	processor := NewProcessor()

	query := processor.BuildSearchQuery(processor.Process(""))

	assert.Equal(t, "incident", query)
}
