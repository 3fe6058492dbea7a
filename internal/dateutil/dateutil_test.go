package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

func TestParseHumanDate_ISO(t *testing.T) {
	got, err := ParseHumanDate("2026-09-01", ref)
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.September, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestParseHumanDate_FullTextWithYear(t *testing.T) {
	got, err := ParseHumanDate("January 4, 2027", ref)
	require.NoError(t, err)
	assert.Equal(t, 2027, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 4, got.Day())
}

func TestParseHumanDate_WeekdayAndOrdinalStripped(t *testing.T) {
	got, err := ParseHumanDate("Saturday, Jan 4th, 2027", ref)
	require.NoError(t, err)
	assert.Equal(t, 2027, got.Year())
	assert.Equal(t, 4, got.Day())
}

func TestParseHumanDate_NoYearRollsForward(t *testing.T) {
	// Jan 4 is before the August reference, so it resolves to next year.
	got, err := ParseHumanDate("Jan 4", ref)
	require.NoError(t, err)
	assert.Equal(t, 2027, got.Year())
	assert.Equal(t, time.January, got.Month())

	// Sep 15 is still ahead in the reference year.
	got, err = ParseHumanDate("Sep 15", ref)
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
}

func TestParseHumanDate_Empty(t *testing.T) {
	_, err := ParseHumanDate("  ", ref)
	assert.Error(t, err)
}

func TestParseHumanDate_Garbage(t *testing.T) {
	_, err := ParseHumanDate("every other thursday", ref)
	assert.Error(t, err)
}
