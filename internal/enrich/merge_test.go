package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/citypulse/harvester/internal/model"
)

func TestMergeField_EmptyIncomingKeepsCurrent(t *testing.T) {
	assert.Equal(t, "Jazz Night", MergeField(model.FieldTitle, "Jazz Night", ""))
	assert.Equal(t, "Jazz Night", MergeField(model.FieldTitle, "Jazz Night", "   "))
	assert.Equal(t, "Jazz Night", MergeField(model.FieldTitle, "Jazz Night", nil))
	assert.Equal(t, []string{"A"}, MergeField(model.FieldArtists, []string{"A"}, []string{}))
}

func TestMergeField_EmptyCurrentAdoptsIncoming(t *testing.T) {
	assert.Equal(t, "Jazz Night", MergeField(model.FieldTitle, nil, "Jazz Night"))
	assert.Equal(t, "Jazz Night", MergeField(model.FieldTitle, "", "Jazz Night"))
	assert.Equal(t, true, MergeField(model.FieldIsFree, nil, true))
}

func TestMergeField_DefaultFirstWins(t *testing.T) {
	// Title, venue, dates: the earlier (higher-trust) extractor keeps its
	// value regardless of what comes later.
	assert.Equal(t, "Jazz Night", MergeField(model.FieldTitle, "Jazz Night", "JAZZ NIGHT LIVE!!"))
	assert.Equal(t, "The Blue Room", MergeField(model.FieldVenueName, "The Blue Room", "Blue Room Bar"))
	assert.Equal(t, "2026-09-01", MergeField(model.FieldDate, "2026-09-01", "Sep 1"))
}

func TestMergeField_DescriptionLongestWins(t *testing.T) {
	short := "A night of jazz."
	long := "A night of jazz featuring the city's best quartet, doors at 7pm."

	assert.Equal(t, long, MergeField(model.FieldDescription, short, long))
	assert.Equal(t, long, MergeField(model.FieldDescription, long, short))
	// Equal length keeps current.
	assert.Equal(t, "abcd", MergeField(model.FieldDescription, "abcd", "wxyz"))
}

func TestMergeField_TicketURLPrefersSelfIdentifying(t *testing.T) {
	plain := "https://example.com/event/42"
	ticketed := "https://tickets.example.com/buy/42"

	// Incoming names itself a ticket link: it takes over.
	assert.Equal(t, ticketed, MergeField(model.FieldTicketURL, plain, ticketed))
	// Incoming does not: current stays, even when current is not a ticket URL.
	assert.Equal(t, plain, MergeField(model.FieldTicketURL, plain, "https://example.com/other"))
	// The check is one-directional: a ticket-y current is still replaced by a
	// ticket-y incoming.
	other := "https://www.ticketmaster.com/e/42"
	assert.Equal(t, other, MergeField(model.FieldTicketURL, ticketed, other))
	// Identical value is not a change.
	assert.Equal(t, ticketed, MergeField(model.FieldTicketURL, ticketed, ticketed))
}

func TestMergeField_ArtistsUnion(t *testing.T) {
	got := MergeField(model.FieldArtists, []string{"Miles", "Trane"}, []string{"trane", "Bird"})
	assert.Equal(t, []string{"Miles", "Trane", "Bird"}, got)
}

func TestMergeField_ArtistsBareStringCoerced(t *testing.T) {
	got := MergeField(model.FieldArtists, []string{"Miles"}, "Bird")
	assert.Equal(t, []string{"Miles", "Bird"}, got)
}

func TestMergeField_ArtistsUnparseableKeepsCurrent(t *testing.T) {
	got := MergeField(model.FieldArtists, []string{"Miles"}, []any{42})
	assert.Equal(t, []string{"Miles"}, got)
}
