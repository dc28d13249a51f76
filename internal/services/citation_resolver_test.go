package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/craigsakuma/travelroboto/internal/models"
)

func resolverTestChunks() []models.ContextChunk {
	return []models.ContextChunk{
		{
			ChunkID:    "doc1_chunk_0",
			SourceName: "hotel_confirmation.pdf",
			Locator:    "p.1",
			Text:       "Fairmont Banff Springs. Check-in time: 3:00 PM. Check-out: 11:00 AM.",
		},
		{
			ChunkID:    "doc2_chunk_3",
			SourceName: "flight_itinerary.pdf",
			Locator:    "p.2",
			Text:       "Flight AC123 departs Calgary at 9:45 AM.",
		},
	}
}

func TestResolveCitations_NoChunks(t *testing.T) {
	citations, exact := ResolveCitations("Check-in is at 3:00 PM.", nil)

	assert.True(t, exact)
	assert.Empty(t, citations)
	assert.NotNil(t, citations)
}

func TestResolveCitations_MatchesTaggedChunk(t *testing.T) {
	text := "Check-in is at 3:00 PM [source: hotel_confirmation.pdf @ p.1]."

	citations, exact := ResolveCitations(text, resolverTestChunks())

	assert.True(t, exact)
	assert.Len(t, citations, 1)
	assert.Equal(t, "hotel_confirmation.pdf", citations[0].SourceName)
	assert.Equal(t, "p.1", citations[0].Locator)
	assert.Contains(t, citations[0].Excerpt, "3:00 PM")
}

func TestResolveCitations_FirstOccurrenceOrderAndDedup(t *testing.T) {
	text := "Your flight leaves at 9:45 AM [source: flight_itinerary.pdf @ p.2]. " +
		"Check-in is at 3:00 PM [source: hotel_confirmation.pdf @ p.1]. " +
		"Again, departure is 9:45 AM [source: flight_itinerary.pdf @ p.2]."

	citations, exact := ResolveCitations(text, resolverTestChunks())

	assert.True(t, exact)
	assert.Len(t, citations, 2)
	assert.Equal(t, "flight_itinerary.pdf", citations[0].SourceName)
	assert.Equal(t, "hotel_confirmation.pdf", citations[1].SourceName)
}

func TestResolveCitations_IgnoresInventedTags(t *testing.T) {
	text := "Dinner is at 7 PM [source: restaurant_booking.pdf @ p.9]."

	citations, exact := ResolveCitations(text, resolverTestChunks())

	// The only tag matches nothing supplied, so the fallback cites everything
	assert.False(t, exact)
	assert.Len(t, citations, 2)
}

func TestResolveCitations_FallbackCitesAllSuppliedChunks(t *testing.T) {
	citations, exact := ResolveCitations("Check-in is at 3:00 PM.", resolverTestChunks())

	assert.False(t, exact)
	assert.Len(t, citations, 2)
	assert.Equal(t, "hotel_confirmation.pdf", citations[0].SourceName)
	assert.Equal(t, "flight_itinerary.pdf", citations[1].SourceName)
}

func TestResolveCitations_Deterministic(t *testing.T) {
	text := "Check-in is at 3:00 PM [source: hotel_confirmation.pdf @ p.1]."
	chunks := resolverTestChunks()

	first, firstExact := ResolveCitations(text, chunks)
	second, secondExact := ResolveCitations(text, chunks)

	assert.Equal(t, first, second)
	assert.Equal(t, firstExact, secondExact)
}

func TestResolveCitations_ToleratesTagWhitespace(t *testing.T) {
	text := "Check-in is at 3:00 PM [source:  hotel_confirmation.pdf  @  p.1 ]."

	citations, exact := ResolveCitations(text, resolverTestChunks())

	assert.True(t, exact)
	assert.Len(t, citations, 1)
	assert.Equal(t, "p.1", citations[0].Locator)
}

func TestResolveCitations_LongChunkTextIsExcerpted(t *testing.T) {
	chunks := []models.ContextChunk{{
		SourceName: "activities.pdf",
		Locator:    "p.4",
		Text:       strings.Repeat("banff gondola ", 50),
	}}

	citations, _ := ResolveCitations("See the gondola [source: activities.pdf @ p.4].", chunks)

	assert.Len(t, citations, 1)
	assert.LessOrEqual(t, len(citations[0].Excerpt), 203)
	assert.True(t, strings.HasSuffix(citations[0].Excerpt, "..."))
}

func TestStripSourceTags(t *testing.T) {
	text := "Check-in is at 3:00 PM [source: hotel_confirmation.pdf @ p.1]. Enjoy!"

	stripped := StripSourceTags(text)

	assert.Equal(t, "Check-in is at 3:00 PM. Enjoy!", stripped)
	assert.NotContains(t, stripped, "[source:")
}

func TestStripSourceTags_NoTags(t *testing.T) {
	assert.Equal(t, "No tags here.", StripSourceTags("No tags here."))
}

func TestStripSourceTags_PreservesModelSpacing(t *testing.T) {
	// Only the tags and the gaps they sat in are removed; deliberate
	// spacing elsewhere in the answer stays as the model wrote it
	text := "Day 1:   Banff [source: flight_itinerary.pdf @ p.2]\nDay 2:   Lake Louise"

	stripped := StripSourceTags(text)

	assert.Equal(t, "Day 1:   Banff\nDay 2:   Lake Louise", stripped)
}

func TestStripSourceTags_TagBetweenWords(t *testing.T) {
	text := "The pool [source: hotel_confirmation.pdf @ p.1] opens at 7 AM."

	assert.Equal(t, "The pool opens at 7 AM.", StripSourceTags(text))
}
