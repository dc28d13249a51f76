package services

import (
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/craigsakuma/travelroboto/internal/models"
)

const (
	// How many trailing turns contribute keywords to the retrieval query
	recentTurnWindow = 2
	// Cap on appended keywords so the query stays focused on the question
	maxQueryKeywords = 6
)

var queryStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
	"this": true, "that": true, "these": true, "those": true, "i": true, "you": true,
	"he": true, "she": true, "it": true, "we": true, "they": true, "my": true,
	"your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
	"what": true, "when": true, "where": true, "who": true, "how": true, "time": true,
}

// BuildRetrievalQuery augments the question with noun keywords extracted from
// the most recent turns, so follow-up questions ("what about the hotel?")
// still retrieve against the subject established earlier in the conversation.
// Falls back to the bare question if tagging fails.
func BuildRetrievalQuery(question string, history []models.Turn) string {
	recent := recentNonSystemTurns(history, recentTurnWindow)
	if len(recent) == 0 {
		return question
	}

	var combined strings.Builder
	for _, turn := range recent {
		combined.WriteString(turn.Content)
		combined.WriteByte(' ')
	}

	doc, err := prose.NewDocument(combined.String())
	if err != nil {
		return question
	}

	questionLower := strings.ToLower(question)
	seen := make(map[string]bool)
	keywords := make([]string, 0, maxQueryKeywords)

	for _, tok := range doc.Tokens() {
		if len(keywords) >= maxQueryKeywords {
			break
		}
		// Nouns and proper nouns carry the itinerary subjects worth keeping
		if !strings.HasPrefix(tok.Tag, "NN") {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(tok.Text))
		if len(word) < 3 || queryStopWords[word] || seen[word] {
			continue
		}
		if strings.Contains(questionLower, word) {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	if len(keywords) == 0 {
		return question
	}
	return question + " " + strings.Join(keywords, " ")
}

// recentNonSystemTurns returns the last n turns that carry conversational content
func recentNonSystemTurns(history []models.Turn, n int) []models.Turn {
	recent := make([]models.Turn, 0, n)
	for i := len(history) - 1; i >= 0 && len(recent) < n; i-- {
		if history[i].Role == models.RoleSystem {
			continue
		}
		recent = append(recent, history[i])
	}
	// Restore chronological order
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent
}
