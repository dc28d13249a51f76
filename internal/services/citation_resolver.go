package services

import (
	"regexp"
	"strings"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// Matches the tag convention the prompt assembler teaches the model:
// [source: <source_name> @ <locator>]
var (
	sourceTagPattern = regexp.MustCompile(`\[source:\s*([^@\]]+?)\s*@\s*([^\]]+?)\s*\]`)
	// Swallows the whitespace preceding a tag so removal leaves no gap;
	// spacing elsewhere in the answer is the model's to keep
	stripTagPattern = regexp.MustCompile(`[ \t]*\[source:\s*[^@\]]+?\s*@\s*[^\]]+?\s*\]`)
)

// ResolveCitations maps the generated text back to the chunks supplied in
// the prompt. Tags are collected in first-occurrence order and deduplicated;
// chunks the model never referenced are not cited. When the model emitted no
// recognizable tags but chunks were supplied, every supplied chunk is listed
// as a context-provided citation instead of dropping attribution entirely —
// that lower-confidence path is signalled by exact=false.
//
// The result depends only on the inputs, so identical (text, chunks) pairs
// always yield identical citation sequences.
func ResolveCitations(text string, chunks []models.ContextChunk) (citations []models.Citation, exact bool) {
	if len(chunks) == 0 {
		return []models.Citation{}, true
	}

	// Index supplied chunks so tags resolve to their excerpt
	supplied := make(map[string]models.ContextChunk, len(chunks))
	for _, chunk := range chunks {
		supplied[citationKey(chunk.SourceName, chunk.Locator)] = chunk
	}

	citations = []models.Citation{}
	seen := make(map[string]bool)

	for _, match := range sourceTagPattern.FindAllStringSubmatch(text, -1) {
		sourceName := strings.TrimSpace(match[1])
		locator := strings.TrimSpace(match[2])
		key := citationKey(sourceName, locator)
		if seen[key] {
			continue
		}
		chunk, ok := supplied[key]
		if !ok {
			// The model invented a tag that matches no supplied chunk
			continue
		}
		seen[key] = true
		citations = append(citations, models.Citation{
			SourceName: chunk.SourceName,
			Locator:    chunk.Locator,
			Excerpt:    excerpt(chunk.Text),
		})
	}

	if len(citations) > 0 {
		return citations, true
	}

	// Best-effort fallback: cite everything that was in the prompt
	for _, chunk := range chunks {
		key := citationKey(chunk.SourceName, chunk.Locator)
		if seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, models.Citation{
			SourceName: chunk.SourceName,
			Locator:    chunk.Locator,
			Excerpt:    excerpt(chunk.Text),
		})
	}
	return citations, false
}

// StripSourceTags removes citation tags from the answer text shown to users
func StripSourceTags(text string) string {
	return strings.TrimSpace(stripTagPattern.ReplaceAllString(text, ""))
}

func citationKey(sourceName, locator string) string {
	return sourceName + "|" + locator
}

func excerpt(text string) string {
	const maxExcerpt = 200
	if len(text) <= maxExcerpt {
		return text
	}
	return text[:maxExcerpt] + "..."
}
