package services

import (
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize bounds a chunk in characters
	DefaultChunkSize = 800
	// DefaultChunkOverlap is how many trailing lines carry into the next chunk
	DefaultChunkOverlap = 2
)

// TextChunk is a piece of an itinerary document with its line-range locator
type TextChunk struct {
	Text    string
	Locator string
}

// ChunkText splits extracted itinerary text into line-aligned chunks of at
// most size characters, with overlap lines repeated between neighbors so
// details split across a boundary stay retrievable. Locators record the
// 1-based line range each chunk came from.
func ChunkText(text string, size int, overlap int) []TextChunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 0 {
		return nil
	}

	var chunks []TextChunk
	start := 0

	for start < len(lines) {
		end := start
		length := 0
		for end < len(lines) {
			lineLen := len(lines[end]) + 1
			if length > 0 && length+lineLen > size {
				break
			}
			length += lineLen
			end++
		}

		chunkText := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
		if chunkText != "" {
			chunks = append(chunks, TextChunk{
				Text:    chunkText,
				Locator: fmt.Sprintf("lines %d-%d", start+1, end),
			})
		}

		if end >= len(lines) {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}
