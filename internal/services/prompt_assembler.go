package services

import (
	"fmt"
	"strings"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// DefaultSystemPrompt carries the itinerary chatbot instructions. The chunk
// tag convention is spelled out so generated answers can be attributed back
// to their sources.
const DefaultSystemPrompt = "You are TravelBot, a chatbot for a travel app that answers questions about " +
	"the travel itinerary. Reference the itinerary context below for information to answer questions. " +
	"If there isn't enough detail in the question, ask for additional information. If the information " +
	"doesn't exist in the itinerary, let the user know instead of guessing.\n\n" +
	"Format responses for a text messaging UI: be concise, use bullet points where helpful, and include " +
	"URLs when relevant.\n\n" +
	"When your answer uses a piece of itinerary context, repeat its [source: ... @ ...] tag after the " +
	"claim it supports."

// DefaultPromptBudget bounds the assembled prompt in characters
const DefaultPromptBudget = 12000

// PromptAssembler composes the bounded prompt handed to the model
type PromptAssembler struct {
	systemPrompt string
	budget       int
}

// NewPromptAssembler creates an assembler with the given instructions and
// character budget; zero values fall back to defaults.
func NewPromptAssembler(systemPrompt string, budget int) *PromptAssembler {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if budget <= 0 {
		budget = DefaultPromptBudget
	}
	return &PromptAssembler{
		systemPrompt: systemPrompt,
		budget:       budget,
	}
}

// Assemble builds the prompt envelope from history, ranked chunks and the
// question. When over budget it drops the lowest-relevance chunks first, then
// the oldest history turns, re-measuring after each removal. The question and
// system instructions are never dropped: a prompt reduced to just those two
// still proceeds, flagged as truncated.
func (a *PromptAssembler) Assemble(history []models.Turn, chunks []models.ContextChunk, question string) (*models.PromptEnvelope, error) {
	// Chunks arrive sorted descending by relevance; keep a private copy so
	// truncation never mutates the caller's slice
	keptChunks := append([]models.ContextChunk(nil), chunks...)
	keptHistory := append([]models.Turn(nil), history...)
	truncated := false

	text, err := a.render(keptHistory, keptChunks, question)
	if err != nil {
		return nil, err
	}

	for len(text) > a.budget {
		if len(keptChunks) > 0 {
			keptChunks = keptChunks[:len(keptChunks)-1]
		} else if len(keptHistory) > 0 {
			keptHistory = keptHistory[1:]
		} else {
			// Only instructions and question remain; proceed regardless,
			// still flagged so the response reports the overrun
			truncated = true
			break
		}
		truncated = true

		text, err = a.render(keptHistory, keptChunks, question)
		if err != nil {
			return nil, err
		}
	}

	return &models.PromptEnvelope{
		Text:      text,
		Chunks:    keptChunks,
		Truncated: truncated,
	}, nil
}

// render concatenates the envelope sections in their fixed order
func (a *PromptAssembler) render(history []models.Turn, chunks []models.ContextChunk, question string) (string, error) {
	var b strings.Builder
	b.WriteString(a.systemPrompt)
	b.WriteString("\n")

	transcript, err := FormatHistory(history)
	if err != nil {
		return "", err
	}
	if transcript != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(transcript)
		b.WriteString("\n")
	}

	if len(chunks) > 0 {
		b.WriteString("\nItinerary context:\n")
		for _, chunk := range chunks {
			b.WriteString(RenderChunkTag(chunk))
			b.WriteString("\n")
			b.WriteString(chunk.Text)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String(), nil
}

// RenderChunkTag renders the source tag preceding each chunk's text. The
// citation resolver matches this exact convention in generated answers.
func RenderChunkTag(chunk models.ContextChunk) string {
	return fmt.Sprintf("[source: %s @ %s]", chunk.SourceName, chunk.Locator)
}
