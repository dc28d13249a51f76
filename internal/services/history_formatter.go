package services

import (
	"strings"

	"github.com/craigsakuma/travelroboto/internal/models"
)

// Role labels rendered into the transcript shown to the model
const (
	HumanLabel = "You"
	AILabel    = "TravelBot"
)

// FormatHistory renders client-supplied turns into a single model-ready
// transcript, one "<label>: <content>" line per turn, oldest first. System
// turns exist only for caller bookkeeping and are omitted. Content passes
// through unescaped; the model consumes raw text, not a serialized format.
func FormatHistory(history []models.Turn) (string, error) {
	var b strings.Builder
	for _, turn := range history {
		var label string
		switch turn.Role {
		case models.RoleHuman:
			label = HumanLabel
		case models.RoleAI:
			label = AILabel
		case models.RoleSystem:
			continue
		default:
			return "", &models.ValidationError{Field: "history", Message: "unknown role: " + string(turn.Role)}
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String(), nil
}
