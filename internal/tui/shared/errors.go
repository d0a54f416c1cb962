package shared

import (
	"fmt"
	"strings"

	"github.com/joe/file-modifier/internal/engine"
)

// MessageLimit is how many operation messages are shown before the list is cut short.
const MessageLimit = 5

// RenderMessages renders operation messages, most recent last, with their
// suggestions indented below each one. Only the newest limit entries are
// shown; limit <= 0 shows all of them.
func RenderMessages(messages []engine.OperationMessage, limit, maxWidth int) string {
	if len(messages) == 0 {
		return ""
	}

	var builder strings.Builder

	start := 0
	if limit > 0 && len(messages) > limit {
		start = len(messages) - limit
		fmt.Fprintf(&builder, "%s\n", RenderDim(fmt.Sprintf("... %d earlier message(s)", start)))
	}

	for _, msg := range messages[start:] {
		fmt.Fprintf(&builder, "  %s %s\n", ErrorSymbol(), truncate(msg.Message, maxWidth))

		for _, suggestion := range msg.Suggestions {
			fmt.Fprintf(&builder, "      • %s\n", truncate(suggestion, maxWidth))
		}
	}

	return builder.String()
}

// ErrorSymbol is the marker printed in front of each message.
func ErrorSymbol() string {
	return ErrorStyle().Render("✗")
}

// SuccessSymbol is the marker printed for completed operations.
func SuccessSymbol() string {
	return SuccessStyle().Render("✓")
}

func truncate(text string, maxWidth int) string {
	if maxWidth <= ellipsisLength || len(text) <= maxWidth {
		return text
	}

	return text[:maxWidth-ellipsisLength] + "..."
}

const ellipsisLength = 3
