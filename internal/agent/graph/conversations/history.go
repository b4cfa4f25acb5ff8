package conversations

import (
	"strings"

	"github.com/hrcopilot/server/internal/agent/model"
)

// AppendExchange returns history followed by the user query and assistant reply.
// The input slice is never modified.
func AppendExchange(history []model.Turn, query, response string) []model.Turn {
	out := make([]model.Turn, 0, len(history)+2)
	out = append(out, history...)
	return append(out,
		model.Turn{Role: model.RoleUser, Content: query},
		model.Turn{Role: model.RoleAssistant, Content: response},
	)
}

// BuildHistoryContext renders the most recent maxTurns turns for the synthesis prompt.
func BuildHistoryContext(turns []model.Turn, maxTurns int) string {
	recent := trimTail(turns, maxTurns)
	if len(recent) == 0 {
		return ""
	}

	var b strings.Builder
	for _, t := range recent {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		switch t.Role {
		case model.RoleUser:
			b.WriteString("User: " + t.Content + "\n")
		case model.RoleAssistant:
			b.WriteString("Assistant: " + t.Content + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ====================== Helper function ======================
func trimTail(turns []model.Turn, maxTurns int) []model.Turn {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		return turns
	}
	return turns[len(turns)-maxTurns:]
}
