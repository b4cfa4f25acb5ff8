package model

import (
	"context"
)

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the ordered conversation log.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Valid reports whether the turn has a known role.
func (t Turn) Valid() bool {
	return t.Role == RoleUser || t.Role == RoleAssistant
}

// ConversationRepository persists history for callers that opt into a session store.
// The copilot graph itself never touches it.
type ConversationRepository interface {
	// AppendTurns appends turns to the history of the given session
	AppendTurns(ctx context.Context, sessionID string, turns ...Turn) error

	// LoadHistory retrieves the conversation history for a session
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a session
	ClearHistory(ctx context.Context, sessionID string) error

	// GetTurnCount returns the number of turns stored for the session
	GetTurnCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	SessionID string
	Turns     []Turn
}
