package conversations

import (
	"context"
	"strings"

	"github.com/hrcopilot/server/internal/agent/model"
	logx "github.com/hrcopilot/server/pkg/logger"
)

// SessionManager loads and saves history for callers that pass a session id.
// It sits outside the graph: the pipeline only ever sees the history it is given.
type SessionManager struct {
	conversationRepo model.ConversationRepository
}

func NewSessionManager(conversationRepo model.ConversationRepository) *SessionManager {
	return &SessionManager{conversationRepo: conversationRepo}
}

// Resolve returns supplied when non-empty, otherwise the stored history for sessionID.
func (sm *SessionManager) Resolve(ctx context.Context, sessionID string, supplied []model.Turn) ([]model.Turn, error) {
	if len(supplied) > 0 || sm == nil || strings.TrimSpace(sessionID) == "" {
		return supplied, nil
	}
	history, err := sm.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	logx.Debug().Str("session_id", sessionID).Int("turns", len(history.Turns)).Msg("Loaded session history")
	return history.Turns, nil
}

// SaveExchange persists the new user/assistant pair. Failures are logged only.
func (sm *SessionManager) SaveExchange(ctx context.Context, sessionID, query, response string) {
	if sm == nil || strings.TrimSpace(sessionID) == "" {
		return
	}
	err := sm.conversationRepo.AppendTurns(ctx, sessionID,
		model.Turn{Role: model.RoleUser, Content: query},
		model.Turn{Role: model.RoleAssistant, Content: response},
	)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("Error saving exchange to session store")
		return
	}
	logx.Debug().Str("session_id", sessionID).Msg("Saved exchange to session store")
}
