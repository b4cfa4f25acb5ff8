// Package httpapi exposes the copilot, document QA and ticket lookup over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/hrcopilot/server/internal/agent/graph"
	"github.com/hrcopilot/server/internal/agent/graph/conversations"
	"github.com/hrcopilot/server/internal/agent/model"
	errx "github.com/hrcopilot/server/internal/core/error"
	"github.com/hrcopilot/server/internal/docqa"
	"github.com/hrcopilot/server/internal/escalation"
	logx "github.com/hrcopilot/server/pkg/logger"
)

const maxBodyBytes = 1 << 20

// DocQA answers questions over the document index.
type DocQA interface {
	Ask(ctx context.Context, question string) (*docqa.Answer, error)
}

// TicketStore looks up escalation tickets by id.
type TicketStore interface {
	Get(id string) (*escalation.Ticket, bool)
}

// Deps are the collaborators of the HTTP handlers. Copilot is required.
type Deps struct {
	Copilot        graph.Runner
	DocQA          DocQA
	Escalator      *escalation.Escalator
	Tickets        TicketStore
	Sessions       *conversations.SessionManager
	RequestTimeout time.Duration
}

type copilotRequest struct {
	Query               string                 `json:"query"`
	EmployeeContext     *model.EmployeeContext `json:"employee_context,omitempty"`
	ConversationHistory []model.Turn           `json:"conversation_history,omitempty"`
	SessionID           string                 `json:"session_id,omitempty"`
}

type copilotResponse struct {
	FinalResponse       string            `json:"final_response"`
	Category            model.Category    `json:"category"`
	Retrieved           []model.Retrieved `json:"retrieved"`
	ConversationHistory []model.Turn      `json:"conversation_history"`
	TicketID            string            `json:"ticketId,omitempty"`
	Usage               *model.Usage      `json:"usage,omitempty"`
}

type docQARequest struct {
	Question string `json:"question"`
}

type handler struct {
	deps Deps
}

func (h *handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.deps.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.deps.RequestTimeout)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errx.BadRequest(fmt.Errorf("malformed JSON body: %w", err))
	}
	return nil
}

func (h *handler) handleCopilot(w http.ResponseWriter, r *http.Request) {
	var req copilotRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorResponse(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeErrorResponse(w, errx.BadRequest(errors.New("query is required")))
		return
	}
	for i, t := range req.ConversationHistory {
		if !t.Valid() {
			writeErrorResponse(w, errx.BadRequest(fmt.Errorf("conversation_history[%d]: invalid role %q", i, t.Role)))
			return
		}
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	history, err := h.deps.Sessions.Resolve(ctx, req.SessionID, req.ConversationHistory)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", req.SessionID).Msg("Session history unavailable; continuing without it")
		history = req.ConversationHistory
	}

	state, err := h.deps.Copilot.Invoke(ctx, model.QueryInput{
		Query:               req.Query,
		EmployeeContext:     req.EmployeeContext,
		ConversationHistory: history,
	})
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	h.deps.Sessions.SaveExchange(ctx, req.SessionID, state.Query, state.FinalResponse)

	writeJSONResponse(w, http.StatusOK, copilotResponse{
		FinalResponse:       state.FinalResponse,
		Category:            state.Category,
		Retrieved:           state.Retrieved,
		ConversationHistory: state.ConversationHistory,
		TicketID:            h.deps.Escalator.Process(ctx, state),
		Usage:               state.Usage,
	})
}

func (h *handler) handleDocQA(w http.ResponseWriter, r *http.Request) {
	if h.deps.DocQA == nil {
		writeErrorResponse(w, errx.New(errors.New("document QA is not configured"), http.StatusServiceUnavailable, "service unavailable"))
		return
	}

	var req docQARequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	ans, err := h.deps.DocQA.Ask(ctx, req.Question)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, ans)
}

func (h *handler) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if h.deps.Tickets == nil {
		writeErrorResponse(w, errx.New(errors.New("ticket store is not configured"), http.StatusServiceUnavailable, "service unavailable"))
		return
	}
	ticket, ok := h.deps.Tickets.Get(id)
	if !ok {
		writeErrorResponse(w, errx.New(fmt.Errorf("ticket %s not found", id), http.StatusNotFound, "ticket not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, ticket)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}
