package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ErrCopilotRequired = errors.New("httpapi: copilot runner is required")

// NewRouter registers every route on a gorilla/mux router.
func NewRouter(deps Deps) (*mux.Router, error) {
	if deps.Copilot == nil {
		return nil, ErrCopilotRequired
	}
	h := &handler{deps: deps}

	router := mux.NewRouter()
	router.MethodNotAllowedHandler = methodNotAllowed()
	router.NotFoundHandler = notFound()
	router.Use(recoverPanics, instrument)

	router.HandleFunc("/api/copilot", h.handleCopilot).Methods(http.MethodPost)
	router.HandleFunc("/api/docqa", h.handleDocQA).Methods(http.MethodPost)
	router.HandleFunc("/api/tickets/{id}", h.handleGetTicket).Methods(http.MethodGet)

	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router, nil
}
