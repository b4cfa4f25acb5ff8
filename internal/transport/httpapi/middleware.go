package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	errx "github.com/hrcopilot/server/internal/core/error"
	"github.com/hrcopilot/server/internal/metrics"
	logx "github.com/hrcopilot/server/pkg/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count and latency per route template.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// recoverPanics converts handler panics into a generic 500.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logx.Error().Str("panic", fmt.Sprint(rec)).Str("path", r.URL.Path).Msg("Recovered from handler panic")
				writeErrorResponse(w, errx.New(nil, http.StatusInternalServerError, errx.SystemErrorMessage))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(http.StatusMethodNotAllowed)).Inc()
		writeErrorResponse(w, errx.MethodNotAllowed(r.Method))
	})
}

func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, errx.New(fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound, "not found"))
	})
}
