// Package recovery turns handler panics into JSON 500 responses.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	respond "github.com/quillmind/quillmind/server/internal/api/respond"
)

var panicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "quillmind",
	Subsystem: "http",
	Name:      "panics_total",
	Help:      "Handler panics recovered, by route.",
}, []string{"route"})

// New returns middleware that recovers a panic, logs it with the request id
// and route, and answers 500 in the API's error format. The request id is
// read from the X-Request-ID header, so place it outside RequestID.
func New(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				route := routeOf(r)
				panicsTotal.WithLabelValues(route).Inc()
				logger.Error().
					Interface("panic", rec).
					Str("request_id", r.Header.Get("X-Request-ID")).
					Str("method", r.Method).
					Str("route", route).
					Bytes("stack", debug.Stack()).
					Msg("recovered handler panic")
				respond.WriteInternalError(w, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func routeOf(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
