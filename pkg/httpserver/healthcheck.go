package httpserver

import (
	"context"
	"net/http"
)

// HealthcheckHandler aggregates readiness probes into an HTTP handler:
// 200 when every probe passes, 503 with the first failure otherwise.
func HealthcheckHandler(probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
