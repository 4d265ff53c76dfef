// Package server exposes the authoritative compute endpoint. It runs the same
// simulation kernel as the local fallback path, which is what makes the
// dispatcher's parity guarantee hold: both paths implement one canonical
// policy.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/penplan/pension-planner/internal/engine"
	"github.com/penplan/pension-planner/internal/store"
)

// New assembles the HTTP handler tree: projection compute, scenario CRUD,
// health, and Prometheus metrics.
func New(eng *engine.Engine, scenarios store.ScenarioStore, logger engine.Logger) http.Handler {
	if logger == nil {
		logger = engine.NopLogger{}
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/project", &ProjectHandler{engine: eng, logger: logger})
	mux.Handle("/api/v1/scenarios", &ScenarioHandler{store: scenarios, engine: eng, logger: logger})
	mux.Handle("/api/v1/scenarios/", &ScenarioHandler{store: scenarios, engine: eng, logger: logger})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
