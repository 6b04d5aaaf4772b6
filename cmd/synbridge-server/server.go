package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	synbridge "github.com/synian-app/synbridge"
)

func newRouter(engine *synbridge.Engine, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/alexa", handleAlexa(engine, logger)).Methods(http.MethodPost)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	return r
}

func handleAlexa(engine *synbridge.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env alexaEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		ev := classify(env)
		start := time.Now()
		speech := engine.Handle(r.Context(), ev)
		logger.Info("handled",
			"intent", ev.Intent.String(),
			"request_id", ev.RequestID,
			"end_session", speech.EndSession,
			"elapsed", time.Since(start),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(renderResponse(speech)); err != nil {
			logger.Error("encode response", "err", err, "request_id", ev.RequestID)
		}
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
