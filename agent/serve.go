package agent

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"monopoly/protocol"
)

// Handler exposes an agent as the HTTP service the engine's HTTP client
// expects. Any Agent can sit behind it, which is how baseline policies are
// served for remote benchmarking.
func Handler(a Agent) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/decide", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req protocol.DecisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed decision request: "+err.Error(), http.StatusBadRequest)
			return
		}
		act, err := a.Decide(r.Context(), req)
		if err != nil {
			log.Error().Err(err).Msgf("agent %s failed on decision %s", a.Name(), req.Point.DecisionID)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(act); err != nil {
			log.Error().Err(err).Msg("encode action response")
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
