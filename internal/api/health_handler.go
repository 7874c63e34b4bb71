package api

import (
	"net/http"

	"github.com/Sniplyy/VibeWall/internal/api/shared"
	"github.com/sony/gobreaker/v2"
)

// BreakerReporter exposes a circuit breaker state.
type BreakerReporter interface {
	PollBreakerState() gobreaker.State
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string `json:"status"`
	PollBreaker string `json:"poll_breaker,omitempty"`
}

// HealthHandler reports liveness. An open SDK poll breaker reports
// "degraded" but still answers 200: REST polling keeps video jobs moving.
func HealthHandler(breaker BreakerReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}
		if breaker != nil {
			state := breaker.PollBreakerState()
			resp.PollBreaker = state.String()
			if state == gobreaker.StateOpen {
				resp.Status = "degraded"
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
	}
}
