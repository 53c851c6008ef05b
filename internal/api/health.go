package api

import (
	"net/http"

	"github.com/phrazzld/taskpulse-api/internal/api/shared"
)

// ConnectionCounter reports the number of open live connections.
type ConnectionCounter interface {
	Len() int
}

// HealthHandler returns the liveness handler. It needs no authentication.
func HealthHandler(connections ConnectionCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := 0
		if connections != nil {
			n = connections.Len()
		}
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Connections: n})
	}
}
