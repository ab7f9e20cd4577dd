package handlers

import "net/http"

// Health reports process liveness.
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
