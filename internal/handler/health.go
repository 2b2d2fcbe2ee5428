package handler

import (
	"net/http"
)

// Health reports service liveness plus presence booleans for each
// configured secret. Values are never included. No auth required.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"ok": true}
	for k, v := range h.cfg.Summary() {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// Root serves a plain-text banner naming the service and its routes.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("CapitalPro email service\n\n" +
		"GET  /health      service and configuration status\n" +
		"POST /send-email  relay an email (X-Api-Key required)\n"))
}
