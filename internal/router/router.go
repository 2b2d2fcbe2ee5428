package router

import (
	"net/http"

	"github.com/capitalprocrm/capitalpro-email-service/internal/handler"
	"github.com/capitalprocrm/capitalpro-email-service/internal/middleware"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("GET /", h.Root)
	mux.HandleFunc("GET /health", h.Health)

	// Relay route, gated by the API key
	mux.Handle("POST /send-email", mw.APIKey(http.HandlerFunc(h.SendEmail)))

	// Apply middleware stack
	var handler http.Handler = mux

	// Request logging
	handler = mw.Logger(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
