package handler

import (
	"encoding/json"
	"net/http"

	"github.com/capitalprocrm/capitalpro-email-service/internal/config"
	"github.com/capitalprocrm/capitalpro-email-service/internal/email"
	"github.com/capitalprocrm/capitalpro-email-service/internal/logger"
)

// TransportFactory builds a transport from the configuration snapshot.
// Injected so tests can substitute a stub for the real SMTP transports.
type TransportFactory func(*config.Config) (email.Transport, error)

// Handler holds all HTTP handlers
type Handler struct {
	log            *logger.Logger
	cfg            *config.Config
	buildTransport TransportFactory
}

// New creates a new Handler instance
func New(log *logger.Logger, cfg *config.Config, factory TransportFactory) *Handler {
	return &Handler{
		log:            log,
		cfg:            cfg,
		buildTransport: factory,
	}
}

// JSON helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, errMsg, detail string) {
	body := map[string]string{"error": errMsg}
	if detail != "" {
		body["detail"] = detail
	}
	writeJSON(w, status, body)
}
