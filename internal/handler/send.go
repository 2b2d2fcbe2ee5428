package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/capitalprocrm/capitalpro-email-service/internal/email"
)

// maxBodyBytes caps the request body at 2 MiB.
const maxBodyBytes = 2 << 20

// sendRequest is the JSON payload accepted by POST /send-email.
// to, cc and bcc take a single address or a comma-separated list.
type sendRequest struct {
	To             string         `json:"to"`
	Subject        string         `json:"subject"`
	Text           string         `json:"text"`
	HTML           string         `json:"html"`
	ReplyTo        string         `json:"replyTo"`
	Cc             string         `json:"cc"`
	Bcc            string         `json:"bcc"`
	OrganizationID string         `json:"organizationId"`
	Meta           map[string]any `json:"meta"`
}

// validate checks required fields in order and reports the first failure.
func (req *sendRequest) validate() error {
	if strings.TrimSpace(req.To) == "" {
		return errors.New("Missing required field: to")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return errors.New("Missing required field: subject")
	}
	if req.Text == "" && req.HTML == "" {
		return errors.New("Missing email body: text or html")
	}
	return nil
}

// message maps the request onto a transport message with the configured
// sender identity.
func (req *sendRequest) message(fromName, fromAddress string) email.Message {
	return email.Message{
		FromName:       fromName,
		FromAddress:    fromAddress,
		To:             splitAddressList(req.To),
		Cc:             splitAddressList(req.Cc),
		Bcc:            splitAddressList(req.Bcc),
		ReplyTo:        strings.TrimSpace(req.ReplyTo),
		Subject:        req.Subject,
		Text:           req.Text,
		HTML:           req.HTML,
		OrganizationID: req.OrganizationID,
		Meta:           req.Meta,
	}
}

type sendResponse struct {
	OK        bool     `json:"ok"`
	MessageID string   `json:"messageId"`
	Accepted  []string `json:"accepted"`
	Rejected  []string `json:"rejected"`
}

// SendEmail relays one message through the configured transport.
// Pipeline: decode, validate, build transport, dispatch once, normalize.
// Every failure is converted to a structured JSON error here; nothing
// propagates past the request boundary.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid field: %s", typeErr.Field), "")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}

	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	// Construction is pure struct assembly, so building per request keeps
	// the handler free of cross-request state.
	transport, err := h.buildTransport(h.cfg)
	if err != nil {
		var cfgErr *email.ConfigError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusInternalServerError, "Server misconfigured", cfgErr.Reason)
			return
		}
		writeError(w, http.StatusInternalServerError, "Server misconfigured", err.Error())
		return
	}

	msg := req.message(h.cfg.FromName(), h.cfg.FromAddress())

	outcome, err := transport.Send(r.Context(), msg)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("to", req.To).
			Msg("email dispatch failed")
		// The caller is a trusted internal service; the raw transport
		// error is surfaced to speed up operator diagnosis.
		writeError(w, http.StatusInternalServerError, "Email send failed", err.Error())
		return
	}

	h.log.Info().
		Str("message_id", outcome.MessageID).
		Int("accepted", len(outcome.Accepted)).
		Int("rejected", len(outcome.Rejected)).
		Msg("email dispatched")

	resp := sendResponse{
		OK:        true,
		MessageID: outcome.MessageID,
		Accepted:  outcome.Accepted,
		Rejected:  outcome.Rejected,
	}
	if resp.Accepted == nil {
		resp.Accepted = []string{}
	}
	if resp.Rejected == nil {
		resp.Rejected = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// splitAddressList splits a comma-separated address list, dropping empty
// entries.
func splitAddressList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
