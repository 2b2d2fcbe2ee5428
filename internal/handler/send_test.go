package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capitalprocrm/capitalpro-email-service/internal/config"
	"github.com/capitalprocrm/capitalpro-email-service/internal/email"
	"github.com/capitalprocrm/capitalpro-email-service/internal/handler"
	"github.com/capitalprocrm/capitalpro-email-service/internal/logger"
)

// stubTransport records dispatched messages and returns a canned result.
type stubTransport struct {
	calls   int
	lastMsg email.Message
	outcome *email.Outcome
	err     error
}

func (s *stubTransport) Send(_ context.Context, msg email.Message) (*email.Outcome, error) {
	s.calls++
	s.lastMsg = msg
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func newSendHandler(t *testing.T, stub *stubTransport) *handler.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Sender.Name = "CapitalPro"
	cfg.Sender.Address = "noreply@example.com"

	factory := func(*config.Config) (email.Transport, error) {
		return stub, nil
	}
	return handler.New(logger.New("error", "json"), cfg, factory)
}

func postSend(t *testing.T, h *handler.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/send-email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.SendEmail(rec, req)
	return rec
}

func TestSendEmail_Success(t *testing.T) {
	t.Parallel()

	stub := &stubTransport{
		outcome: &email.Outcome{
			MessageID: "<id-1@mail.example.com>",
			Accepted:  []string{"a@example.com"},
		},
	}
	h := newSendHandler(t, stub)

	rec := postSend(t, h, `{"to":"a@example.com","subject":"Hi","text":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK        bool     `json:"ok"`
		MessageID string   `json:"messageId"`
		Accepted  []string `json:"accepted"`
		Rejected  []string `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.NotEmpty(t, resp.MessageID)
	require.Equal(t, []string{"a@example.com"}, resp.Accepted)
	require.Empty(t, resp.Rejected)

	require.Equal(t, 1, stub.calls)
	require.Equal(t, "CapitalPro", stub.lastMsg.FromName)
	require.Equal(t, "noreply@example.com", stub.lastMsg.FromAddress)
	require.Equal(t, []string{"a@example.com"}, stub.lastMsg.To)
	require.Equal(t, "Hi", stub.lastMsg.Subject)
	require.Equal(t, "hello", stub.lastMsg.Text)
}

func TestSendEmail_ExtensionFields(t *testing.T) {
	t.Parallel()

	stub := &stubTransport{outcome: &email.Outcome{MessageID: "<id@h>"}}
	h := newSendHandler(t, stub)

	rec := postSend(t, h, `{
		"to": "a@example.com, b@example.com",
		"subject": "Hi",
		"html": "<p>hello</p>",
		"replyTo": "support@example.com",
		"cc": "c@example.com",
		"bcc": "d@example.com",
		"organizationId": "org-42",
		"meta": {"campaign": "spring"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, stub.lastMsg.To)
	require.Equal(t, []string{"c@example.com"}, stub.lastMsg.Cc)
	require.Equal(t, []string{"d@example.com"}, stub.lastMsg.Bcc)
	require.Equal(t, "support@example.com", stub.lastMsg.ReplyTo)
	require.Equal(t, "org-42", stub.lastMsg.OrganizationID)
	require.Equal(t, map[string]any{"campaign": "spring"}, stub.lastMsg.Meta)
}

func TestSendEmail_PartialAcceptanceIsSuccess(t *testing.T) {
	t.Parallel()

	stub := &stubTransport{
		outcome: &email.Outcome{
			MessageID: "<id@h>",
			Accepted:  []string{"a@example.com"},
			Rejected:  []string{"bad@example.com"},
		},
	}
	h := newSendHandler(t, stub)

	rec := postSend(t, h, `{"to":"a@example.com, bad@example.com","subject":"Hi","text":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["ok"])
	require.Equal(t, []any{"bad@example.com"}, resp["rejected"])
}

func TestSendEmail_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing to",
			body:    `{"subject":"Hi","text":"hello"}`,
			wantErr: "Missing required field: to",
		},
		{
			name:    "empty to",
			body:    `{"to":"","subject":"Hi","text":"hello"}`,
			wantErr: "Missing required field: to",
		},
		{
			name:    "missing subject",
			body:    `{"to":"a@example.com","text":"hello"}`,
			wantErr: "Missing required field: subject",
		},
		{
			name:    "missing both bodies",
			body:    `{"to":"a@example.com","subject":"Hi"}`,
			wantErr: "Missing email body: text or html",
		},
		{
			name:    "to checked before subject",
			body:    `{"text":"hello"}`,
			wantErr: "Missing required field: to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubTransport{outcome: &email.Outcome{MessageID: "<id@h>"}}
			h := newSendHandler(t, stub)

			rec := postSend(t, h, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tt.wantErr, resp["error"])

			// Validation failures must never reach the transport
			require.Zero(t, stub.calls)
		})
	}
}

func TestSendEmail_MalformedBody(t *testing.T) {
	t.Parallel()

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		h := newSendHandler(t, stub)

		rec := postSend(t, h, `{not json`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Zero(t, stub.calls)
	})

	t.Run("wrong field type names the field", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		h := newSendHandler(t, stub)

		rec := postSend(t, h, `{"to":123,"subject":"Hi","text":"hello"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Invalid field: to", resp["error"])
		require.Zero(t, stub.calls)
	})
}

func TestSendEmail_TransportConfigError(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.SMTP.Host = "mail.example.com" // host set but no credentials
	h := handler.New(logger.New("error", "json"), cfg, email.NewTransport)

	rec := postSend(t, h, `{"to":"a@example.com","subject":"Hi","text":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Server misconfigured","detail":"missing SMTP vars"}`, rec.Body.String())
}

func TestSendEmail_DispatchFailure(t *testing.T) {
	t.Parallel()

	stub := &stubTransport{err: errors.New("535 5.7.8 authentication rejected")}
	h := newSendHandler(t, stub)

	rec := postSend(t, h, `{"to":"a@example.com","subject":"Hi","text":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Email send failed", resp["error"])
	// Provider error text passes through verbatim
	require.Equal(t, "535 5.7.8 authentication rejected", resp["detail"])
}

func TestSendEmail_NoDeduplication(t *testing.T) {
	t.Parallel()

	stub := &stubTransport{outcome: &email.Outcome{MessageID: "<id@h>"}}
	h := newSendHandler(t, stub)

	body := `{"to":"a@example.com","subject":"Hi","text":"hello"}`
	rec1 := postSend(t, h, body)
	rec2 := postSend(t, h, body)

	require.Equal(t, http.StatusOK, rec1.Code)
	require.Equal(t, http.StatusOK, rec2.Code)
	require.Equal(t, 2, stub.calls)
}
