package email

import "context"

// Transport is the interface that all mail transports must implement.
// This abstraction allows swapping the relay (generic SMTP, Gmail, etc.)
// without changing the dispatch pipeline.
type Transport interface {
	// Send dispatches a single message and reports the per-recipient
	// result. A non-nil Outcome means the relay took the message; a
	// non-empty Rejected list on a nil error is partial acceptance,
	// not a failure.
	Send(ctx context.Context, msg Message) (*Outcome, error)
}

// Message represents an email message to be sent.
type Message struct {
	FromName    string   // sender display name
	FromAddress string   // sender email address
	To          []string // primary recipients
	Cc          []string
	Bcc         []string
	ReplyTo     string
	Subject     string
	Text        string // plain-text body
	HTML        string // HTML body
	// OrganizationID and Meta are caller-supplied tracking values folded
	// into custom headers on the outgoing message.
	OrganizationID string
	Meta           map[string]any
}

// Recipients returns all envelope recipients (To, Cc, Bcc) in order.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	out = append(out, m.Bcc...)
	return out
}

// Outcome is the normalized result of a dispatch attempt.
type Outcome struct {
	MessageID string
	Accepted  []string
	Rejected  []string
}

// ConfigError reports that a transport cannot be constructed from the
// available configuration. The message names the missing variables so the
// operator can fix the deployment.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}
