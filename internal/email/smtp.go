package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/google/uuid"
)

// SMTPTransport dispatches mail over a generic SMTP relay. It holds no
// connection state; every Send opens, drives and closes one SMTP session,
// so a single instance is safe for concurrent use.
type SMTPTransport struct {
	host   string
	port   int
	secure bool
	user   string
	pass   string
}

// NewSMTPTransport creates an SMTP transport bound to the given relay.
// No network contact happens here; the first connection is made on Send.
func NewSMTPTransport(host string, port int, secure bool, user, pass string) *SMTPTransport {
	return &SMTPTransport{
		host:   host,
		port:   port,
		secure: secure,
		user:   user,
		pass:   pass,
	}
}

// Send dispatches the message in a single SMTP transaction. Recipients
// are offered one by one; the relay may accept some and reject others,
// which is reported in the Outcome rather than as an error. The send
// fails only when no recipient at all is accepted or the session itself
// breaks.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), t.host)
	payload := buildMIME(msg, messageID)
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))

	var (
		client *smtp.Client
		err    error
	)
	if t.secure {
		client, err = t.dialTLS(addr)
	} else {
		client, err = t.dialStartTLS(addr)
	}
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return t.transact(client, msg, messageID, payload)
}

// dialTLS opens an implicit-TLS connection (port 465 style).
func (t *SMTPTransport) dialTLS(addr string) (*smtp.Client, error) {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: t.host})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server with TLS: %w", err)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// dialStartTLS opens a plain connection and upgrades it (port 587 style).
func (t *SMTPTransport) dialStartTLS(addr string) (*smtp.Client, error) {
	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	if err := client.StartTLS(&tls.Config{ServerName: t.host}); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start TLS: %w", err)
	}
	return client, nil
}

// transact performs the actual SMTP transaction.
func (t *SMTPTransport) transact(client *smtp.Client, msg Message, messageID string, payload []byte) (*Outcome, error) {
	auth := smtp.PlainAuth("", t.user, t.pass, t.host)
	if err := client.Auth(auth); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(msg.FromAddress); err != nil {
		return nil, fmt.Errorf("failed to set sender: %w", err)
	}

	outcome := &Outcome{MessageID: messageID}
	var lastRcptErr error
	for _, rcpt := range msg.Recipients() {
		if err := client.Rcpt(rcpt); err != nil {
			outcome.Rejected = append(outcome.Rejected, rcpt)
			lastRcptErr = err
			continue
		}
		outcome.Accepted = append(outcome.Accepted, rcpt)
	}
	if len(outcome.Accepted) == 0 {
		return nil, fmt.Errorf("all recipients rejected: %w", lastRcptErr)
	}

	writer, err := client.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close data writer: %w", err)
	}

	// Quit errors are non-fatal as the message was already sent.
	// Some servers close the connection immediately after DATA.
	_ = client.Quit()

	return outcome, nil
}
