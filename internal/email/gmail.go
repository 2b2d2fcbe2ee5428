package email

// Gmail's app-password relay. App passwords authenticate over plain SMTP
// AUTH, so the Gmail transport is an SMTP transport pinned to Google's
// implicit-TLS endpoint.
const (
	gmailHost = "smtp.gmail.com"
	gmailPort = 465
)

// NewGmailTransport creates a transport bound to a Gmail account using an
// app password.
func NewGmailTransport(user, appPassword string) *SMTPTransport {
	return NewSMTPTransport(gmailHost, gmailPort, true, user, appPassword)
}
