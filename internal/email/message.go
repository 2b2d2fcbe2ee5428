package email

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// maxMetaHeaderLen bounds the serialized meta header. Anything longer is
// silently truncated rather than rejected.
const maxMetaHeaderLen = 900

const mimeBoundary = "boundary_capitalpro_email"

// buildMIME assembles the RFC 5322 message. Bcc recipients go on the
// envelope only, never into the headers.
func buildMIME(msg Message, messageID string) []byte {
	from := msg.FromAddress
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.FromAddress)
	}

	headers := []string{
		"From: " + from,
		"To: " + strings.Join(msg.To, ", "),
	}
	if len(msg.Cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(msg.Cc, ", "))
	}
	if msg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+msg.ReplyTo)
	}
	headers = append(headers,
		"Subject: "+sanitizeHeader(msg.Subject),
		"Date: "+time.Now().Format(time.RFC1123Z),
		"Message-ID: "+messageID,
	)
	if msg.OrganizationID != "" {
		headers = append(headers, "X-Organization-Id: "+sanitizeHeader(msg.OrganizationID))
	}
	if len(msg.Meta) > 0 {
		headers = append(headers, "X-CapitalPro-Meta: "+serializeMeta(msg.Meta))
	}
	headers = append(headers, "MIME-Version: 1.0")

	var body []string
	switch {
	case msg.HTML != "" && msg.Text != "":
		// Multipart alternative (HTML + text)
		body = []string{
			"Content-Type: multipart/alternative; boundary=" + mimeBoundary,
			"",
			"--" + mimeBoundary,
			"Content-Type: text/plain; charset=UTF-8",
			"Content-Transfer-Encoding: 7bit",
			"",
			msg.Text,
			"",
			"--" + mimeBoundary,
			"Content-Type: text/html; charset=UTF-8",
			"Content-Transfer-Encoding: 7bit",
			"",
			msg.HTML,
			"",
			"--" + mimeBoundary + "--",
		}
	case msg.HTML != "":
		body = []string{
			"Content-Type: text/html; charset=UTF-8",
			"",
			msg.HTML,
		}
	default:
		body = []string{
			"Content-Type: text/plain; charset=UTF-8",
			"",
			msg.Text,
		}
	}

	return []byte(strings.Join(append(headers, body...), "\r\n"))
}

// serializeMeta renders the free-form meta map as JSON capped at
// maxMetaHeaderLen bytes.
func serializeMeta(meta map[string]any) string {
	raw, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	s := string(raw)
	if len(s) > maxMetaHeaderLen {
		s = s[:maxMetaHeaderLen]
	}
	return sanitizeHeader(s)
}

// sanitizeHeader strips CR/LF so caller-supplied values cannot inject
// additional headers.
func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.ReplaceAll(v, "\n", " ")
}
