package email

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

var tokenPattern = regexp.MustCompile(`(?i)RFP-[a-f0-9]{24}`)

// Message is an outbound plain-text email.
type Message struct {
	FromName    string
	FromAddress string
	To          []string
	Subject     string
	Body        string
	MessageID   string // without angle brackets; generated when empty
	Date        time.Time
}

// NewMessageID builds a Message-ID local part joined to the sender's domain.
func NewMessageID(localPart, fromAddress string) string {
	domain := "localhost"
	if at := strings.LastIndex(fromAddress, "@"); at >= 0 && at < len(fromAddress)-1 {
		domain = fromAddress[at+1:]
	}
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s.%s@%s", localPart, hex.EncodeToString(buf), domain)
}

// Bytes renders the message with CRLF line endings.
func (m *Message) Bytes() []byte {
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	msgID := m.MessageID
	if msgID == "" {
		msgID = NewMessageID("msg", m.FromAddress)
	}
	from := (&mail.Address{Name: m.FromName, Address: m.FromAddress}).String()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(m.To, ", ")))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject)))
	sb.WriteString(fmt.Sprintf("Message-ID: <%s>\r\n", msgID))
	sb.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(strings.ReplaceAll(m.Body, "\r\n", "\n"), "\n", "\r\n"))
	sb.WriteString("\r\n")
	return []byte(sb.String())
}
