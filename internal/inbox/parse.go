package inbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is the part of a vendor reply the ingestion pipeline uses.
type Message struct {
	Subject   string
	From      string // lowercased address
	MessageID string
	// Thread holds the In-Reply-To ids followed by References, without angle brackets.
	Thread []string
	Date   time.Time
	Text   string
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// Parse decodes a raw RFC 5322 message. The body is the first text/plain
// part, else the first text/html part converted to text, else empty.
func Parse(raw []byte) (*Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
		return nil, fmt.Errorf("read message: %w", err)
	}
	if mr == nil {
		return nil, errors.New("read message: no header")
	}
	defer mr.Close()

	h := mr.Header
	out := &Message{}
	out.Subject, _ = h.Subject()
	out.MessageID, _ = h.MessageID()
	out.Date, _ = h.Date()
	for _, key := range []string{"In-Reply-To", "References"} {
		if ids, err := h.MsgIDList(key); err == nil {
			out.Thread = append(out.Thread, ids...)
		}
	}

	from, err := h.AddressList("From")
	if err != nil || len(from) == 0 {
		return nil, errors.New("read message: missing or invalid From header")
	}
	out.From = strings.ToLower(strings.TrimSpace(from[0].Address))

	var plain, html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				continue
			}
			return nil, fmt.Errorf("read message part: %w", err)
		}
		inline, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := inline.ContentType()
		body, err := io.ReadAll(p.Body)
		if err != nil {
			return nil, fmt.Errorf("read message part: %w", err)
		}
		switch {
		case ct == "text/plain" && plain == "":
			plain = string(body)
		case ct == "text/html" && html == "":
			html = string(body)
		case ct == "" && plain == "":
			plain = string(body)
		}
	}

	switch {
	case strings.TrimSpace(plain) != "":
		out.Text = normalizeText(plain)
	case html != "":
		text, err := HTMLToText(html)
		if err != nil {
			return nil, err
		}
		out.Text = text
	}
	return out, nil
}

// HTMLToText renders the visible text of an HTML body, one block per line.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html body: %w", err)
	}
	doc.Find("script, style, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return normalizeText(doc.Text()), nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t ")
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
