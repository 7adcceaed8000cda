// Package inbox reads vendor replies from an IMAP mailbox.
package inbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/config"
)

// RawMessage is one fetched, still-unparsed message.
type RawMessage struct {
	UID uint32
	Raw []byte
}

// Mailbox is an open session on the inbox.
type Mailbox interface {
	// FetchUnseen returns unseen messages whose subject contains marker,
	// without flagging them as seen.
	FetchUnseen(ctx context.Context, marker string) ([]RawMessage, error)
	MarkSeen(ctx context.Context, uids []uint32) error
	Close() error
}

// Dialer opens a new Mailbox session.
type Dialer func(ctx context.Context) (Mailbox, error)

type imapMailbox struct {
	c      *client.Client
	logger *zap.Logger
}

// NewIMAPDialer connects over implicit TLS, logs in and selects INBOX read-write.
func NewIMAPDialer(cfg *config.Config, logger *zap.Logger) Dialer {
	return func(ctx context.Context) (Mailbox, error) {
		addr := fmt.Sprintf("%s:%d", cfg.ImapHost, cfg.ImapPort)
		tlsConfig := &tls.Config{
			ServerName:         cfg.ImapHost,
			InsecureSkipVerify: cfg.ImapInsecureSkipVerify,
		}

		c, err := client.DialTLS(addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("imap dial %s: %w", addr, err)
		}
		if err := c.Login(cfg.ImapUsername, cfg.ImapPassword); err != nil {
			_ = c.Logout()
			return nil, fmt.Errorf("imap login: %w", err)
		}
		if _, err := c.Select("INBOX", false); err != nil {
			_ = c.Logout()
			return nil, fmt.Errorf("imap select INBOX: %w", err)
		}
		logger.Debug("imap session opened", zap.String("addr", addr))
		return &imapMailbox{c: c, logger: logger}, nil
	}
}

func (m *imapMailbox) FetchUnseen(ctx context.Context, marker string) ([]RawMessage, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if marker != "" {
		criteria.Header.Add("Subject", marker)
	}

	uids, err := m.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- m.c.UidFetch(seqset, items, messages)
	}()

	out := make([]RawMessage, 0, len(uids))
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			m.logger.Warn("imap message without body", zap.Uint32("uid", msg.Uid))
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			m.logger.Warn("failed to read imap message body", zap.Uint32("uid", msg.Uid), zap.Error(err))
			continue
		}
		out = append(out, RawMessage{UID: msg.Uid, Raw: raw})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}
	return out, nil
}

func (m *imapMailbox) MarkSeen(ctx context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := m.c.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("imap store \\Seen: %w", err)
	}
	return nil
}

func (m *imapMailbox) Close() error {
	if err := m.c.Logout(); err != nil && !errors.Is(err, client.ErrAlreadyLoggedOut) {
		return fmt.Errorf("imap logout: %w", err)
	}
	return nil
}
