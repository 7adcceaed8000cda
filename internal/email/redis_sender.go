package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink is the subset of the redis client used by RedisSender.
type RedisSink interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// MockEmailTTL is how long a mock email stays readable in Redis.
const MockEmailTTL = 30 * time.Minute

// RedisSender stores outbound emails in Redis instead of sending them, so
// end-to-end tests can read what a vendor would have received.
type RedisSender struct {
	client RedisSink
	from   string
}

// NewRedisSender creates a new RedisSender
func NewRedisSender(client RedisSink, from string) *RedisSender {
	return &RedisSender{client: client, from: from}
}

// MockEmailKey is the key under which the mail for recipient and RFP token is stored.
func MockEmailKey(recipient, token string) string {
	return fmt.Sprintf("mockemail:%s:%s", strings.ToLower(recipient), token)
}

func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	token := "unknown"
	if m := tokenPattern.FindString(subject); m != "" {
		token = m
	}

	emailData := map[string]interface{}{
		"to":      strings.Join(to, ", "),
		"from":    s.from,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	for _, recipient := range to {
		key := MockEmailKey(recipient, token)
		if err := s.client.Set(ctx, key, jsonData, MockEmailTTL).Err(); err != nil {
			return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
		}
	}
	return nil
}
