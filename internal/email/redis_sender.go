package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// MockEmailTTL is how long a captured email stays readable by the service API.
const MockEmailTTL = 5 * time.Minute

// MockEmailKey is the Redis key of the last email sent to addr with templateID.
func MockEmailKey(addr, templateID string) string {
	return fmt.Sprintf("mockemail:%s:%s", strings.ToLower(addr), templateID)
}

// RedisSender captures emails in Redis so end-to-end tests can read them back.
type RedisSender struct {
	client redis.Cmdable
	from   string
}

func NewRedisSender(client redis.Cmdable, from string) Sender {
	return &RedisSender{client: client, from: from}
}

func (s *RedisSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	templateID := msg.TemplateID
	if templateID == "" {
		templateID = "unknown"
	}

	emailData := map[string]interface{}{
		"to":         strings.Join(msg.To, ", "),
		"from":       s.from,
		"subject":    msg.Subject,
		"body":       string(msg.Raw),
		"sent_at":    time.Now().UTC().Format(time.RFC3339Nano),
		"templateId": templateID,
	}
	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	// Only the first recipient gets a key.
	key := MockEmailKey(msg.To[0], templateID)
	if err := s.client.Set(ctx, key, jsonData, MockEmailTTL).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	utils.Logger().Debug("mock email stored", zap.String("key", key), zap.String("subject", msg.Subject))
	return nil
}
