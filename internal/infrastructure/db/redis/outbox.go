package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

const (
	outboxKey    = "notifications:outbox"
	outboxMaxLen = 10000
)

// Outbox is a NotificationSink that appends notifications to a capped Redis
// list for an external mailer to drain.
type Outbox struct {
	client *redis.Client
}

func NewOutbox(client *redis.Client) *Outbox {
	return &Outbox{client: client}
}

// Deliver pushes n onto the outbox list, trimming the oldest entries.
func (o *Outbox) Deliver(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	_, err = o.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, outboxKey, payload)
		p.LTrim(ctx, outboxKey, -outboxMaxLen, -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("outbox push: %w", err)
	}
	return nil
}
