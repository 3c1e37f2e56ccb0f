package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const DefaultStream = "trader:trades"

// Redis publishes each trade record as JSON onto a Redis stream so other
// services can consume closed trades as they happen.
type Redis struct {
	client *redis.Client
	stream string
}

var _ Journal = (*Redis)(nil)

func NewRedis(ctx context.Context, addr, stream string) (*Redis, error) {
	if stream == "" {
		stream = DefaultStream
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("journal: redis ping %s: %w", addr, err)
	}

	return &Redis{client: client, stream: stream}, nil
}

func (j *Redis) RecordTrade(ctx context.Context, t TradeRecord) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}

	err = j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		Values: map[string]interface{}{
			"id":         t.ID,
			"instrument": t.Instrument,
			"record":     string(b),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("journal: xadd %s: %w", j.stream, err)
	}
	return nil
}

func (j *Redis) Close() error {
	return j.client.Close()
}
