package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 3 * time.Second

type Redis struct {
	Client         *redis.Client
	Logger         *zap.SugaredLogger
	JournalChannel string
}

func New(host, password, journalChannel string, logger *zap.SugaredLogger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     host,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Redis{
		Client:         client,
		Logger:         logger,
		JournalChannel: journalChannel,
	}, nil
}

// Produce publishes data as JSON on the journal channel.
func (r *Redis) Produce(ctx context.Context, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("redis: marshal: %w", err)
	}

	if err := r.Client.Publish(ctx, r.JournalChannel, jsonData).Err(); err != nil {
		return fmt.Errorf("redis: publish: %w", err)
	}

	r.Logger.Infow("redis: Produce", "channel", r.JournalChannel)

	return nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
