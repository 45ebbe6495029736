// Package cache announces freshly saved models over Redis pub/sub so that
// inference servers holding a cached pipeline drop it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"taxi-fare-model/config"
)

// ModelChannel is the channel model-saved events are published on.
const ModelChannel = "taxifare:model"

// ModelSaved is the payload of a model-saved event.
type ModelSaved struct {
	Path    string    `json:"path"`
	SavedAt time.Time `json:"saved_at"`
}

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("Connected to Redis successfully.")
	return rdb, nil
}

// PublishModelSaved announces that a model was written to path.
func PublishModelSaved(ctx context.Context, rdb *redis.Client, path string) error {
	payload, err := json.Marshal(ModelSaved{Path: path, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, ModelChannel, payload).Err()
}

// SubscribeModelSaved calls fn for every model-saved event until ctx is done.
// It returns once the subscription is confirmed; events are delivered on a
// separate goroutine. Malformed payloads are logged and skipped.
func SubscribeModelSaved(ctx context.Context, rdb *redis.Client, fn func(ModelSaved)) error {
	sub := rdb.Subscribe(ctx, ModelChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", ModelChannel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ev, err := decodeModelSaved(msg.Payload)
				if err != nil {
					log.Printf("Ignoring model event: %v", err)
					continue
				}
				fn(ev)
			}
		}
	}()
	return nil
}

func decodeModelSaved(payload string) (ModelSaved, error) {
	var ev ModelSaved
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ModelSaved{}, fmt.Errorf("decode %q: %w", payload, err)
	}
	return ev, nil
}
