package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "forum:"

// envelope wraps a fan-out payload with the publishing instance id so an
// instance can skip frames it already delivered locally.
type envelope struct {
	Instance string          `json:"instance"`
	Payload  json.RawMessage `json:"payload"`
}

// RedisBridge relays room events between service instances over redis
// pub/sub. Each forum maps to one channel, so per-room ordering carries over.
type RedisBridge struct {
	rdb      *redis.Client
	hub      *Hub
	logger   *slog.Logger
	instance string
}

func NewRedisBridge(addr string, hub *Hub, logger *slog.Logger) *RedisBridge {
	return &RedisBridge{
		rdb:      redis.NewClient(&redis.Options{Addr: addr}),
		hub:      hub,
		logger:   logger,
		instance: uuid.NewString(),
	}
}

func (b *RedisBridge) Publish(ctx context.Context, forum domain.ForumId, payload []byte) error {
	data, err := json.Marshal(envelope{Instance: b.instance, Payload: payload})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channelPrefix+strconv.FormatInt(forum, 10), data).Err()
}

// Run subscribes to all forum channels and delivers remote frames to local
// rooms until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Channel():
			if !ok {
				return fmt.Errorf("redis subscription closed")
			}
			forum, err := strconv.ParseInt(strings.TrimPrefix(msg.Channel, channelPrefix), 10, 64)
			if err != nil {
				b.logger.Warn("unparsable bridge channel", "channel", msg.Channel)
				continue
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("unparsable bridge payload", "channel", msg.Channel, "error", err)
				continue
			}
			if env.Instance == b.instance {
				continue // our own publish, already delivered locally
			}
			b.hub.deliver(forum, env.Payload)
		}
	}
}

func (b *RedisBridge) Close() error {
	return b.rdb.Close()
}
