package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster distributes messages across process boundaries via Redis
// pub/sub. Payloads are JSON-encoded, so T must marshal cleanly with
// encoding/json. Local delivery reuses a MemoryBroadcaster fed by a single
// subscription goroutine per channel.
type RedisBroadcaster[T any] struct {
	client  redis.UniversalClient
	channel string
	local   *MemoryBroadcaster[T]
	log     *slog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// NewRedisBroadcaster creates a broadcaster publishing to the given Redis
// channel and starts a background goroutine relaying incoming messages to
// local subscribers. bufferSize applies to each local subscriber.
func NewRedisBroadcaster[T any](client redis.UniversalClient, channel string, bufferSize int, log *slog.Logger) (*RedisBroadcaster[T], error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}
	if log == nil {
		log = slog.New(noopLogHandler{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBroadcaster[T]{
		client:  client,
		channel: channel,
		local:   NewMemoryBroadcaster[T](bufferSize),
		log:     log,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	pubsub := client.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so messages published right
	// after construction are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, errors.Join(ErrSubscribeFailed, err)
	}

	go b.relay(ctx, pubsub)

	return b, nil
}

// Subscribe registers a local subscriber for messages relayed from Redis.
func (b *RedisBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	return b.local.Subscribe(ctx)
}

// Broadcast publishes msg to the Redis channel. Delivery to local subscribers
// happens through the relay goroutine like any other instance.
func (b *RedisBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return errors.Join(ErrEncodeMessage, err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}

	return nil
}

// Close stops the relay goroutine and closes all local subscribers.
func (b *RedisBroadcaster[T]) Close() error {
	b.once.Do(func() {
		b.cancel()
		<-b.done
		_ = b.local.Close()
	})
	return nil
}

func (b *RedisBroadcaster[T]) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer close(b.done)
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}

			var data T
			if err := json.Unmarshal([]byte(m.Payload), &data); err != nil {
				b.log.ErrorContext(ctx, "failed to decode broadcast payload",
					slog.String("channel", b.channel),
					slog.Any("error", err),
				)
				continue
			}

			_ = b.local.Broadcast(ctx, Message[T]{Data: data})
		}
	}
}

type noopLogHandler struct{}

func (noopLogHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopLogHandler) Handle(context.Context, slog.Record) error { return nil }
func (noopLogHandler) WithAttrs([]slog.Attr) slog.Handler        { return noopLogHandler{} }
func (noopLogHandler) WithGroup(string) slog.Handler             { return noopLogHandler{} }
