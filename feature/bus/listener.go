package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

var (
	// ErrUnknownDriver is returned for an unsupported bus driver.
	ErrUnknownDriver = errors.New("unknown bus driver")
	// ErrNoConnection is returned when the redis driver has nothing to connect with.
	ErrNoConnection = errors.New("bus has no redis connection")
)

// HandlerFunc processes one payload.
type HandlerFunc func(ctx context.Context, payload []byte)

// Listener delivers payloads from one channel until its context is done.
type Listener interface {
	Listen(ctx context.Context, handle HandlerFunc) error
	Close() error
}

// NewListener creates the listener selected by cfg. rdb is the shared redis
// connection, used by the redis driver unless cfg.RedisURL is set.
func NewListener(cfg Config, rdb redis.UniversalClient, logger *zap.Logger) (Listener, error) {
	switch cfg.Driver {
	case DriverRedis:
		owned := false
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("parse bus redis URL: %w", err)
			}
			rdb = redis.NewClient(opts)
			owned = true
		}
		if rdb == nil {
			return nil, ErrNoConnection
		}
		return &RedisListener{client: rdb, channel: cfg.Channel, owned: owned, logger: logger}, nil
	case DriverKafka:
		return NewKafkaListener(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// RedisListener receives payloads over Redis Pub/Sub.
type RedisListener struct {
	client  redis.UniversalClient
	channel string
	owned   bool
	logger  *zap.Logger
}

// Listen subscribes to the channel and hands every message to handle.
func (l *RedisListener) Listen(ctx context.Context, handle HandlerFunc) error {
	ps := l.client.Subscribe(ctx, l.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", l.channel, err)
	}
	l.logger.Info("Listening on redis channel", zap.String("channel", l.channel))

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handle(ctx, []byte(msg.Payload))
		}
	}
}

// Close closes the connection if the listener opened it.
func (l *RedisListener) Close() error {
	if l.owned {
		return l.client.Close()
	}
	return nil
}

// KafkaListener consumes payloads from a Kafka topic in a consumer group.
type KafkaListener struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

// NewKafkaListener creates a group consumer for cfg.Channel.
func NewKafkaListener(cfg Config, logger *zap.Logger) (*KafkaListener, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: kafka needs at least one broker", ErrNoConnection)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(cfg.KafkaGroup),
		kgo.ConsumeTopics(cfg.Channel),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaListener{client: client, topic: cfg.Channel, logger: logger}, nil
}

// Listen polls the topic and hands every record value to handle.
func (l *KafkaListener) Listen(ctx context.Context, handle HandlerFunc) error {
	l.logger.Info("Listening on kafka topic", zap.String("topic", l.topic))
	for {
		fetches := l.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			l.logger.Warn("Kafka fetch error", zap.String("topic", topic), zap.Int32("partition", partition), zap.Error(err))
		})
		fetches.EachRecord(func(r *kgo.Record) {
			handle(ctx, r.Value)
		})
	}
}

// Close leaves the group and closes the client.
func (l *KafkaListener) Close() error {
	l.client.Close()
	return nil
}
