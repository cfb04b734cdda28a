package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewListener(t *testing.T) {
	t.Run("Unknown driver", func(t *testing.T) {
		_, err := NewListener(Config{Driver: "amqp"}, nil, zap.NewNop())
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})

	t.Run("Redis without connection", func(t *testing.T) {
		_, err := NewListener(Config{Driver: DriverRedis}, nil, zap.NewNop())
		assert.ErrorIs(t, err, ErrNoConnection)
	})

	t.Run("Redis with bad url", func(t *testing.T) {
		_, err := NewListener(Config{Driver: DriverRedis, RedisURL: "http://nope"}, nil, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("Redis with own url", func(t *testing.T) {
		l, err := NewListener(Config{Driver: DriverRedis, RedisURL: "redis://127.0.0.1:6379/0", Channel: "c"}, nil, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &RedisListener{}, l)
		assert.NoError(t, l.Close())
	})

	t.Run("Kafka without brokers", func(t *testing.T) {
		_, err := NewListener(Config{Driver: DriverKafka}, nil, zap.NewNop())
		assert.ErrorIs(t, err, ErrNoConnection)
	})

	t.Run("Kafka", func(t *testing.T) {
		l, err := NewListener(Config{Driver: DriverKafka, KafkaBrokers: "127.0.0.1:9092", KafkaGroup: "g", Channel: "SIPX.BLA.REGISTER"}, nil, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &KafkaListener{}, l)
		assert.NoError(t, l.Close())
	})
}
