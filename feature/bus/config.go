package bus

import "strings"

// Drivers.
const (
	DriverRedis = "redis"
	DriverKafka = "kafka"
)

// Config holds the message-bus listener settings.
type Config struct {
	// Enabled turns the listener on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Dedicated keeps the listener out of the service process; it then runs
	// only under the listen command.
	Dedicated bool `mapstructure:"dedicated" default:"true"`
	// Driver is redis (Pub/Sub) or kafka.
	Driver string `mapstructure:"driver" default:"redis"`
	// Channel is the Pub/Sub channel or Kafka topic.
	Channel string `mapstructure:"channel" default:"SIPX.BLA.REGISTER"`
	// RedisURL overrides the shared redis connection for the listener.
	RedisURL string `mapstructure:"redis_url" default:""`
	// KafkaBrokers is a comma separated seed broker list.
	KafkaBrokers string `mapstructure:"kafka_brokers" default:"localhost:9092"`
	// KafkaGroup is the consumer group.
	KafkaGroup string `mapstructure:"kafka_group" default:"dialog-collator"`
}

// Brokers returns the seed brokers.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
