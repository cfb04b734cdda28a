package redis

// Config holds configuration for the shared Redis connection.
type Config struct {
	// URL is a redis:// connection URL. Empty disables Redis.
	URL string `mapstructure:"url" default:""`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size" default:"10"`
	// MinIdleConns is the minimum number of idle connections kept open.
	MinIdleConns int `mapstructure:"min_idle_conns" default:"1"`
	// TimeoutSeconds bounds dial, read and write operations.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}
