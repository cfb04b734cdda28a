package sharedline

import "time"

// Config holds the shared-line settings.
type Config struct {
	// PollEnabled subscribes to the reg event of every shared-line user and
	// accepts their reg-event NOTIFYs.
	PollEnabled bool `mapstructure:"poll_enabled" default:"false"`
	// PollIntervalSeconds is the interval between user polls.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" default:"60"`
	// SubscribeExpires is the default expiry of shared-line subscriptions.
	SubscribeExpires int `mapstructure:"subscribe_expires" default:"180"`
	// HeaderName carries the notifying contact on relayed PUBLISHes.
	HeaderName string `mapstructure:"header_name" default:"X-BLA-Contact"`
	// CacheTTLSeconds is how long a user lookup is reused. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"30"`
}

// PollInterval returns the poll interval, at least one second.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// CacheTTL returns the lookup cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
