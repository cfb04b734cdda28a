package sip

// Config holds configuration for the SIP transaction boundary.
type Config struct {
	// ListenNetwork is the transport the NOTIFY server listens on (udp, tcp).
	ListenNetwork string `mapstructure:"listen_network" default:"udp"`
	// ListenAddr is the host:port the NOTIFY server binds to.
	ListenAddr string `mapstructure:"listen_addr" default:"0.0.0.0:5060"`
	// ServerAddress is the presence server's own SIP URI. It is used as the
	// Contact of outgoing SUBSCRIBEs and as the PUBLISH route when no outbound
	// proxy is configured.
	ServerAddress string `mapstructure:"server_address" default:"sip:127.0.0.1:5060"`
	// OutboundProxy is an optional SIP URI every request is routed through.
	OutboundProxy string `mapstructure:"outbound_proxy" default:""`
	// UserAgent is the value of the User-Agent header.
	UserAgent string `mapstructure:"user_agent" default:"dialog-collator"`
	// TransactionTimeoutSeconds bounds how long a request may wait for a final reply.
	TransactionTimeoutSeconds int `mapstructure:"transaction_timeout_seconds" default:"32"`
	// RefreshMarginSeconds is subtracted from a granted expiry so that a
	// subscription is considered stale, and re-established, before it lapses.
	RefreshMarginSeconds int `mapstructure:"refresh_margin_seconds" default:"10"`
	// Registry selects where live subscriptions are tracked (memory, redis).
	Registry string `mapstructure:"registry" default:"memory"`
	// RegistryPrefix namespaces registry keys in Redis.
	RegistryPrefix string `mapstructure:"registry_prefix" default:"dialog-collator:subscription:"`
}

// PublishRoute returns the outbound proxy, or the server address when none is set.
func (c Config) PublishRoute() string {
	if c.OutboundProxy != "" {
		return c.OutboundProxy
	}
	return c.ServerAddress
}
