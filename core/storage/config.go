package storage

import "time"

// Config holds configuration for the document archive bucket.
type Config struct {
	// ArchiveEnabled stores a copy of every published document.
	ArchiveEnabled bool `mapstructure:"archive_enabled" default:"false"`
	// Endpoint is the host:port of the S3 compatible service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL enables TLS.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket receives the archived documents.
	Bucket string `mapstructure:"bucket" default:"dialog-archive"`
	// Prefix is prepended to every object name.
	Prefix string `mapstructure:"prefix" default:"dialog-info/"`
	// Region is the bucket location (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and the first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns the connection timeout, 30 seconds when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
