package config

import (
	"fmt"
	"reflect"
	"strings"

	"dialog-collator/core/database"
	"dialog-collator/core/logger"
	"dialog-collator/core/metrics"
	"dialog-collator/core/redis"
	"dialog-collator/core/server"
	"dialog-collator/core/sip"
	"dialog-collator/core/storage"
	"dialog-collator/feature/bus"
	"dialog-collator/feature/collator"
	"dialog-collator/feature/cycle"
	"dialog-collator/feature/sharedline"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP operations server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the watcher and entity store.
	Database database.Config `mapstructure:"database"`
	// Redis holds configuration for the shared Redis connection.
	Redis redis.Config `mapstructure:"redis"`
	// Storage holds configuration for the document archive.
	Storage storage.Config `mapstructure:"storage"`
	// SIP holds configuration for the transaction boundary and NOTIFY server.
	SIP sip.Config `mapstructure:"sip"`
	// Collator selects the collation provider.
	Collator collator.Config `mapstructure:"collator"`
	// Cycle holds the scheduler passes.
	Cycle cycle.Config `mapstructure:"cycle"`
	// SharedLine holds the shared-line polling and relay settings.
	SharedLine sharedline.Config `mapstructure:"sharedline"`
	// Bus holds the registration message bus.
	Bus bus.Config `mapstructure:"bus"`
	// Metrics holds the Prometheus endpoint.
	Metrics metrics.Config `mapstructure:"metrics"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. CYCLE_CHECK_PERIOD_SECONDS -> cycle.check_period_seconds)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
