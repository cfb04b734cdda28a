package cycle

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriods is returned for period settings the scheduler cannot run.
var ErrInvalidPeriods = errors.New("invalid collation cycle periods")

// Config holds the scheduler settings.
type Config struct {
	// CheckEnabled schedules the active-check pass.
	CheckEnabled bool `mapstructure:"check_enabled" default:"true"`
	// CollateEnabled schedules the collate-and-publish pass.
	CollateEnabled bool `mapstructure:"collate_enabled" default:"true"`
	// CheckPeriodSeconds is the interval of the active-check pass.
	CheckPeriodSeconds int `mapstructure:"check_period_seconds" default:"30"`
	// CollatePeriodSeconds is the interval of the collate-and-publish pass.
	CollatePeriodSeconds int `mapstructure:"collate_period_seconds" default:"15"`
	// RefreshExpires is the expiry of the self-refresh SUBSCRIBE. Zero fetches state only.
	RefreshExpires int `mapstructure:"refresh_expires" default:"0"`
	// DefaultSubscribeUsername is the user part of the self-refresh From URI.
	DefaultSubscribeUsername string `mapstructure:"default_subscribe_username" default:"presence"`
	// PublishExpires is the requested expiry of collated PUBLISHes.
	PublishExpires int `mapstructure:"publish_expires" default:"0"`
}

// Validate rejects non-positive periods and a check period shorter than the
// collate period: collation must run at least as often as discovery.
func (c Config) Validate() error {
	if c.CheckPeriodSeconds <= 0 || c.CollatePeriodSeconds <= 0 {
		return fmt.Errorf("%w: periods must be positive (check=%d, collate=%d)",
			ErrInvalidPeriods, c.CheckPeriodSeconds, c.CollatePeriodSeconds)
	}
	if c.CheckPeriodSeconds < c.CollatePeriodSeconds {
		return fmt.Errorf("%w: check period %ds is shorter than collate period %ds",
			ErrInvalidPeriods, c.CheckPeriodSeconds, c.CollatePeriodSeconds)
	}
	return nil
}

// CheckPeriod returns the active-check interval.
func (c Config) CheckPeriod() time.Duration {
	return time.Duration(c.CheckPeriodSeconds) * time.Second
}

// CollatePeriod returns the collate-and-publish interval.
func (c Config) CollatePeriod() time.Duration {
	return time.Duration(c.CollatePeriodSeconds) * time.Second
}
