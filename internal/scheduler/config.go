/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package scheduler

import (
	"fmt"
	"time"

	"github.com/acronis/taskgate/config"
)

const cfgDefaultKeyPrefix = "scheduler"

const (
	cfgKeyDrainInterval = "drainInterval"
	cfgKeySweepInterval = "sweepInterval"
	cfgKeyWorkers       = "workers"
)

const (
	defaultDrainInterval = time.Second
	defaultSweepInterval = 0
	defaultWorkers       = 1
)

// Config represents a set of configuration parameters for the scheduler.
type Config struct {
	// DrainInterval is the delay between attempts to run the next deferred task of an identity.
	DrainInterval config.TimeDuration `mapstructure:"drainInterval" yaml:"drainInterval" json:"drainInterval"`

	// SweepInterval enables the periodic sweep which starts draining for every identity
	// with deferred tasks and no drain in progress. Zero disables the sweep.
	SweepInterval config.TimeDuration `mapstructure:"sweepInterval" yaml:"sweepInterval" json:"sweepInterval"`

	// Workers is the number of independent scheduler instances.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return &Config{keyPrefix: cfgDefaultKeyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		keyPrefix:     cfgDefaultKeyPrefix,
		DrainInterval: config.TimeDuration(defaultDrainInterval),
		SweepInterval: config.TimeDuration(defaultSweepInterval),
		Workers:       defaultWorkers,
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyDrainInterval, defaultDrainInterval)
	dp.SetDefault(cfgKeySweepInterval, defaultSweepInterval)
	dp.SetDefault(cfgKeyWorkers, defaultWorkers)
}

// Set sets configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	drainInterval, err := dp.GetDuration(cfgKeyDrainInterval)
	if err != nil {
		return err
	}
	if drainInterval <= 0 {
		return dp.WrapKeyErr(cfgKeyDrainInterval, fmt.Errorf("should be > 0"))
	}
	c.DrainInterval = config.TimeDuration(drainInterval)

	sweepInterval, err := dp.GetDuration(cfgKeySweepInterval)
	if err != nil {
		return err
	}
	if sweepInterval < 0 {
		return dp.WrapKeyErr(cfgKeySweepInterval, fmt.Errorf("cannot be negative"))
	}
	c.SweepInterval = config.TimeDuration(sweepInterval)

	if c.Workers, err = dp.GetInt(cfgKeyWorkers); err != nil {
		return err
	}
	if c.Workers < 1 {
		return dp.WrapKeyErr(cfgKeyWorkers, fmt.Errorf("should be >= 1"))
	}
	return nil
}
