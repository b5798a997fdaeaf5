/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package backlog

import (
	"fmt"

	"github.com/acronis/taskgate/config"
)

const cfgDefaultKeyPrefix = "backlog"

const cfgKeyMaxPerIdentity = "maxPerIdentity"

// Config represents a set of configuration parameters for the backlog.
type Config struct {
	// MaxPerIdentity bounds the number of deferred tasks of one identity. Zero means unbounded.
	MaxPerIdentity int `mapstructure:"maxPerIdentity" yaml:"maxPerIdentity" json:"maxPerIdentity"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return &Config{keyPrefix: cfgDefaultKeyPrefix}
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
	dp.SetDefault(cfgKeyMaxPerIdentity, 0)
}

// Set sets configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.MaxPerIdentity, err = dp.GetInt(cfgKeyMaxPerIdentity); err != nil {
		return err
	}
	if c.MaxPerIdentity < 0 {
		return dp.WrapKeyErr(cfgKeyMaxPerIdentity, fmt.Errorf("cannot be negative"))
	}
	return nil
}
