/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"fmt"
	"time"

	"github.com/acronis/taskgate/config"
	"github.com/acronis/taskgate/internal/clock"
	"github.com/acronis/taskgate/internal/keyzone"
)

const cfgDefaultKeyPrefix = "rateLimit"

const (
	cfgKeyMaxKeys            = "maxKeys"
	cfgKeyBurstCount         = "burst.count"
	cfgKeyBurstDuration      = "burst.duration"
	cfgKeyBurstAlgorithm     = "burst.algorithm"
	cfgKeySustainedCount     = "sustained.count"
	cfgKeySustainedDuration  = "sustained.duration"
	cfgKeySustainedAlgorithm = "sustained.algorithm"
)

const (
	defaultMaxKeys           = 10000
	defaultBurstCount        = 1
	defaultBurstDuration     = time.Second
	defaultSustainedCount    = 20
	defaultSustainedDuration = time.Minute
	defaultAlgorithm         = AlgorithmFixedWindow
)

// GateOpts represents options for NewGateFromConfig.
type GateOpts struct {
	Clock clock.Clock

	// Metrics, when set, exposes the number of tracked identities per limiter.
	Metrics *keyzone.PrometheusMetrics

	// ZonePrefix distinguishes zones of several gates in metrics.
	ZonePrefix string
}

// Config represents a set of configuration parameters for the admission gate.
type Config struct {
	// MaxKeys is the maximum number of identities which state is kept by each limiter.
	MaxKeys   int          `mapstructure:"maxKeys" yaml:"maxKeys" json:"maxKeys"`
	Burst     WindowConfig `mapstructure:"burst" yaml:"burst" json:"burst"`
	Sustained WindowConfig `mapstructure:"sustained" yaml:"sustained" json:"sustained"`

	keyPrefix string
}

// WindowConfig describes one rate limiting window.
type WindowConfig struct {
	Count     int                 `mapstructure:"count" yaml:"count" json:"count"`
	Duration  config.TimeDuration `mapstructure:"duration" yaml:"duration" json:"duration"`
	Algorithm Algorithm           `mapstructure:"algorithm" yaml:"algorithm" json:"algorithm"`
}

// Rate returns the rate of the window.
func (wc WindowConfig) Rate() Rate {
	return Rate{Count: wc.Count, Duration: time.Duration(wc.Duration)}
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
		keyPrefix: cfgDefaultKeyPrefix,
		MaxKeys:   defaultMaxKeys,
		Burst: WindowConfig{
			Count: defaultBurstCount, Duration: config.TimeDuration(defaultBurstDuration), Algorithm: defaultAlgorithm,
		},
		Sustained: WindowConfig{
			Count: defaultSustainedCount, Duration: config.TimeDuration(defaultSustainedDuration), Algorithm: defaultAlgorithm,
		},
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
	dp.SetDefault(cfgKeyMaxKeys, defaultMaxKeys)
	dp.SetDefault(cfgKeyBurstCount, defaultBurstCount)
	dp.SetDefault(cfgKeyBurstDuration, defaultBurstDuration)
	dp.SetDefault(cfgKeyBurstAlgorithm, string(defaultAlgorithm))
	dp.SetDefault(cfgKeySustainedCount, defaultSustainedCount)
	dp.SetDefault(cfgKeySustainedDuration, defaultSustainedDuration)
	dp.SetDefault(cfgKeySustainedAlgorithm, string(defaultAlgorithm))
}

// Set sets configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.MaxKeys, err = dp.GetInt(cfgKeyMaxKeys); err != nil {
		return err
	}
	if c.MaxKeys <= 0 {
		return dp.WrapKeyErr(cfgKeyMaxKeys, fmt.Errorf("should be > 0"))
	}
	if c.Burst, err = getWindowConfig(dp, cfgKeyBurstCount, cfgKeyBurstDuration, cfgKeyBurstAlgorithm); err != nil {
		return err
	}
	if c.Sustained, err = getWindowConfig(
		dp, cfgKeySustainedCount, cfgKeySustainedDuration, cfgKeySustainedAlgorithm,
	); err != nil {
		return err
	}
	return nil
}

func getWindowConfig(dp config.DataProvider, countKey, durationKey, algorithmKey string) (WindowConfig, error) {
	var wc WindowConfig
	count, err := dp.GetInt(countKey)
	if err != nil {
		return wc, err
	}
	if count <= 0 {
		return wc, dp.WrapKeyErr(countKey, fmt.Errorf("should be > 0"))
	}
	dur, err := dp.GetDuration(durationKey)
	if err != nil {
		return wc, err
	}
	if dur <= 0 {
		return wc, dp.WrapKeyErr(durationKey, fmt.Errorf("should be > 0"))
	}
	algorithms := make([]string, 0, len(Algorithms))
	for _, alg := range Algorithms {
		algorithms = append(algorithms, string(alg))
	}
	alg, err := dp.GetStringFromSet(algorithmKey, algorithms, true)
	if err != nil {
		return wc, err
	}
	return WindowConfig{Count: count, Duration: config.TimeDuration(dur), Algorithm: Algorithm(alg)}, nil
}
