/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package tasklog

import (
	"fmt"
	"time"

	"github.com/acronis/taskgate/config"
)

const cfgDefaultKeyPrefix = "taskLog"

const (
	cfgKeyPath               = "path"
	cfgKeyQueueSize          = "queueSize"
	cfgKeyRotationMaxSize    = "rotation.maxSize"
	cfgKeyRotationMaxBackups = "rotation.maxBackups"
	cfgKeyRotationCompress   = "rotation.compress"
	cfgKeyWriteRetryAttempts = "writeRetry.attempts"
	cfgKeyWriteRetryInterval = "writeRetry.interval"
	cfgKeyFlushTimeout       = "flushTimeout"
)

const (
	defaultPath               = "task-log.txt"
	defaultQueueSize          = 1024
	defaultRotationMaxSize    = "250M"
	defaultRotationMaxBackups = 10
	defaultWriteRetryAttempts = 3
	defaultWriteRetryInterval = 100 * time.Millisecond
	defaultFlushTimeout       = 5 * time.Second
	minRotationMaxSize        = 1024 * 1024
)

// Config represents a set of configuration parameters for the task log.
type Config struct {
	Path       string           `mapstructure:"path" yaml:"path" json:"path"`
	QueueSize  int              `mapstructure:"queueSize" yaml:"queueSize" json:"queueSize"`
	Rotation   RotationConfig   `mapstructure:"rotation" yaml:"rotation" json:"rotation"`
	WriteRetry WriteRetryConfig `mapstructure:"writeRetry" yaml:"writeRetry" json:"writeRetry"`

	// FlushTimeout limits writing of the queued entries on shutdown. Entries left after it are dropped.
	FlushTimeout config.TimeDuration `mapstructure:"flushTimeout" yaml:"flushTimeout" json:"flushTimeout"`

	keyPrefix string
}

// RotationConfig represents a set of configuration parameters for the task log file rotation.
type RotationConfig struct {
	MaxSize    config.ByteSize `mapstructure:"maxSize" yaml:"maxSize" json:"maxSize"`
	MaxBackups int             `mapstructure:"maxBackups" yaml:"maxBackups" json:"maxBackups"`
	Compress   bool            `mapstructure:"compress" yaml:"compress" json:"compress"`
}

// WriteRetryConfig determines how a failed write is retried.
type WriteRetryConfig struct {
	// Attempts is the number of retries after the first failed write. Zero disables retries.
	Attempts int                 `mapstructure:"attempts" yaml:"attempts" json:"attempts"`
	Interval config.TimeDuration `mapstructure:"interval" yaml:"interval" json:"interval"`
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return &Config{keyPrefix: cfgDefaultKeyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig() *Config {
	maxSize, _ := config.ParseByteSize(defaultRotationMaxSize)
	return &Config{
		keyPrefix: cfgDefaultKeyPrefix,
		Path:      defaultPath,
		QueueSize: defaultQueueSize,
		Rotation:  RotationConfig{MaxSize: maxSize, MaxBackups: defaultRotationMaxBackups},
		WriteRetry: WriteRetryConfig{
			Attempts: defaultWriteRetryAttempts,
			Interval: config.TimeDuration(defaultWriteRetryInterval),
		},
		FlushTimeout: config.TimeDuration(defaultFlushTimeout),
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
	dp.SetDefault(cfgKeyPath, defaultPath)
	dp.SetDefault(cfgKeyQueueSize, defaultQueueSize)
	dp.SetDefault(cfgKeyRotationMaxSize, defaultRotationMaxSize)
	dp.SetDefault(cfgKeyRotationMaxBackups, defaultRotationMaxBackups)
	dp.SetDefault(cfgKeyRotationCompress, false)
	dp.SetDefault(cfgKeyWriteRetryAttempts, defaultWriteRetryAttempts)
	dp.SetDefault(cfgKeyWriteRetryInterval, defaultWriteRetryInterval)
	dp.SetDefault(cfgKeyFlushTimeout, defaultFlushTimeout)
}

// Set sets configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error

	if c.Path, err = dp.GetString(cfgKeyPath); err != nil {
		return err
	}
	if c.Path == "" {
		return dp.WrapKeyErr(cfgKeyPath, fmt.Errorf("cannot be empty"))
	}

	if c.QueueSize, err = dp.GetInt(cfgKeyQueueSize); err != nil {
		return err
	}
	if c.QueueSize < 1 {
		return dp.WrapKeyErr(cfgKeyQueueSize, fmt.Errorf("should be >= 1"))
	}

	if c.Rotation.MaxSize, err = dp.GetByteSize(cfgKeyRotationMaxSize); err != nil {
		return err
	}
	if c.Rotation.MaxSize < minRotationMaxSize {
		return dp.WrapKeyErr(cfgKeyRotationMaxSize, fmt.Errorf("should be >= 1M"))
	}
	if c.Rotation.MaxBackups, err = dp.GetInt(cfgKeyRotationMaxBackups); err != nil {
		return err
	}
	if c.Rotation.MaxBackups < 0 {
		return dp.WrapKeyErr(cfgKeyRotationMaxBackups, fmt.Errorf("cannot be negative"))
	}
	if c.Rotation.Compress, err = dp.GetBool(cfgKeyRotationCompress); err != nil {
		return err
	}

	if c.WriteRetry.Attempts, err = dp.GetInt(cfgKeyWriteRetryAttempts); err != nil {
		return err
	}
	if c.WriteRetry.Attempts < 0 {
		return dp.WrapKeyErr(cfgKeyWriteRetryAttempts, fmt.Errorf("cannot be negative"))
	}
	var interval time.Duration
	if interval, err = dp.GetDuration(cfgKeyWriteRetryInterval); err != nil {
		return err
	}
	if interval < 0 {
		return dp.WrapKeyErr(cfgKeyWriteRetryInterval, fmt.Errorf("cannot be negative"))
	}
	c.WriteRetry.Interval = config.TimeDuration(interval)

	var flushTimeout time.Duration
	if flushTimeout, err = dp.GetDuration(cfgKeyFlushTimeout); err != nil {
		return err
	}
	if flushTimeout <= 0 {
		return dp.WrapKeyErr(cfgKeyFlushTimeout, fmt.Errorf("should be > 0"))
	}
	c.FlushTimeout = config.TimeDuration(flushTimeout)

	return nil
}
