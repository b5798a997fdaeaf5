/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package cmd

import (
	"fmt"

	"github.com/acronis/taskgate/config"
	"github.com/acronis/taskgate/httpserver"
	"github.com/acronis/taskgate/internal/backlog"
	"github.com/acronis/taskgate/internal/ratelimit"
	"github.com/acronis/taskgate/internal/scheduler"
	"github.com/acronis/taskgate/internal/tasklog"
	"github.com/acronis/taskgate/log"
	"github.com/acronis/taskgate/profserver"
)

// EnvVarsPrefix is a prefix of environment variables that override configuration values (e.g. TASKGATE_SERVER_ADDRESS).
const EnvVarsPrefix = "taskgate"

// AppConfig is the configuration of the whole application.
type AppConfig struct {
	Log        *log.Config        `yaml:"log"`
	Server     *httpserver.Config `yaml:"server"`
	RateLimit  *ratelimit.Config  `yaml:"rateLimit"`
	Backlog    *backlog.Config    `yaml:"backlog"`
	Scheduler  *scheduler.Config  `yaml:"scheduler"`
	TaskLog    *tasklog.Config    `yaml:"taskLog"`
	ProfServer *profserver.Config `yaml:"profServer"`
}

var _ config.Config = (*AppConfig)(nil)

// NewAppConfig creates a new AppConfig with empty component configurations.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		Log:        log.NewConfig(),
		Server:     httpserver.NewConfig(),
		RateLimit:  ratelimit.NewConfig(),
		Backlog:    backlog.NewConfig(),
		Scheduler:  scheduler.NewConfig(),
		TaskLog:    tasklog.NewConfig(),
		ProfServer: profserver.NewConfig(),
	}
}

// SetProviderDefaults sets default values of all component configurations.
func (c *AppConfig) SetProviderDefaults(dp config.DataProvider) {
	config.CallSetProviderDefaultsForFields(c, dp)
}

// Set fills all component configurations from the data provider.
func (c *AppConfig) Set(dp config.DataProvider) error {
	return config.CallSetForFields(c, dp)
}

// LoadAppConfig loads the configuration from the file (if path is not empty) and environment variables.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := NewAppConfig()
	loader := config.NewDefaultLoader(EnvVarsPrefix)
	if path == "" {
		if err := loader.Load(cfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	if err := loader.LoadFromFile(path, config.DataTypeFromPath(path), cfg); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	return cfg, nil
}
