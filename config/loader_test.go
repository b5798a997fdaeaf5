/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test error")

type testDrainConfig struct {
	Interval time.Duration
	Workers  int
}

func (c *testDrainConfig) KeyPrefix() string { return "scheduler" }

func (c *testDrainConfig) SetProviderDefaults(dp DataProvider) {
	dp.SetDefault("drainInterval", "1s")
	dp.SetDefault("workers", 1)
}

func (c *testDrainConfig) Set(dp DataProvider) (err error) {
	if c.Interval, err = dp.GetDuration("drainInterval"); err != nil {
		return err
	}
	if c.Workers, err = dp.GetInt("workers"); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return dp.WrapKeyErr("workers", errors.New("must be positive"))
	}
	return nil
}

type testAppConfig struct {
	Scheduler *testDrainConfig
	Ignored   *testDrainConfig
	private   *testDrainConfig
}

func (c *testAppConfig) SetProviderDefaults(dp DataProvider) {
	CallSetProviderDefaultsForFields(c, dp)
}

func (c *testAppConfig) Set(dp DataProvider) error {
	return CallSetForFields(c, dp)
}

func TestLoader_Load(t *testing.T) {
	cfg := &testDrainConfig{}
	require.NoError(t, NewDefaultLoader("taskgate").Load(cfg))
	require.Equal(t, time.Second, cfg.Interval)
	require.Equal(t, 1, cfg.Workers)
}

func TestLoader_LoadFromReader(t *testing.T) {
	cfg := &testAppConfig{Scheduler: &testDrainConfig{}}
	err := NewDefaultLoader("taskgate").LoadFromReader(bytes.NewBufferString(testSchedulerConfigYAML), DataTypeYAML, cfg)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.Scheduler.Interval)
	require.Equal(t, 4, cfg.Scheduler.Workers)
	require.Nil(t, cfg.Ignored)
	require.Nil(t, cfg.private)
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scheduler":{"workers":0}}`), 0o600))

	cfg := &testDrainConfig{}
	err := NewDefaultLoader("taskgate").LoadFromFile(path, DataTypeFromPath(path), cfg)
	require.EqualError(t, err, "scheduler.workers: must be positive")
}

func TestLoader_LoadFromFile_Missing(t *testing.T) {
	cfg := &testDrainConfig{}
	err := NewDefaultLoader("taskgate").LoadFromFile(filepath.Join(t.TempDir(), "absent.yml"), DataTypeYAML, cfg)
	require.Error(t, err)
}
