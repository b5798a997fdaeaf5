/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/config"
)

func loadConfig(t *testing.T, yamlData string) (*Config, error) {
	t.Helper()
	cfg := NewConfig()
	err := config.NewDefaultLoader("").LoadFromReader(bytes.NewBufferString(yamlData), config.DataTypeYAML, cfg)
	return cfg, err
}

func TestConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(t, "")
	require.NoError(t, err)

	want := NewDefaultConfig()
	require.Equal(t, want.Level, cfg.Level)
	require.Equal(t, want.Format, cfg.Format)
	require.Equal(t, want.Output, cfg.Output)
	require.Equal(t, want.File.Rotation, cfg.File.Rotation)
	require.Equal(t, want.Error, cfg.Error)
}

func TestConfig_Set(t *testing.T) {
	cfg, err := loadConfig(t, `
log:
  level: DEBUG
  format: text
  output: file
  nocolor: true
  file:
    path: /var/log/taskgate.log
    rotation:
      maxSize: 10M
      maxBackups: 3
      compress: true
  error:
    noVerbose: true
`)
	require.NoError(t, err)
	require.Equal(t, LevelDebug, cfg.Level)
	require.Equal(t, FormatText, cfg.Format)
	require.Equal(t, OutputFile, cfg.Output)
	require.True(t, cfg.NoColor)
	require.Equal(t, "/var/log/taskgate.log", cfg.File.Path)
	require.Equal(t, config.ByteSize(10*1024*1024), cfg.File.Rotation.MaxSize)
	require.Equal(t, 3, cfg.File.Rotation.MaxBackups)
	require.True(t, cfg.File.Rotation.Compress)
	require.True(t, cfg.Error.NoVerbose)
}

func TestConfig_SetErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "unknown level",
			data:    "log:\n  level: trace\n",
			wantErr: `log.level: unknown value "trace", should be one of [error warn info debug]`,
		},
		{
			name:    "file output without path",
			data:    "log:\n  output: file\n",
			wantErr: `log.file.path: cannot be empty when "file" output is used`,
		},
		{
			name:    "too small rotation size",
			data:    "log:\n  file:\n    rotation:\n      maxSize: 1K\n",
			wantErr: "log.file.rotation.maxSize: should be >= 1M",
		},
		{
			name:    "no backups",
			data:    "log:\n  file:\n    rotation:\n      maxBackups: 0\n",
			wantErr: "log.file.rotation.maxBackups: should be >= 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(t, tt.data)
			require.EqualError(t, err, tt.wantErr)
		})
	}
}
