/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func executeRoot(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() {
		cfgFile = ""
		extended = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestConfigCommand(t *testing.T) {
	path := writeConfigFile(t, "taskgate.yaml", `
scheduler:
  workers: 2
rateLimit:
  sustained:
    count: 30
`)
	out := executeRoot(t, "config", "--config", path)

	var dumped struct {
		RateLimit struct {
			MaxKeys   int `yaml:"maxKeys"`
			Sustained struct {
				Count     int    `yaml:"count"`
				Duration  string `yaml:"duration"`
				Algorithm string `yaml:"algorithm"`
			} `yaml:"sustained"`
		} `yaml:"rateLimit"`
		Scheduler struct {
			Workers int `yaml:"workers"`
		} `yaml:"scheduler"`
		TaskLog struct {
			Path string `yaml:"path"`
		} `yaml:"taskLog"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &dumped))
	require.Equal(t, 10000, dumped.RateLimit.MaxKeys)
	require.Equal(t, 30, dumped.RateLimit.Sustained.Count)
	require.Equal(t, "1m0s", dumped.RateLimit.Sustained.Duration)
	require.Equal(t, "fixedWindow", dumped.RateLimit.Sustained.Algorithm)
	require.Equal(t, 2, dumped.Scheduler.Workers)
	require.Equal(t, "task-log.txt", dumped.TaskLog.Path)
}

func TestVersionCommand(t *testing.T) {
	out := executeRoot(t, "version")
	require.True(t, strings.HasPrefix(out, "taskgate "), out)
	require.Equal(t, 1, strings.Count(out, "\n"))

	out = executeRoot(t, "version", "--extended")
	require.Contains(t, out, "Commit: ")
	require.Contains(t, out, "Go: go")
}
