/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteSize
		wantErr bool
	}{
		{in: "1024", want: 1024},
		{in: "1K", want: 1024},
		{in: "1Ki", want: 1024},
		{in: "250M", want: 250 * 1024 * 1024},
		{in: "-5", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseByteSize(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestByteSizeAndTimeDuration_YAML(t *testing.T) {
	type rotation struct {
		MaxSize ByteSize     `yaml:"maxSize"`
		MaxAge  TimeDuration `yaml:"maxAge"`
	}
	var r rotation
	require.NoError(t, yaml.Unmarshal([]byte("maxSize: 10M\nmaxAge: 1h30m\n"), &r))
	require.Equal(t, ByteSize(10*1024*1024), r.MaxSize)
	require.Equal(t, TimeDuration(90*time.Minute), r.MaxAge)

	out, err := yaml.Marshal(r)
	require.NoError(t, err)
	require.Equal(t, "maxSize: 10M\nmaxAge: 1h30m0s\n", string(out))
}

func TestTimeDuration_JSON(t *testing.T) {
	var d TimeDuration
	require.NoError(t, json.Unmarshal([]byte(`"250ms"`), &d))
	require.Equal(t, TimeDuration(250*time.Millisecond), d)

	require.NoError(t, json.Unmarshal([]byte(`1000`), &d))
	require.Equal(t, TimeDuration(time.Microsecond), d)

	require.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}
