/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package backlog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/taskgate/config"
)

func TestConfig(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, config.NewDefaultLoader("taskgate").Load(cfg))
	require.Equal(t, 0, cfg.MaxPerIdentity)

	t.Setenv("TASKGATE_BACKLOG_MAXPERIDENTITY", "5")
	cfg = NewConfig()
	require.NoError(t, config.NewDefaultLoader("taskgate").Load(cfg))
	require.Equal(t, 5, cfg.MaxPerIdentity)

	t.Setenv("TASKGATE_BACKLOG_MAXPERIDENTITY", "-1")
	require.EqualError(t, config.NewDefaultLoader("taskgate").Load(NewConfig()), "backlog.maxPerIdentity: cannot be negative")
}
