package config_test

import (
	"testing"

	"github.com/mna/ember/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, int64(2), c.GCHeapGrowFactor)
	require.False(t, c.GCStress)
	require.Equal(t, 64, c.FrameMax)
	require.Equal(t, 16384, c.StackSlots)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EMBER_GC_STRESS", "true")
	t.Setenv("EMBER_GC_HEAP_GROW_FACTOR", "4")

	c, err := config.Load()
	require.NoError(t, err)
	require.True(t, c.GCStress)
	require.Equal(t, int64(4), c.GCHeapGrowFactor)
}
