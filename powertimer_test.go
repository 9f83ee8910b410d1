package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeitschalt.net/powertimer/config"
	"zeitschalt.net/powertimer/watchdog"
)

func TestLoopParams_MapsConfig(t *testing.T) {
	conf := &config.Config{
		Timer: config.TimerConfig{
			PresetSeconds:      []int{120, 240},
			IntervalMinutes:    []int{1, 5, 15},
			MaxMinutes:         90,
			SecureStartSeconds: 5,
		},
		Display: config.DisplayConfig{
			UpdateMillis:  200,
			MessageMillis: 2000,
		},
	}

	params := loopParams(conf)

	assert.Equal(t, []int{120, 240}, params.FactoryPresets)
	assert.Equal(t, []int{1, 5, 15}, params.Intervals)
	assert.Equal(t, 5400, params.MaxSeconds)
	assert.Equal(t, 5, params.SecureStartSeconds)
	assert.Equal(t, 2*time.Second, params.MessageDuration)
	assert.Equal(t, 200*time.Millisecond, params.RepaintInterval)
}

func TestNewWatchdog_ModeSelection(t *testing.T) {
	wd, err := newWatchdog(config.WatchdogConfig{Mode: "none"})
	require.NoError(t, err)
	assert.IsType(t, watchdog.Noop{}, wd)

	wd, err = newWatchdog(config.WatchdogConfig{Mode: "soft", TimeoutMillis: 60_000})
	require.NoError(t, err)
	soft, ok := wd.(*watchdog.Soft)
	require.True(t, ok)
	soft.Stop()

	_, err = newWatchdog(config.WatchdogConfig{Mode: "device", Device: "/nonexistent/watchdog"})
	assert.Error(t, err)
}
