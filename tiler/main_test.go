package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowType(t *testing.T) {
	assert.Equal(t, "dialog", windowType("_NET_WM_WINDOW_TYPE_DIALOG"))
	assert.Equal(t, "splash", windowType("_NET_WM_WINDOW_TYPE_SPLASH"))
	assert.Equal(t, "normal", windowType("_NET_WM_WINDOW_TYPE_NORMAL"))
}

func TestApplyBorderConfig(t *testing.T) {
	f, u, bw, m := colorFocused, colorUnfocused, borderWidth, margin
	t.Cleanup(func() {
		colorFocused, colorUnfocused, borderWidth, margin = f, u, bw, m
	})

	applyBorderConfig("ff0000", "00FF00", 2, 0)
	assert.Equal(t, uint32(0xff0000), colorFocused)
	assert.Equal(t, uint32(0x00ff00), colorUnfocused)
	assert.Equal(t, uint16(2), borderWidth)
	assert.Equal(t, uint16(0), margin)

	applyBorderConfig("nothex", "", -1, -1)
	assert.Equal(t, uint32(0xff0000), colorFocused)
	assert.Equal(t, uint32(0x00ff00), colorUnfocused)
	assert.Equal(t, uint16(2), borderWidth)
	assert.Equal(t, uint16(0), margin)
}

func TestConfigChangedStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reloads := 0
	onChange := configChanged(ctx, func() { reloads++ })

	go onChange("config.yml")
	select {
	case f := <-proactiveChan:
		f()
	case <-time.After(2 * time.Second):
		t.Fatal("change was not handed to the main loop")
	}
	assert.Equal(t, 1, reloads)

	// Nobody receives on proactiveChan once the main loop has returned.
	cancel()
	done := make(chan struct{})
	go func() {
		onChange("config.yml")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "callback blocked after the context was cancelled")
	}
	assert.Equal(t, 1, reloads)
}

func TestPostAfterLoopDone(t *testing.T) {
	saved := loopDone
	t.Cleanup(func() { loopDone = saved })
	loopDone = make(chan struct{})
	close(loopDone)

	assert.False(t, post(func() { t.Error("ran after the loop stopped") }))
}
