package main

import (
	"testing"

	xp "github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"

	"github.com/nigeltao/tiler/internal/keys"
)

func TestChordMods(t *testing.T) {
	tests := []struct {
		state uint16
		want  keys.Mod
	}{
		{0, 0},
		{xp.ModMask4, keys.Mod4},
		{xp.ModMask4 | xp.ModMaskShift, keys.Mod4 | keys.Shift},
		{xp.ModMask4 | xp.ModMaskLock, keys.Mod4},
		{xp.ModMask4 | xp.ModMask2 | xp.ModMaskLock | xp.ModMaskControl, keys.Mod4 | keys.Control},
		{xp.ModMask1 | xp.KeyButMaskButton1, keys.Mod1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chordMods(tt.state), "state %#x", tt.state)
	}
}

func TestDragRect(t *testing.T) {
	start := xp.Rectangle{X: 10, Y: 20, Width: 100, Height: 50}

	assert.Equal(t,
		xp.Rectangle{X: 15, Y: 10, Width: 100, Height: 50},
		dragRect(start, buttonMove, 5, -10))
	assert.Equal(t,
		xp.Rectangle{X: 10, Y: 20, Width: 140, Height: 60},
		dragRect(start, buttonResize, 40, 10))
	assert.Equal(t,
		xp.Rectangle{X: 10, Y: 20, Width: minFloatSize, Height: minFloatSize},
		dragRect(start, buttonResize, -500, -49))
	assert.Equal(t, start, dragRect(start, buttonRaise, 30, 30))
}

func TestKeysymForName(t *testing.T) {
	tests := []struct {
		name string
		want xp.Keysym
		ok   bool
	}{
		{"Return", xkReturn, true},
		{"a", 'a', true},
		{"A", 'a', true},
		{"7", '7', true},
		{"equal", '=', true},
		{"F1", xkF1, true},
		{"F12", xkF1 + 11, true},
		{"Prior", xkPageUp, true},
		{"Page_Up", xkPageUp, true},
		{"XF86AudioMute", xkAudioMute, true},
		{"F13", 0, false},
		{"Hyper", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := keysymForName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestKeysymName(t *testing.T) {
	assert.Equal(t, "q", keysymName('q'))
	assert.Equal(t, "q", keysymName('Q'))
	assert.Equal(t, "Return", keysymName(xkReturn))
	assert.Equal(t, "Page_Up", keysymName(xkPageUp))
	assert.Equal(t, "Page_Down", keysymName(xkPageDown))
	assert.Equal(t, "F12", keysymName(xkF1+11))
	assert.Equal(t, "space", keysymName(' '))
	assert.Equal(t, "", keysymName(xkSuperL))

	for name, ks := range keysymNames {
		back, ok := keysymForName(keysymName(ks))
		assert.True(t, ok, name)
		assert.Equal(t, ks, back, name)
	}
}

func TestKeysymString(t *testing.T) {
	assert.Equal(t, "SuperL", keysymString(xkSuperL))
	assert.Equal(t, "Tab", keysymString(xkTab))
	assert.Equal(t, "UnknownKeysym", keysymString(0x1234))
}
