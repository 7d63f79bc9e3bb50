package main

import (
	"strconv"
	"time"

	xp "github.com/BurntSushi/xgb/xproto"
)

const (
	// ignoredMods are the lock modifiers that never take part in a chord.
	// Every key and button grab is repeated with each combination of them.
	ignoredMods = xp.ModMaskLock | xp.ModMask2

	// ratioXxx bound the main pane's share of a monad layout. ratioStep is
	// how much grow and shrink move it by.
	ratioDefault = 0.5
	ratioMin     = 0.25
	ratioMax     = 0.75
	ratioStep    = 0.05

	// weightXxx are the secondary pane sizes, relative to each other.
	weightStep = 1.25
	weightMin  = 0.2
	weightMax  = 5.0

	// minFloatSize is the smallest a floating window can be resized to.
	minFloatSize = 32

	// quitDuration is the grace period, when shutting down, for programs to
	// exit cleanly.
	quitDuration = 10 * time.Second
)

// Mouse bindings, all with the group modifier: drag to move or resize a
// window (which floats it), and middle-click to raise it.
const (
	buttonMove   = xp.ButtonIndex1
	buttonRaise  = xp.ButtonIndex2
	buttonResize = xp.ButtonIndex3
)

var (
	colorFocused   uint32 = 0xcc241d
	colorUnfocused uint32 = 0x3c3836
	borderWidth    uint16 = 3
	margin         uint16 = 5
)

// applyBorderConfig takes the border colors and sizes from the config. The
// colors have already been checked against the schema's hex pattern.
func applyBorderConfig(focus, normal string, width, gap int) {
	if c, err := strconv.ParseUint(focus, 16, 32); err == nil {
		colorFocused = uint32(c)
	}
	if c, err := strconv.ParseUint(normal, 16, 32); err == nil {
		colorUnfocused = uint32(c)
	}
	if width >= 0 {
		borderWidth = uint16(width)
	}
	if gap >= 0 {
		margin = uint16(gap)
	}
}
