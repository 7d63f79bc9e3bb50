package main

import (
	xp "github.com/BurntSushi/xgb/xproto"

	"github.com/nigeltao/tiler/internal/keys"
)

// drag is the floating window being moved or resized with the mouse.
var drag struct {
	w            *window
	button       xp.Button
	rootX, rootY int16
	start        xp.Rectangle
}

// chordMods is the modifier set of a key or button event, less the lock
// modifiers.
func chordMods(state uint16) keys.Mod {
	return keys.Mod(state&^ignoredMods) & keys.ModMask
}

func handleKeyPress(e xp.KeyPressEvent) {
	keysym := keysymFor(e.Detail)
	name := keysymName(keysym)
	if name == "" {
		log.Debugf("key press with no binding name: %s", keysymString(keysym))
		return
	}
	c := contextFor(screenContaining(e.RootX, e.RootY))
	sess.Dispatcher.HandleKey(chordMods(e.State), name, c)
}

func handleButtonPress(e xp.ButtonPressEvent) {
	w := windowForXWin(e.Child)
	if w == nil {
		return
	}
	if e.Detail == buttonRaise {
		w.raise()
		return
	}
	if w.dropDown != nil {
		focus(w)
		return
	}
	if !w.floating {
		w.floating = true
		w.floatRect = w.outer()
		w.group.arrange()
	}
	w.raise()
	focus(w)
	drag.w, drag.button = w, e.Detail
	drag.rootX, drag.rootY = e.RootX, e.RootY
	drag.start = w.floatRect
}

func handleMotionNotify(e xp.MotionNotifyEvent) {
	w := drag.w
	if w == nil || w.group == nil {
		return
	}
	w.floatRect = dragRect(drag.start, drag.button, e.RootX-drag.rootX, e.RootY-drag.rootY)
	w.place(w.floatRect)
}

// dragRect is start moved (button 1) or resized (button 3) by (dx, dy).
func dragRect(start xp.Rectangle, button xp.Button, dx, dy int16) xp.Rectangle {
	r := start
	switch button {
	case buttonMove:
		r.X += dx
		r.Y += dy
	case buttonResize:
		r.Width = uint16(max(int(start.Width)+int(dx), minFloatSize))
		r.Height = uint16(max(int(start.Height)+int(dy), minFloatSize))
	}
	return r
}

func handleButtonRelease(e xp.ButtonReleaseEvent) {
	if drag.w != nil && e.Detail == drag.button {
		drag.w = nil
	}
}

func handleEnterNotify(e xp.EnterNotifyEvent) {
	if !cfg.FollowMouse() || e.Mode != xp.NotifyModeNormal || drag.w != nil {
		return
	}
	w := windowForXWin(e.Event)
	if w == nil || w == focused || !w.visible() {
		return
	}
	focus(w)
}
