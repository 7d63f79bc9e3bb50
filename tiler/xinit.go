package main

import (
	"github.com/BurntSushi/xgb/xinerama"
	xp "github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/sirupsen/logrus"

	"github.com/nigeltao/tiler/internal/keys"
	alloc "github.com/nigeltao/tiler/internal/screen"
	"github.com/nigeltao/tiler/internal/workspace"
)

var (
	atomWMDeleteWindow xp.Atom
	atomWMProtocols    xp.Atom
	atomWMTakeFocus    xp.Atom

	desktopXWin   xp.Window
	desktopWidth  uint16
	desktopHeight uint16

	keysyms [256][2]xp.Keysym
)

func becomeTheWM() {
	if err := xp.ChangeWindowAttributesChecked(xConn, rootXWin, xp.CwEventMask, []uint32{
		xp.EventMaskButtonPress |
			xp.EventMaskButtonRelease |
			xp.EventMaskSubstructureRedirect,
	}).Check(); err != nil {
		if _, ok := err.(xp.AccessError); ok {
			log.Fatal("could not become the window manager. Is another window manager running?")
		}
		log.Fatal(err)
	}
}

func initAtoms() {
	atomWMDeleteWindow = internAtom("WM_DELETE_WINDOW")
	atomWMProtocols = internAtom("WM_PROTOCOLS")
	atomWMTakeFocus = internAtom("WM_TAKE_FOCUS")
}

func internAtom(name string) xp.Atom {
	r, err := xp.InternAtom(xConn, false, uint16(len(name)), name).Reply()
	if err != nil {
		log.Fatal(err)
	}
	return r.Atom
}

func initDesktop(xScreen *xp.ScreenInfo) {
	xFont, err := xp.NewFontId(xConn)
	if err != nil {
		log.Fatal(err)
	}
	xCursor, err := xp.NewCursorId(xConn)
	if err != nil {
		log.Fatal(err)
	}
	err = xp.OpenFontChecked(xConn, xFont, uint16(len("cursor")), "cursor").Check()
	if err != nil {
		log.Fatal(err)
	}
	const xcLeftPtr = 68 // XC_left_ptr from cursorfont.h.
	err = xp.CreateGlyphCursorChecked(
		xConn, xCursor, xFont, xFont, xcLeftPtr, xcLeftPtr+1,
		0xffff, 0xffff, 0xffff, 0, 0, 0).Check()
	if err != nil {
		log.Fatal(err)
	}
	err = xp.CloseFontChecked(xConn, xFont).Check()
	if err != nil {
		log.Fatal(err)
	}

	desktopXWin, err = xp.NewWindowId(xConn)
	if err != nil {
		log.Fatal(err)
	}
	desktopWidth = xScreen.WidthInPixels
	desktopHeight = xScreen.HeightInPixels

	if err := xp.CreateWindowChecked(
		xConn, xScreen.RootDepth, desktopXWin, xScreen.Root,
		0, 0, desktopWidth, desktopHeight, 0,
		xp.WindowClassInputOutput,
		xScreen.RootVisual,
		xp.CwOverrideRedirect|xp.CwEventMask,
		[]uint32{
			1,
			xp.EventMaskNoEvent,
		},
	).Check(); err != nil {
		log.Fatal(err)
	}

	if err := xp.ConfigureWindowChecked(
		xConn,
		desktopXWin,
		xp.ConfigWindowStackMode,
		[]uint32{
			xp.StackModeBelow,
		},
	).Check(); err != nil {
		log.Fatal(err)
	}

	if err := xp.ChangeWindowAttributesChecked(
		xConn,
		desktopXWin,
		xp.CwBackPixel|xp.CwCursor,
		[]uint32{
			xScreen.BlackPixel,
			uint32(xCursor),
		},
	).Check(); err != nil {
		log.Fatal(err)
	}

	if err := xp.MapWindowChecked(xConn, desktopXWin).Check(); err != nil {
		log.Fatal(err)
	}

	initWMName(cfg.WMName)
}

// initWMName announces the window manager, as EWMH's supporting window
// check, under the given name. Some Java toolkits only lay out correctly
// under a window manager they recognize, hence names like "LG3D".
func initWMName(name string) {
	for _, xWin := range []xp.Window{rootXWin, desktopXWin} {
		if err := ewmh.SupportingWmCheckSet(xUtil, xWin, desktopXWin); err != nil {
			log.Println(err)
		}
	}
	if err := ewmh.WmNameSet(xUtil, desktopXWin, name); err != nil {
		log.Println(err)
	}
	if err := ewmh.SupportedSet(xUtil, []string{
		"_NET_SUPPORTED",
		"_NET_SUPPORTING_WM_CHECK",
		"_NET_WM_NAME",
		"_NET_WM_WINDOW_TYPE",
	}); err != nil {
		log.Println(err)
	}
}

// lockCombos are the ignored modifier combinations every grab is repeated
// with, so that bindings work with Caps Lock or Num Lock on.
var lockCombos = []uint16{0, xp.ModMaskLock, xp.ModMask2, xp.ModMaskLock | xp.ModMask2}

func initKeyboardMapping() {
	const (
		keyLo = 8
		keyHi = 255
	)
	km, err := xp.GetKeyboardMapping(xConn, keyLo, keyHi-keyLo+1).Reply()
	if err != nil {
		log.Fatal(err)
	}
	n := int(km.KeysymsPerKeycode)
	if n < 2 {
		log.Fatalf("too few keysyms per keycode: %d", n)
	}
	keysyms = [256][2]xp.Keysym{}
	for i := keyLo; i <= keyHi; i++ {
		keysyms[i][0] = km.Keysyms[(i-keyLo)*n+0]
		keysyms[i][1] = km.Keysyms[(i-keyLo)*n+1]
	}

	check(xp.UngrabKeyChecked(xConn, xp.GrabAny, rootXWin, xp.ModMaskAny))
	grabbed := 0
	for _, b := range sess.Dispatcher.Bindings() {
		keysym, ok := keysymForName(b.Key)
		if !ok {
			log.WithField("key", b.Chord()).Warn("unknown key name, binding ignored")
			continue
		}
		keycode, _ := findKeycode(keysym)
		if keycode == 0 {
			log.WithField("key", b.Chord()).Warn("key is not on the keyboard, binding ignored")
			continue
		}
		for _, locks := range lockCombos {
			check(xp.GrabKeyChecked(xConn, true, rootXWin, uint16(b.Mods)|locks, keycode,
				xp.GrabModeAsync, xp.GrabModeAsync))
		}
		grabbed++
	}
	log.WithField("bindings", grabbed).Debug("keys grabbed")
}

func findKeycode(keysym xp.Keysym) (keycode xp.Keycode, shift bool) {
	for i, k := range keysyms {
		if k[0] == keysym {
			return xp.Keycode(i), false
		}
		if k[1] == keysym {
			return xp.Keycode(i), true
		}
	}
	return 0, false
}

// keysymFor is the key a press of keycode names. Shift is a modifier of the
// chord, so the unshifted keysym is used.
func keysymFor(keycode xp.Keycode) xp.Keysym {
	if k := keysyms[keycode][0]; k != 0 {
		return k
	}
	return keysyms[keycode][1]
}

func grabButtons(mod keys.Mod) {
	const mask = xp.EventMaskButtonPress | xp.EventMaskButtonRelease | xp.EventMaskButtonMotion
	for _, button := range []byte{buttonMove, buttonRaise, buttonResize} {
		for _, locks := range lockCombos {
			check(xp.GrabButtonChecked(xConn, false, rootXWin, mask,
				xp.GrabModeAsync, xp.GrabModeAsync, xp.WindowNone, xp.CursorNone,
				button, uint16(mod)|locks))
		}
	}
}

// screenRects returns n screen rectangles from Xinerama, which the layout
// scripts have already rearranged. Screens beyond those Xinerama knows about
// share the whole desktop.
func screenRects(n int) []xp.Rectangle {
	whole := xp.Rectangle{Width: desktopWidth, Height: desktopHeight}
	out := make([]xp.Rectangle, n)
	for i := range out {
		out[i] = whole
	}
	xine, err := xinerama.QueryScreens(xConn).Reply()
	if err != nil {
		log.Println(err)
		return out
	}
	for i, si := range xine.ScreenInfo {
		if i >= n {
			break
		}
		out[i] = xp.Rectangle{X: si.XOrg, Y: si.YOrg, Width: si.Width, Height: si.Height}
	}
	return out
}

// initGroups mirrors the registry. Windows need somewhere to go, so a config
// without ordinary groups gets one.
func initGroups() {
	if len(sess.Registry.Ordinary()) == 0 {
		if err := sess.Registry.Register(workspace.Group{Name: "1"}); err != nil {
			log.Fatal(err)
		}
	}
	groups, groupByName = nil, map[string]*group{}
	for _, spec := range sess.Registry.Groups() {
		g := newGroup(spec, cfg.Layouts)
		groups = append(groups, g)
		groupByName[spec.Name] = g
	}
}

// applySlots rebuilds the screens from the allocator's slots and gives each
// screen a group, keeping groups on the screen they were on where possible.
func applySlots(slots []alloc.Slot) {
	resizeDesktop()
	rects := screenRects(len(slots))
	current := make([]string, len(screens))
	for i, s := range screens {
		if s.group != nil {
			current[i] = s.group.name()
			s.group.screen = nil
		}
	}
	names := sess.Registry.AssignScreens(len(slots), current)

	screens = make([]*screen, len(slots))
	for i, slot := range slots {
		s := &screen{index: i, slot: slot, rect: rects[i]}
		if g := groupByName[names[i]]; g != nil {
			s.group, g.screen = g, s
		}
		screens[i] = s
		log.WithFields(logrus.Fields{
			"slot":  slot.String(),
			"rect":  rects[i],
			"group": names[i],
		}).Info("screen")
	}
	for _, g := range groups {
		for _, w := range g.windows {
			w.shownOn = nil
		}
		g.arrange()
	}

	s := screens[0]
	if p, err := xp.QueryPointer(xConn, rootXWin).Reply(); err != nil {
		log.Println(err)
	} else {
		s = screenContaining(p.RootX, p.RootY)
	}
	if s.group != nil {
		focus(s.group.focused)
	} else {
		focus(nil)
	}
}

func resizeDesktop() {
	geom, err := xp.GetGeometry(xConn, xp.Drawable(rootXWin)).Reply()
	if err != nil {
		log.Println(err)
		return
	}
	if geom.Width == desktopWidth && geom.Height == desktopHeight {
		return
	}
	desktopWidth, desktopHeight = geom.Width, geom.Height
	check(xp.ConfigureWindowChecked(xConn, desktopXWin,
		xp.ConfigWindowWidth|xp.ConfigWindowHeight,
		[]uint32{uint32(desktopWidth), uint32(desktopHeight)}))
}
