package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	xp "github.com/BurntSushi/xgb/xproto"
	"golang.org/x/sys/unix"

	"github.com/nigeltao/tiler/internal/keys"
)

var errNoGroup = errors.New("no group on this screen")

// host carries out key actions against the window manager's state. It holds
// nothing itself: everything it touches belongs to the main goroutine.
type host struct{}

var _ keys.Host = host{}

// contextFor is the dispatch context for a key pressed while the pointer is
// on s.
func contextFor(s *screen) *keys.Context {
	c := &keys.Context{Host: host{}, Screen: s.index}
	if s.group != nil {
		c.Group = s.group.name()
	}
	w := focused
	if w == nil || (w.shownOn != s && (w.group == nil || w.group.screen != s)) {
		w = nil
		if s.group != nil {
			w = s.group.focused
		}
	}
	if w != nil {
		c.Window = uint32(w.xWin)
	}
	return c
}

func groupOf(c *keys.Context) *group {
	if c.Screen < 0 || c.Screen >= len(screens) {
		return nil
	}
	return screens[c.Screen].group
}

func (host) Layout(c *keys.Context, cmd string) error {
	g := groupOf(c)
	if g == nil {
		return errNoGroup
	}
	tiled := g.tiled()
	i := slices.Index(tiled, windowForXWin(xp.Window(c.Window)))
	layout := g.layoutName()

	switch cmd {
	case keys.LayoutNext:
		g.layout = (g.layout + 1) % len(cfg.Layouts)
	case keys.LayoutFlip:
		g.flipped = !g.flipped
	case keys.LayoutLeft, keys.LayoutRight, keys.LayoutUp, keys.LayoutDown:
		if j := neighbour(layout, g.flipped, len(tiled), i, cmd); j >= 0 && j != i {
			g.arrangeAndFocus(tiled[j])
			return nil
		}
	case keys.LayoutSwapLeft, keys.LayoutSwapRight, keys.LayoutShuffleUp,
		keys.LayoutShuffleDown, keys.LayoutToggleMaster:
		if j := swapTarget(layout, g.flipped, len(tiled), i, cmd); j >= 0 {
			g.swap(tiled[i], tiled[j])
			g.arrangeAndFocus(tiled[i])
			return nil
		}
	case keys.LayoutGrow, keys.LayoutShrink:
		if i < 0 || layout == layoutMax {
			return nil
		}
		grow := cmd == keys.LayoutGrow
		if i == 0 {
			g.ratio = resizeRatio(g.ratio, grow)
		} else {
			tiled[i].weight = resizeWeight(tiled[i].weight, grow)
		}
	case keys.LayoutNormalize:
		for _, w := range tiled {
			w.weight = 1
		}
	default:
		return fmt.Errorf("unknown layout command %q", cmd)
	}
	g.arrange()
	return nil
}

// neighbour returns the tiled index a focus move from i lands on, or -1 when
// nothing is tiled. Monadtall moves between panes with left and right and
// within the stack with up and down; monadwide the other way round. Max
// cycles through all windows.
func neighbour(layout string, flipped bool, n, i int, cmd string) int {
	if n == 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	toMain, toStack := keys.LayoutLeft, keys.LayoutRight
	backward, forward := keys.LayoutUp, keys.LayoutDown
	switch layout {
	case layoutMonadWide:
		toMain, toStack = keys.LayoutUp, keys.LayoutDown
		backward, forward = keys.LayoutLeft, keys.LayoutRight
	case layoutMax:
		switch cmd {
		case keys.LayoutLeft, keys.LayoutUp:
			return (i + n - 1) % n
		}
		return (i + 1) % n
	}
	if flipped {
		toMain, toStack = toStack, toMain
	}
	switch cmd {
	case toMain:
		return 0
	case toStack:
		if i == 0 && n > 1 {
			return 1
		}
	case backward:
		return (i + n - 1) % n
	case forward:
		return (i + 1) % n
	}
	return i
}

// swapTarget returns the tiled index the window at i trades places with, or
// -1 for none.
func swapTarget(layout string, flipped bool, n, i int, cmd string) int {
	if i < 0 || n < 2 {
		return -1
	}
	toMain, toStack := keys.LayoutSwapLeft, keys.LayoutSwapRight
	if layout == layoutMonadWide || flipped {
		toMain, toStack = toStack, toMain
	}
	j := -1
	switch cmd {
	case toMain:
		if i != 0 {
			j = 0
		}
	case toStack:
		if i == 0 {
			j = 1
		}
	case keys.LayoutShuffleUp:
		j = i - 1
	case keys.LayoutShuffleDown:
		j = i + 1
	case keys.LayoutToggleMaster:
		j = 0
		if i == 0 {
			j = 1
		}
	}
	if j < 0 || j >= n {
		return -1
	}
	return j
}

func resizeRatio(r float64, grow bool) float64 {
	if grow {
		r += ratioStep
	} else {
		r -= ratioStep
	}
	return min(max(r, ratioMin), ratioMax)
}

func resizeWeight(w float64, grow bool) float64 {
	if grow {
		w *= weightStep
	} else {
		w /= weightStep
	}
	return min(max(w, weightMin), weightMax)
}

func (g *group) swap(a, b *window) {
	i, j := g.indexOf(a), g.indexOf(b)
	if i < 0 || j < 0 {
		return
	}
	g.windows[i], g.windows[j] = b, a
}

func (g *group) arrangeAndFocus(w *window) {
	g.focused = w
	g.arrange()
	warpPointerTo(w)
}

func (host) SetLayout(c *keys.Context, index int) error {
	g := groupOf(c)
	if g == nil {
		return errNoGroup
	}
	if index < 0 || index >= len(cfg.Layouts) {
		return fmt.Errorf("no layout %d", index)
	}
	g.layout = index
	g.arrange()
	return nil
}

func (host) Window(c *keys.Context, cmd string) error {
	w := windowForXWin(xp.Window(c.Window))
	if w == nil {
		return fmt.Errorf("window %#x is not managed", c.Window)
	}
	switch cmd {
	case keys.WindowKill:
		if w.wmDeleteWindow {
			sendClientMessage(w.xWin, atomWMDeleteWindow)
		} else {
			check(xp.KillClientChecked(xConn, uint32(w.xWin)))
		}
	case keys.WindowToggleFloating:
		if w.dropDown != nil {
			return nil
		}
		w.floating = !w.floating
		if w.floating && w.floatRect.Width == 0 {
			w.floatRect = w.outer()
			if !w.visible() && w.group.screen != nil {
				w.floatRect = fraction(w.group.screen.rect, 0.25, 0.25, 0.5, 0.5)
			}
		}
		w.group.arrange()
	case keys.WindowBringToFront:
		w.raise()
	default:
		return fmt.Errorf("unknown window command %q", cmd)
	}
	return nil
}

func (host) FocusScreen(c *keys.Context, index int) error {
	if index < 0 || index >= len(screens) {
		return fmt.Errorf("no screen %d (have %d)", index, len(screens))
	}
	s := screens[index]
	if s.group != nil && s.group.focused != nil {
		warpPointerTo(s.group.focused)
		return nil
	}
	warpPointer(s.rect)
	focus(nil)
	return nil
}

// warpPointerTo focuses w and moves the pointer to its middle, so that
// follow-mouse focus agrees.
func warpPointerTo(w *window) {
	focus(w)
	if w.visible() {
		warpPointer(w.rect)
	}
}

func warpPointer(r xp.Rectangle) {
	check(xp.WarpPointerChecked(xConn, xp.WindowNone, rootXWin, 0, 0, 0, 0,
		r.X+int16(r.Width/2),
		r.Y+int16(r.Height/2),
	))
}

func (host) SwitchGroup(c *keys.Context, name string) error {
	g, ok := groupByName[name]
	if !ok || g.spec.Scratchpad {
		return fmt.Errorf("no group %q", name)
	}
	if c.Screen < 0 || c.Screen >= len(screens) {
		return fmt.Errorf("no screen %d", c.Screen)
	}
	changeGroup(screens[c.Screen], g)
	return nil
}

// changeGroup shows g1 on s0. A group already shown on another screen trades
// places with the one on s0.
func changeGroup(s0 *screen, g1 *group) {
	g0 := s0.group
	if g0 == g1 {
		return
	}
	s1 := g1.screen
	if g0 != nil {
		g0.screen = s1
	}
	if s1 != nil {
		s1.group = g0
	}
	s0.group, g1.screen = g1, s0
	g1.arrange()
	if g0 != nil {
		g0.arrange()
	}
	focus(g1.focused)
}

func (host) MoveWindowToGroup(c *keys.Context, name string, follow bool) error {
	g1, ok := groupByName[name]
	if !ok || g1.spec.Scratchpad {
		return fmt.Errorf("no group %q", name)
	}
	w := windowForXWin(xp.Window(c.Window))
	if w == nil {
		return fmt.Errorf("window %#x is not managed", c.Window)
	}
	g0 := w.group
	if g0 == g1 {
		return nil
	}
	if w.dropDown != nil {
		// A dropdown moved to a group becomes an ordinary floating window.
		w.dropDown, w.shownOn = nil, nil
	}
	g0.remove(w)
	g1.add(w)
	g1.focused = w
	g0.arrange()
	g1.arrange()
	if follow && c.Screen >= 0 && c.Screen < len(screens) {
		changeGroup(screens[c.Screen], g1)
		return nil
	}
	if g0.screen != nil {
		focus(g0.focused)
	}
	return nil
}

// pendingDropDowns are dropdowns whose command has been started but whose
// window has not yet been mapped, by the index of the screen to show it on.
var pendingDropDowns = map[string]int{}

func (host) ToggleDropDown(c *keys.Context, scratchpad, name string) error {
	g, ok := groupByName[scratchpad]
	if !ok || !g.spec.Scratchpad {
		return fmt.Errorf("no scratchpad %q", scratchpad)
	}
	w := findWindow(func(w *window) bool {
		return w.group == g && w.dropDown != nil && w.dropDown.Name == name
	})
	if w == nil {
		if _, ok := pendingDropDowns[name]; ok {
			return nil
		}
		for _, d := range g.spec.DropDowns {
			if d.Name != name {
				continue
			}
			exited := func(error) { post(func() { dropDownExited(name) }) }
			if err := sess.Runner.StartWatched(exited, d.Command...); err != nil {
				return err
			}
			pendingDropDowns[name] = c.Screen
			return nil
		}
		return fmt.Errorf("no dropdown %q in %q", name, scratchpad)
	}
	if w.shownOn != nil {
		hideDropDown(w)
		return nil
	}
	if c.Screen < 0 || c.Screen >= len(screens) {
		return fmt.Errorf("no screen %d", c.Screen)
	}
	w.shownOn = screens[c.Screen]
	w.arrangeDropDown()
	focus(w)
	return nil
}

// dropDownExited runs when a dropdown's command exits. A command that exits
// without its window ever mapping must not leave the dropdown pending, or
// the next toggle would wait for a window that is not coming.
func dropDownExited(name string) {
	if _, ok := pendingDropDowns[name]; !ok {
		return
	}
	delete(pendingDropDowns, name)
	log.WithField("dropdown", name).Warn("dropdown command exited before its window appeared")
}

func hideDropDown(w *window) {
	s := w.shownOn
	w.shownOn = nil
	w.arrangeDropDown()
	if focused == w {
		focused = nil
		if s.group != nil {
			focus(s.group.focused)
		} else {
			focus(nil)
		}
	}
}

func (host) Spawn(c *keys.Context, argv []string) error {
	return sess.Runner.Start(argv...)
}

func (host) Restart(c *keys.Context) error {
	return restart()
}

// restart replaces the process with a fresh copy of itself, which manages the
// existing windows again. The configuration is checked first: a broken file
// must not leave the session without a window manager.
func restart() error {
	if _, err := loadSession(); err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	args := os.Args
	if !slices.Contains(args, "--restarted") {
		args = append(slices.Clone(args), "--restarted")
	}
	log.WithField("exe", exe).Info("restarting")
	flushCheckers()
	return unix.Exec(exe, args, os.Environ())
}

var quitting bool

func (host) Shutdown(c *keys.Context) error {
	if quitting {
		return nil
	}
	quitting = true
	log.Info("shutting down")

	waiting := false
	for _, g := range groups {
		for _, w := range g.windows {
			if w.wmDeleteWindow {
				waiting = true
				sendClientMessage(w.xWin, atomWMDeleteWindow)
			}
		}
	}
	if waiting {
		go func() {
			time.Sleep(quitDuration)
			post(func() { os.Exit(0) })
		}()
	} else {
		os.Exit(0)
	}
	return nil
}

func focus(w *window) {
	w0 := focused
	focused = w
	if w0 != nil && w0 != w && w0.group != nil {
		w0.setBorder(colorUnfocused)
		if d := w0.dropDown; d != nil && d.HideOnFocusLost && w0.shownOn != nil {
			w0.shownOn = nil
			w0.arrangeDropDown()
		}
	}
	xWin := desktopXWin
	if w != nil {
		if w.group != nil && !w.group.spec.Scratchpad {
			w.group.focused = w
		}
		w.setBorder(colorFocused)
		xWin = w.xWin
		if w.wmTakeFocus {
			sendClientMessage(xWin, atomWMTakeFocus)
			return
		}
	}
	check(xp.SetInputFocusChecked(xConn, xp.InputFocusParent, xWin, eventTime))
}
