package main

import (
	xp "github.com/BurntSushi/xgb/xproto"

	alloc "github.com/nigeltao/tiler/internal/screen"
	"github.com/nigeltao/tiler/internal/workspace"
)

// Layout names, as used in the config's layouts list.
const (
	layoutMonadTall = "monadtall"
	layoutMax       = "max"
	layoutMonadWide = "monadwide"
)

// offscreenXY is the most negative X/Y co-ordinate.
const offscreenXY = -1 << 15

func contains(r xp.Rectangle, x, y int16) bool {
	return r.X <= x && int(x) < int(r.X)+int(r.Width) &&
		r.Y <= y && int(y) < int(r.Y)+int(r.Height)
}

func screenContaining(x, y int16) *screen {
	for _, s := range screens {
		if contains(s.rect, x, y) {
			return s
		}
	}
	return screens[0]
}

var (
	screens []*screen
	// groups is in registry order, the scratchpad included.
	groups      []*group
	groupByName = map[string]*group{}
	// focused is the window with the keyboard focus, if any.
	focused *window
)

func findWindow(predicate func(*window) bool) *window {
	for _, g := range groups {
		for _, w := range g.windows {
			if predicate(w) {
				return w
			}
		}
	}
	return nil
}

func windowForXWin(xWin xp.Window) *window {
	if xWin == 0 {
		return nil
	}
	return findWindow(func(w *window) bool { return w.xWin == xWin })
}

type screen struct {
	index int
	slot  alloc.Slot
	rect  xp.Rectangle
	group *group
}

type group struct {
	spec   workspace.Group
	screen *screen
	// windows is in tiling order: the first tiled window is the main pane.
	// Floating windows keep their place but are not tiled.
	windows []*window
	focused *window
	layout  int
	ratio   float64
	flipped bool
}

type window struct {
	xWin      xp.Window
	group     *group
	meta      workspace.WindowMetadata
	rect      xp.Rectangle
	floatRect xp.Rectangle
	// weight is the window's share of the secondary pane.
	weight   float64
	floating bool
	// dropDown is set for a scratchpad dropdown, and shownOn while it is
	// visible.
	dropDown       *workspace.DropDown
	shownOn        *screen
	border         uint32
	seen           bool
	wmDeleteWindow bool
	wmTakeFocus    bool
}

func newGroup(spec workspace.Group, layouts []string) *group {
	g := &group{spec: spec, ratio: ratioDefault}
	for i, l := range layouts {
		if l == spec.Layout {
			g.layout = i
		}
	}
	return g
}

func (g *group) name() string { return g.spec.Name }

func (g *group) layoutName() string {
	if g.layout < 0 || g.layout >= len(cfg.Layouts) {
		return layoutMax
	}
	return cfg.Layouts[g.layout]
}

func (g *group) tiled() []*window {
	var out []*window
	for _, w := range g.windows {
		if !w.floating {
			out = append(out, w)
		}
	}
	return out
}

func (g *group) indexOf(w *window) int {
	for i, x := range g.windows {
		if x == w {
			return i
		}
	}
	return -1
}

func (g *group) add(w *window) {
	w.group = g
	if w.weight == 0 {
		w.weight = 1
	}
	g.windows = append(g.windows, w)
}

func (g *group) remove(w *window) {
	i := g.indexOf(w)
	if i < 0 {
		return
	}
	g.windows = append(g.windows[:i], g.windows[i+1:]...)
	if g.focused == w {
		g.focused = nil
		if len(g.windows) > 0 {
			if i >= len(g.windows) {
				i = len(g.windows) - 1
			}
			g.focused = g.windows[i]
		}
	}
	w.group = nil
}

// arrange places every window of g: tiled windows by the group's layout,
// floating windows where they were left, and everything offscreen when g is
// not shown.
func (g *group) arrange() {
	if g.spec.Scratchpad {
		for _, w := range g.windows {
			w.arrangeDropDown()
		}
		return
	}
	tiled := g.tiled()
	if g.screen == nil {
		for _, w := range g.windows {
			w.place(offscreenRect(w.rect))
		}
		return
	}
	fi := 0
	weights := make([]float64, 0, len(tiled))
	for i, w := range tiled {
		if w == g.focused {
			fi = i
		}
		if i > 0 {
			weights = append(weights, w.weight)
		}
	}
	rects := tile(g.layoutName(), g.screen.rect, len(tiled), fi, g.ratio, g.flipped, weights)
	for i, w := range tiled {
		w.place(rects[i])
	}
	for _, w := range g.windows {
		if w.floating {
			w.place(w.floatRect)
			w.raise()
		}
	}
}

func (w *window) arrangeDropDown() {
	if w.shownOn == nil || w.dropDown == nil {
		w.place(offscreenRect(w.rect))
		return
	}
	w.floatRect = fraction(w.shownOn.rect, w.dropDown.X, w.dropDown.Y, w.dropDown.Width, w.dropDown.Height)
	w.place(w.floatRect)
	w.raise()
}

func offscreenRect(r xp.Rectangle) xp.Rectangle {
	return xp.Rectangle{X: offscreenXY, Y: offscreenXY, Width: r.Width, Height: r.Height}
}

// fraction returns the part of r at fractional offset (x, y) and size
// (width, height).
func fraction(r xp.Rectangle, x, y, width, height float64) xp.Rectangle {
	return xp.Rectangle{
		X:      r.X + int16(x*float64(r.Width)),
		Y:      r.Y + int16(y*float64(r.Height)),
		Width:  uint16(width * float64(r.Width)),
		Height: uint16(height * float64(r.Height)),
	}
}

// tile returns the cells of n tiled windows in r, in tiling order. Under
// the max layout only the focused window is onscreen. Under monadtall the
// first window takes ratio of the width, on the left or (flipped) the right,
// and the rest share the remaining column by weight. Monadwide is the same
// turned on its side.
func tile(layout string, r xp.Rectangle, n, focused int, ratio float64, flipped bool, weights []float64) []xp.Rectangle {
	if n <= 0 {
		return nil
	}
	out := make([]xp.Rectangle, n)
	if layout == layoutMax {
		for i := range out {
			out[i] = offscreenRect(r)
		}
		if focused < 0 || focused >= n {
			focused = 0
		}
		out[focused] = r
		return out
	}
	if n == 1 {
		out[0] = r
		return out
	}

	wide := layout == layoutMonadWide
	total := r.Width
	if wide {
		total = r.Height
	}
	mainSize := uint16(float64(total) * ratio)
	main, rest := r, r
	if !wide {
		main.Width, rest.Width = mainSize, total-mainSize
		if flipped {
			main.X = r.X + int16(rest.Width)
		} else {
			rest.X = r.X + int16(mainSize)
		}
	} else {
		main.Height, rest.Height = mainSize, total-mainSize
		if flipped {
			main.Y = r.Y + int16(rest.Height)
		} else {
			rest.Y = r.Y + int16(mainSize)
		}
	}
	out[0] = main

	ws := make([]float64, n-1)
	for i := range ws {
		ws[i] = 1
		if i < len(weights) && weights[i] > 0 {
			ws[i] = weights[i]
		}
	}
	if !wide {
		sizes := split(rest.Height, ws)
		y := rest.Y
		for i, h := range sizes {
			out[i+1] = xp.Rectangle{X: rest.X, Y: y, Width: rest.Width, Height: h}
			y += int16(h)
		}
	} else {
		sizes := split(rest.Width, ws)
		x := rest.X
		for i, w := range sizes {
			out[i+1] = xp.Rectangle{X: x, Y: rest.Y, Width: w, Height: rest.Height}
			x += int16(w)
		}
	}
	return out
}

// split divides total by weight. The sizes always sum to total.
func split(total uint16, weights []float64) []uint16 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	out := make([]uint16, len(weights))
	used, acc := 0, 0.0
	for i, w := range weights {
		acc += w
		end := int(float64(total) * acc / sum)
		if i == len(weights)-1 {
			end = int(total)
		}
		out[i] = uint16(end - used)
		used = end
	}
	return out
}

// inner shrinks a cell by the margin on every side and by the border, which
// X draws outside a window's size.
func inner(r xp.Rectangle, margin, border uint16) xp.Rectangle {
	shrink := 2 * (margin + border)
	if r.Width <= shrink || r.Height <= shrink {
		return xp.Rectangle{X: r.X + int16(margin), Y: r.Y + int16(margin), Width: 1, Height: 1}
	}
	return xp.Rectangle{
		X:      r.X + int16(margin),
		Y:      r.Y + int16(margin),
		Width:  r.Width - shrink,
		Height: r.Height - shrink,
	}
}

// place moves w to the cell r. An offscreen r only moves the window.
func (w *window) place(r xp.Rectangle) {
	if r.X != offscreenXY {
		if w.floating || w.dropDown != nil {
			r = inner(r, 0, borderWidth)
		} else {
			r = inner(r, margin, borderWidth)
		}
	}
	if w.seen && w.rect == r {
		return
	}
	w.rect = r
	mask, values := uint16(0), []uint32(nil)
	if r.X != offscreenXY {
		w.seen = true
		mask = xp.ConfigWindowX |
			xp.ConfigWindowY |
			xp.ConfigWindowWidth |
			xp.ConfigWindowHeight |
			xp.ConfigWindowBorderWidth
		values = []uint32{
			uint32(uint16(r.X)),
			uint32(uint16(r.Y)),
			uint32(r.Width),
			uint32(r.Height),
			uint32(borderWidth),
		}
	} else {
		mask = xp.ConfigWindowX | xp.ConfigWindowY
		values = []uint32{
			uint32(uint16(r.X)),
			uint32(uint16(r.Y)),
		}
	}
	check(xp.ConfigureWindowChecked(xConn, w.xWin, mask, values))
}

// outer is the cell that place would turn into w's current rect.
func (w *window) outer() xp.Rectangle {
	r := w.rect
	r.Width += 2 * borderWidth
	r.Height += 2 * borderWidth
	return r
}

func (w *window) raise() {
	check(xp.ConfigureWindowChecked(xConn, w.xWin, xp.ConfigWindowStackMode,
		[]uint32{xp.StackModeAbove}))
}

func (w *window) setBorder(color uint32) {
	if w.border == color {
		return
	}
	w.border = color
	check(xp.ChangeWindowAttributesChecked(xConn, w.xWin, xp.CwBorderPixel,
		[]uint32{color}))
}

func (w *window) visible() bool {
	return w.rect.X != offscreenXY && w.seen
}
