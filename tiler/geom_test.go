package main

import (
	"testing"

	xp "github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nigeltao/tiler/internal/config"
	"github.com/nigeltao/tiler/internal/workspace"
)

var desk = xp.Rectangle{X: 0, Y: 0, Width: 1000, Height: 800}

func TestTile(t *testing.T) {
	off := xp.Rectangle{X: offscreenXY, Y: offscreenXY, Width: 1000, Height: 800}

	tests := []struct {
		name    string
		layout  string
		n       int
		focused int
		ratio   float64
		flipped bool
		weights []float64
		want    []xp.Rectangle
	}{
		{
			name:   "none",
			layout: layoutMonadTall, n: 0, ratio: 0.5,
			want: nil,
		},
		{
			name:   "single window fills the screen",
			layout: layoutMonadTall, n: 1, ratio: 0.5,
			want: []xp.Rectangle{desk},
		},
		{
			name:   "monadtall",
			layout: layoutMonadTall, n: 3, ratio: 0.5,
			want: []xp.Rectangle{
				{X: 0, Y: 0, Width: 500, Height: 800},
				{X: 500, Y: 0, Width: 500, Height: 400},
				{X: 500, Y: 400, Width: 500, Height: 400},
			},
		},
		{
			name:   "monadtall flipped",
			layout: layoutMonadTall, n: 3, ratio: 0.75, flipped: true,
			want: []xp.Rectangle{
				{X: 250, Y: 0, Width: 750, Height: 800},
				{X: 0, Y: 0, Width: 250, Height: 400},
				{X: 0, Y: 400, Width: 250, Height: 400},
			},
		},
		{
			name:   "monadtall weighted stack",
			layout: layoutMonadTall, n: 3, ratio: 0.5, weights: []float64{3, 1},
			want: []xp.Rectangle{
				{X: 0, Y: 0, Width: 500, Height: 800},
				{X: 500, Y: 0, Width: 500, Height: 600},
				{X: 500, Y: 600, Width: 500, Height: 200},
			},
		},
		{
			name:   "monadwide",
			layout: layoutMonadWide, n: 3, ratio: 0.5,
			want: []xp.Rectangle{
				{X: 0, Y: 0, Width: 1000, Height: 400},
				{X: 0, Y: 400, Width: 500, Height: 400},
				{X: 500, Y: 400, Width: 500, Height: 400},
			},
		},
		{
			name:   "monadwide flipped",
			layout: layoutMonadWide, n: 2, ratio: 0.75, flipped: true,
			want: []xp.Rectangle{
				{X: 0, Y: 200, Width: 1000, Height: 600},
				{X: 0, Y: 0, Width: 1000, Height: 200},
			},
		},
		{
			name:   "max shows only the focused window",
			layout: layoutMax, n: 3, focused: 1, ratio: 0.5,
			want: []xp.Rectangle{off, desk, off},
		},
		{
			name:   "max with no focus shows the first",
			layout: layoutMax, n: 2, focused: -1, ratio: 0.5,
			want: []xp.Rectangle{desk, off},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tile(tt.layout, desk, tt.n, tt.focused, tt.ratio, tt.flipped, tt.weights)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTileStackCoversColumn(t *testing.T) {
	r := xp.Rectangle{X: 17, Y: 30, Width: 1279, Height: 1001}
	for n := 2; n <= 9; n++ {
		rects := tile(layoutMonadTall, r, n, 0, 0.55, false, nil)
		require.Len(t, rects, n)

		y := r.Y
		for _, c := range rects[1:] {
			assert.Equal(t, y, c.Y, "n=%d", n)
			assert.Equal(t, rects[0].X+int16(rects[0].Width), c.X, "n=%d", n)
			y += int16(c.Height)
		}
		assert.Equal(t, r.Y+int16(r.Height), y, "n=%d", n)
		assert.Equal(t, r.Width, rects[0].Width+rects[1].Width, "n=%d", n)
	}
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []uint16{3, 3, 4}, split(10, []float64{1, 1, 1}))
	assert.Equal(t, []uint16{50, 25, 25}, split(100, []float64{2, 1, 1}))
	assert.Equal(t, []uint16{7}, split(7, []float64{0.3}))

	for total := uint16(1); total < 300; total += 7 {
		sum := 0
		for _, s := range split(total, []float64{1.25, 0.8, 1, 3}) {
			sum += int(s)
		}
		assert.Equal(t, int(total), sum)
	}
}

func TestInner(t *testing.T) {
	assert.Equal(t,
		xp.Rectangle{X: 5, Y: 5, Width: 84, Height: 64},
		inner(xp.Rectangle{Width: 100, Height: 80}, 5, 3))
	assert.Equal(t,
		xp.Rectangle{X: 105, Y: 5, Width: 1, Height: 1},
		inner(xp.Rectangle{X: 100, Width: 10, Height: 10}, 5, 3))
}

func TestFraction(t *testing.T) {
	r := xp.Rectangle{X: 100, Y: 0, Width: 1000, Height: 800}
	assert.Equal(t,
		xp.Rectangle{X: 350, Y: 400, Width: 500, Height: 200},
		fraction(r, 0.25, 0.5, 0.5, 0.25))
	assert.Equal(t, r, fraction(r, 0, 0, 1, 1))
}

func TestContains(t *testing.T) {
	r := xp.Rectangle{X: 0, Y: 0, Width: 100, Height: 100}
	assert.True(t, contains(r, 0, 0))
	assert.True(t, contains(r, 99, 99))
	assert.False(t, contains(r, 100, 0))
	assert.False(t, contains(r, 0, 100))
	assert.False(t, contains(r, -1, 50))

	right := xp.Rectangle{X: 1920, Y: 0, Width: 1280, Height: 1024}
	assert.True(t, contains(right, 1920, 1023))
	assert.False(t, contains(right, 1919, 10))
}

func withLayouts(t *testing.T, layouts ...string) {
	t.Helper()
	saved := cfg
	cfg = &config.Config{Layouts: layouts}
	t.Cleanup(func() { cfg = saved })
}

func TestGroupLayout(t *testing.T) {
	withLayouts(t, layoutMonadTall, layoutMax, layoutMonadWide)

	g := newGroup(workspace.Group{Name: "web", Layout: layoutMax}, cfg.Layouts)
	assert.Equal(t, 1, g.layout)
	assert.Equal(t, layoutMax, g.layoutName())
	assert.Equal(t, ratioDefault, g.ratio)

	g = newGroup(workspace.Group{Name: "dev"}, cfg.Layouts)
	assert.Equal(t, layoutMonadTall, g.layoutName())

	g.layout = 7
	assert.Equal(t, layoutMax, g.layoutName())
}

func TestGroupAddRemove(t *testing.T) {
	g := newGroup(workspace.Group{Name: "1"}, nil)
	a, b, c := &window{xWin: 1}, &window{xWin: 2}, &window{xWin: 3, weight: 2}
	g.add(a)
	g.add(b)
	g.add(c)

	assert.Equal(t, g, a.group)
	assert.Equal(t, 1.0, a.weight)
	assert.Equal(t, 2.0, c.weight)
	assert.Equal(t, 1, g.indexOf(b))

	g.focused = b
	g.remove(b)
	assert.Nil(t, b.group)
	assert.Equal(t, []*window{a, c}, g.windows)
	assert.Equal(t, c, g.focused, "the next window takes the focus")

	g.remove(c)
	assert.Equal(t, a, g.focused, "the previous window takes the focus when the last goes")

	g.remove(&window{xWin: 9})
	assert.Len(t, g.windows, 1)

	g.remove(a)
	assert.Nil(t, g.focused)
	assert.Empty(t, g.windows)
}

func TestGroupTiledAndSwap(t *testing.T) {
	g := newGroup(workspace.Group{Name: "1"}, nil)
	a, b, c := &window{xWin: 1}, &window{xWin: 2, floating: true}, &window{xWin: 3}
	g.add(a)
	g.add(b)
	g.add(c)

	assert.Equal(t, []*window{a, c}, g.tiled())

	g.swap(a, c)
	assert.Equal(t, []*window{c, b, a}, g.windows)
	assert.Equal(t, []*window{c, a}, g.tiled())
}

func TestWindowForXWin(t *testing.T) {
	saved := groups
	t.Cleanup(func() { groups = saved })

	g1 := newGroup(workspace.Group{Name: "1"}, nil)
	g2 := newGroup(workspace.Group{Name: "2"}, nil)
	groups = []*group{g1, g2}
	w := &window{xWin: 0x400001}
	g2.add(w)

	assert.Equal(t, w, windowForXWin(0x400001))
	assert.Nil(t, windowForXWin(0x400002))
	assert.Nil(t, windowForXWin(0))
}

func TestScreenContaining(t *testing.T) {
	saved := screens
	t.Cleanup(func() { screens = saved })

	left := &screen{index: 0, rect: xp.Rectangle{Width: 1920, Height: 1080}}
	right := &screen{index: 1, rect: xp.Rectangle{X: 1920, Width: 1280, Height: 1024}}
	screens = []*screen{left, right}

	assert.Equal(t, left, screenContaining(10, 10))
	assert.Equal(t, right, screenContaining(1920, 0))
	assert.Equal(t, left, screenContaining(3000, 1050), "outside every screen falls back to the first")
}
