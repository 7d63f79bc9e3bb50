package keys

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
	"github.com/nigeltao/tiler/internal/logging"
)

type fakeHost struct {
	calls []string
	err   error
	// onLayout lets a test run code inside an action.
	onLayout func(c *Context)
}

func (h *fakeHost) record(format string, args ...interface{}) error {
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
	return h.err
}

func (h *fakeHost) Layout(c *Context, cmd string) error {
	if h.onLayout != nil {
		h.onLayout(c)
	}
	return h.record("layout %s", cmd)
}
func (h *fakeHost) SetLayout(c *Context, i int) error   { return h.record("set_layout %d", i) }
func (h *fakeHost) Window(c *Context, cmd string) error { return h.record("window %s %d", cmd, c.Window) }
func (h *fakeHost) FocusScreen(c *Context, i int) error { return h.record("screen %d", i) }
func (h *fakeHost) SwitchGroup(c *Context, g string) error {
	return h.record("switch %s", g)
}
func (h *fakeHost) MoveWindowToGroup(c *Context, g string, follow bool) error {
	return h.record("move %s %v", g, follow)
}
func (h *fakeHost) ToggleDropDown(c *Context, sp, name string) error {
	return h.record("toggle %s/%s", sp, name)
}
func (h *fakeHost) Spawn(c *Context, argv []string) error { return h.record("spawn %v", argv) }
func (h *fakeHost) Restart(c *Context) error             { return h.record("restart") }
func (h *fakeHost) Shutdown(c *Context) error            { return h.record("shutdown") }

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(logging.NewLogger("keys-test"))
}

func TestParseMods(t *testing.T) {
	m, err := ParseMods([]string{"mod", "shift"}, Mod4)
	require.NoError(t, err)
	assert.Equal(t, Mod4|Shift, m)
	assert.Equal(t, "mod4+shift", m.String())

	m, err = ParseMods([]string{"mod", "Ctrl", "alt"}, Mod4)
	require.NoError(t, err)
	assert.Equal(t, Mod4|Control|Mod1, m)

	_, err = ParseMods([]string{"hyper"}, Mod4)
	assert.Error(t, err)

	m, key, err := ParseChord("mod+shift+Return", Mod1)
	require.NoError(t, err)
	assert.Equal(t, Mod1|Shift, m)
	assert.Equal(t, "Return", key)

	m, key, err = ParseChord("Print", Mod4)
	require.NoError(t, err)
	assert.Equal(t, Mod(0), m)
	assert.Equal(t, "Print", key)

	_, _, err = ParseChord("mod+", Mod4)
	assert.Error(t, err)

	assert.Equal(t, "mod4+control+q", Chord(Mod4|Control, "q"))
	assert.Equal(t, "Print", Chord(0, "Print"))
}

func TestRegisterConflict(t *testing.T) {
	d := newTestDispatcher()
	require.NoError(t, d.Register(Binding{Mods: Mod4, Key: "s", Action: SwitchGroup("s")}))
	require.NoError(t, d.Register(Binding{Mods: Mod4 | Shift, Key: "s", Action: MoveToGroup("s", true)}))

	err := d.Register(Binding{Mods: Mod4, Key: "s", Action: Spawn("xterm")})
	require.Error(t, err)
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeBindingConflict))
	assert.Contains(t, err.Error(), "mod4+s")
	assert.True(t, tilerrors.IsConfiguration(err))
	assert.Equal(t, 2, d.Len())

	err = d.Register(Binding{Mods: Mod4, Key: "x"})
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeConfigInvalid))
}

func TestResolveExactSetOnly(t *testing.T) {
	d := newTestDispatcher()
	require.NoError(t, d.Register(Binding{Mods: Mod4, Key: "s", Action: SwitchGroup("s")}))

	b, ok := d.Resolve(Mod4, "s")
	require.True(t, ok)
	assert.Equal(t, "group.switch(s)", b.Action.String())

	_, ok = d.Resolve(Mod4|Shift, "s")
	assert.False(t, ok, "superset must not match")
	_, ok = d.Resolve(0, "s")
	assert.False(t, ok, "subset must not match")
	_, ok = d.Resolve(Mod4, "S")
	assert.False(t, ok)
}

func TestDispatchRunsAgainstContext(t *testing.T) {
	d := newTestDispatcher()
	h := &fakeHost{}
	c := &Context{Host: h, Window: 42, Screen: 1, Group: "a"}

	actions := []Action{
		Layout(LayoutGrow), LayoutIndex(1), Window(WindowKill), ToScreen(0),
		SwitchGroup("d"), MoveToGroup("f", true), ToggleDropDown("scratchpad", "keepassxc"),
		Spawn("alacritty"), Restart(), Shutdown(),
	}
	for _, a := range actions {
		require.NoError(t, d.Dispatch(a, c), a.String())
	}
	assert.Equal(t, []string{
		"layout grow", "set_layout 1", "window kill 42", "screen 0",
		"switch d", "move f true", "toggle scratchpad/keepassxc",
		"spawn [alacritty]", "restart", "shutdown",
	}, h.calls)
}

func TestDispatchWithoutFocusedWindow(t *testing.T) {
	d := newTestDispatcher()
	h := &fakeHost{}
	c := &Context{Host: h}

	assert.Error(t, d.Dispatch(Window(WindowKill), c))
	require.NoError(t, d.Dispatch(MoveToGroup("d", true), c))
	require.NoError(t, d.Dispatch(MoveToGroup("d", false), c))
	assert.Equal(t, []string{"switch d"}, h.calls)
}

func TestDispatchErrors(t *testing.T) {
	d := newTestDispatcher()
	h := &fakeHost{err: errors.New("no such layout")}
	err := d.Dispatch(LayoutIndex(9), &Context{Host: h})
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeDispatchFailed))

	assert.Error(t, d.Dispatch(Action{}, &Context{Host: h}))
	assert.Error(t, d.Dispatch(Restart(), &Context{}))
	assert.Error(t, d.Dispatch(Spawn(), &Context{Host: h}))
}

func TestDispatchRecoversPanic(t *testing.T) {
	d := newTestDispatcher()
	h := &fakeHost{onLayout: func(*Context) { panic("nil frame") }}
	require.NoError(t, d.Register(Binding{Mods: Mod4, Key: "h", Action: Layout(LayoutLeft)}))

	matched, err := d.HandleKey(Mod4, "h", &Context{Host: h})
	assert.True(t, matched)
	require.Error(t, err)
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeDispatchFailed))
	assert.Contains(t, err.Error(), "mod4+h")

	// The dispatcher is usable afterwards.
	h.onLayout = nil
	matched, err = d.HandleKey(Mod4, "h", &Context{Host: h})
	assert.True(t, matched)
	assert.NoError(t, err)
}

func TestDispatchIsNotReentrant(t *testing.T) {
	d := newTestDispatcher()
	var inner error
	h := &fakeHost{}
	h.onLayout = func(c *Context) {
		inner = d.Dispatch(Spawn("xterm"), c)
	}
	require.NoError(t, d.Dispatch(Layout(LayoutNext), &Context{Host: h}))
	require.Error(t, inner)
	assert.True(t, tilerrors.Is(inner, tilerrors.ErrCodeDispatchBusy))
	assert.Equal(t, []string{"layout next"}, h.calls)
}

func TestHandleKeyUnbound(t *testing.T) {
	d := newTestDispatcher()
	matched, err := d.HandleKey(Mod4, "z", &Context{Host: &fakeHost{}})
	assert.False(t, matched)
	assert.NoError(t, err)
}

func TestBindingsOrder(t *testing.T) {
	d := newTestDispatcher()
	require.NoError(t, d.RegisterAll([]Binding{
		{Mods: Mod4, Key: "Return", Action: Spawn("alacritty")},
		{Mods: Mod4, Key: "c", Action: Window(WindowKill)},
		{Mods: Mod4 | Control, Key: "r", Action: Restart()},
	}))
	bs := d.Bindings()
	require.Len(t, bs, 3)
	assert.Equal(t, "mod4+Return", bs[0].Chord())
	assert.Equal(t, "mod4+c", bs[1].Chord())
	assert.Equal(t, "mod4+control+r", bs[2].Chord())

	err := d.RegisterAll([]Binding{
		{Mods: Mod4, Key: "b", Action: Spawn("google-chrome")},
		{Mods: Mod4, Key: "c", Action: Spawn("xterm")},
	})
	assert.True(t, tilerrors.Is(err, tilerrors.ErrCodeBindingConflict))
}

func TestSystemAction(t *testing.T) {
	a, err := System("restart")
	require.NoError(t, err)
	assert.Equal(t, KindSystem, a.Kind)
	_, err = System("reboot")
	assert.Error(t, err)
	assert.Equal(t, "dropdown", KindDropDown.String())
}
