package keys

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the capability an action needs from the host.
type Kind int

const (
	KindLayout Kind = iota
	KindWindow
	KindGroup
	KindScreen
	KindSpawn
	KindDropDown
	KindSystem
)

var kindNames = [...]string{
	KindLayout:   "layout",
	KindWindow:   "window",
	KindGroup:    "group",
	KindScreen:   "screen",
	KindSpawn:    "spawn",
	KindDropDown: "dropdown",
	KindSystem:   "system",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Layout commands understood by Host.Layout.
const (
	LayoutLeft         = "left"
	LayoutRight        = "right"
	LayoutUp           = "up"
	LayoutDown         = "down"
	LayoutSwapLeft     = "swap_left"
	LayoutSwapRight    = "swap_right"
	LayoutShuffleUp    = "shuffle_up"
	LayoutShuffleDown  = "shuffle_down"
	LayoutGrow         = "grow"
	LayoutShrink       = "shrink"
	LayoutNormalize    = "normalize"
	LayoutNext         = "next"
	LayoutFlip         = "flip"
	LayoutToggleMaster = "toggle_master"
)

// Window commands understood by Host.Window.
const (
	WindowKill           = "kill"
	WindowToggleFloating = "toggle_floating"
	WindowBringToFront   = "bring_to_front"
)

// System commands.
const (
	SystemRestart  = "restart"
	SystemShutdown = "shutdown"
)

// LayoutCommands and WindowCommands list the valid command names, for
// configuration validation.
var (
	LayoutCommands = []string{
		LayoutLeft, LayoutRight, LayoutUp, LayoutDown,
		LayoutSwapLeft, LayoutSwapRight, LayoutShuffleUp, LayoutShuffleDown,
		LayoutGrow, LayoutShrink, LayoutNormalize, LayoutNext, LayoutFlip, LayoutToggleMaster,
	}
	WindowCommands = []string{WindowKill, WindowToggleFloating, WindowBringToFront}
	SystemCommands = []string{SystemRestart, SystemShutdown}
)

// Host is what the window manager provides to actions. Every method runs on
// the main loop. Spawn must not wait for the child.
type Host interface {
	Layout(c *Context, cmd string) error
	SetLayout(c *Context, index int) error
	Window(c *Context, cmd string) error
	FocusScreen(c *Context, index int) error
	SwitchGroup(c *Context, group string) error
	MoveWindowToGroup(c *Context, group string, follow bool) error
	ToggleDropDown(c *Context, scratchpad, name string) error
	Spawn(c *Context, argv []string) error
	Restart(c *Context) error
	Shutdown(c *Context) error
}

// Context is the live state an action is resolved against: the focused
// window (0 for none), the active screen and the active group.
type Context struct {
	Host   Host
	Window uint32
	Screen int
	Group  string
}

// Action is a closure over one host capability. The zero Action is invalid.
type Action struct {
	Kind Kind
	Name string
	do   func(*Context, interface{}) error
	arg  interface{}
}

var (
	errNoHost    = errors.New("no host")
	errBadArg    = errors.New("bad action argument")
	errNoAction  = errors.New("empty action")
	errNoWindow  = errors.New("no focused window")
	errEmptyArgv = errors.New("empty command")
)

// Run calls the action's closure against c.
func (a Action) Run(c *Context) error {
	if a.do == nil {
		return errNoAction
	}
	if c == nil || c.Host == nil {
		return errNoHost
	}
	return a.do(c, a.arg)
}

// Valid reports whether a was made by one of this package's constructors.
func (a Action) Valid() bool { return a.do != nil }

// Arg returns the action's argument, for display.
func (a Action) Arg() interface{} { return a.arg }

func (a Action) String() string { return a.Name }

func Layout(cmd string) Action {
	return Action{Kind: KindLayout, Name: "layout." + cmd, do: doLayout, arg: cmd}
}

func LayoutIndex(i int) Action {
	return Action{Kind: KindLayout, Name: fmt.Sprintf("layout.index(%d)", i), do: doLayoutIndex, arg: i}
}

func Window(cmd string) Action {
	return Action{Kind: KindWindow, Name: "window." + cmd, do: doWindow, arg: cmd}
}

// ToScreen focuses the screen at index i.
func ToScreen(i int) Action {
	return Action{Kind: KindScreen, Name: fmt.Sprintf("screen.to(%d)", i), do: doScreen, arg: i}
}

func SwitchGroup(group string) Action {
	return Action{Kind: KindGroup, Name: "group.switch(" + group + ")", do: doSwitchGroup, arg: group}
}

type moveArg struct {
	group  string
	follow bool
}

// MoveToGroup moves the focused window to group, then switches to that group
// if follow is set.
func MoveToGroup(group string, follow bool) Action {
	name := "group.move(" + group + ")"
	if follow {
		name = "group.move_and_switch(" + group + ")"
	}
	return Action{Kind: KindGroup, Name: name, do: doMoveToGroup, arg: moveArg{group, follow}}
}

type dropDownArg struct {
	scratchpad string
	name       string
}

func ToggleDropDown(scratchpad, name string) Action {
	return Action{
		Kind: KindDropDown,
		Name: "dropdown.toggle(" + scratchpad + "/" + name + ")",
		do:   doToggleDropDown,
		arg:  dropDownArg{scratchpad, name},
	}
}

func Spawn(argv ...string) Action {
	return Action{Kind: KindSpawn, Name: "spawn(" + strings.Join(argv, " ") + ")", do: doSpawn, arg: argv}
}

func Restart() Action {
	return Action{Kind: KindSystem, Name: "system." + SystemRestart, do: doRestart}
}

func Shutdown() Action {
	return Action{Kind: KindSystem, Name: "system." + SystemShutdown, do: doShutdown}
}

// System returns the system action named cmd.
func System(cmd string) (Action, error) {
	switch cmd {
	case SystemRestart:
		return Restart(), nil
	case SystemShutdown:
		return Shutdown(), nil
	}
	return Action{}, fmt.Errorf("unknown system command %q", cmd)
}

func doLayout(c *Context, cmd1 interface{}) error {
	cmd, ok := cmd1.(string)
	if !ok {
		return errBadArg
	}
	return c.Host.Layout(c, cmd)
}

func doLayoutIndex(c *Context, i1 interface{}) error {
	i, ok := i1.(int)
	if !ok {
		return errBadArg
	}
	return c.Host.SetLayout(c, i)
}

func doWindow(c *Context, cmd1 interface{}) error {
	cmd, ok := cmd1.(string)
	if !ok {
		return errBadArg
	}
	if c.Window == 0 {
		return errNoWindow
	}
	return c.Host.Window(c, cmd)
}

func doScreen(c *Context, i1 interface{}) error {
	i, ok := i1.(int)
	if !ok {
		return errBadArg
	}
	return c.Host.FocusScreen(c, i)
}

func doSwitchGroup(c *Context, g1 interface{}) error {
	g, ok := g1.(string)
	if !ok {
		return errBadArg
	}
	return c.Host.SwitchGroup(c, g)
}

func doMoveToGroup(c *Context, m1 interface{}) error {
	m, ok := m1.(moveArg)
	if !ok {
		return errBadArg
	}
	if c.Window == 0 {
		// Nothing to move; still honour the switch.
		if m.follow {
			return c.Host.SwitchGroup(c, m.group)
		}
		return nil
	}
	return c.Host.MoveWindowToGroup(c, m.group, m.follow)
}

func doToggleDropDown(c *Context, d1 interface{}) error {
	d, ok := d1.(dropDownArg)
	if !ok {
		return errBadArg
	}
	return c.Host.ToggleDropDown(c, d.scratchpad, d.name)
}

func doSpawn(c *Context, argv1 interface{}) error {
	argv, ok := argv1.([]string)
	if !ok {
		return errBadArg
	}
	if len(argv) == 0 {
		return errEmptyArgv
	}
	return c.Host.Spawn(c, argv)
}

func doRestart(c *Context, _ interface{}) error {
	return c.Host.Restart(c)
}

func doShutdown(c *Context, _ interface{}) error {
	return c.Host.Shutdown(c)
}
