package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
	"github.com/nigeltao/tiler/internal/keys"
	"github.com/nigeltao/tiler/internal/workspace"
)

// KnownLayouts are the layouts the window manager implements.
var KnownLayouts = []string{"monadtall", "max", "monadwide"}

const (
	defaultModifier   = "mod4"
	defaultDebounceMs = 500
	defaultLayoutDir  = "~/.config/tiler/screenlayouts"
	defaultAutostart  = "~/.config/tiler/autostart.sh"
)

// SetDefaults fills unset scalar settings. Lists such as keys and groups
// are taken as given.
func (c *Config) SetDefaults() {
	if c.Modifier == "" {
		c.Modifier = defaultModifier
	}
	if c.WMName == "" {
		c.WMName = "tiler"
	}
	if len(c.Layouts) == 0 {
		c.Layouts = append([]string(nil), KnownLayouts...)
	}
	if c.Topology.Count == "" {
		c.Topology.Count = "preferred"
	}
	if c.Topology.DebounceMs == 0 {
		c.Topology.DebounceMs = defaultDebounceMs
	}
	if c.Scripts.LayoutDir == "" {
		c.Scripts.LayoutDir = defaultLayoutDir
	}
	if c.Scripts.Autostart == "" {
		c.Scripts.Autostart = defaultAutostart
	}
	c.Scripts.LayoutDir = expandPath(c.Scripts.LayoutDir)
	c.Scripts.Autostart = expandPath(c.Scripts.Autostart)
	c.Border.Focus = strings.TrimPrefix(c.Border.Focus, "#")
	c.Border.Normal = strings.TrimPrefix(c.Border.Normal, "#")
	if c.Border.Focus == "" {
		c.Border.Focus = "cc241d"
	}
	if c.Border.Normal == "" {
		c.Border.Normal = "3c3836"
	}
}

// Validate checks what the schema cannot: modifier and layout names, that
// every key names exactly one valid action, and that commands parse.
// Duplicate groups and chords are left to the registry and dispatcher, which
// report them with their own error codes.
func (c *Config) Validate() error {
	if _, err := c.ModMask(); err != nil {
		return tilerrors.ConfigInvalid(err.Error()).WithDetail("field", "modifier")
	}
	for _, l := range c.Layouts {
		if !slices.Contains(KnownLayouts, l) {
			return tilerrors.ConfigInvalid(fmt.Sprintf("unknown layout '%s'", l)).WithDetail("field", "layouts")
		}
	}
	if _, err := c.KeyBindings(); err != nil {
		return err
	}
	if _, err := c.WorkspaceGroups(); err != nil {
		return err
	}
	return nil
}

// ModMask returns the group modifier.
func (c *Config) ModMask() (keys.Mod, error) {
	m, err := keys.ParseMod(c.Modifier)
	if err != nil {
		return 0, err
	}
	if m&keys.LockMods != 0 {
		return 0, fmt.Errorf("modifier %q is a lock and cannot start a chord", c.Modifier)
	}
	return m, nil
}

// FollowMouse reports whether focus follows the pointer.
func (c *Config) FollowMouse() bool {
	return Bool(c.FollowMouseFocus, true)
}

// MonitorEnabled reports whether device events trigger reconfiguration.
func (c *Config) MonitorEnabled() bool {
	return Bool(c.Topology.Monitor, true)
}

// Debounce is the quiet period for device event bursts.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Topology.DebounceMs) * time.Millisecond
}

// FixupTimeout bounds a layout script. Zero means the runner's default.
func (c *Config) FixupTimeout() time.Duration {
	return time.Duration(c.Scripts.FixupTimeoutMs) * time.Millisecond
}

// KeyBindings converts the key specs, in order.
func (c *Config) KeyBindings() ([]keys.Binding, error) {
	mod, err := c.ModMask()
	if err != nil {
		return nil, tilerrors.ConfigInvalid(err.Error()).WithDetail("field", "modifier")
	}
	out := make([]keys.Binding, 0, len(c.Keys))
	for i, k := range c.Keys {
		b, err := k.binding(mod, len(c.Layouts))
		if err != nil {
			return nil, tilerrors.ConfigInvalid(fmt.Sprintf("keys[%d] (%s): %v", i, k.Key, err)).
				WithDetail("field", fmt.Sprintf("keys[%d]", i))
		}
		out = append(out, b)
	}
	return out, nil
}

func (k KeySpec) binding(mod keys.Mod, numLayouts int) (keys.Binding, error) {
	mods, err := keys.ParseMods(k.Mods, mod)
	if err != nil {
		return keys.Binding{}, err
	}
	if mods&keys.LockMods != 0 {
		return keys.Binding{}, fmt.Errorf("lock modifier %s is ignored in chords", mods&keys.LockMods)
	}
	if k.Key == "" {
		return keys.Binding{}, fmt.Errorf("no key")
	}
	a, err := k.action(numLayouts)
	if err != nil {
		return keys.Binding{}, err
	}
	return keys.Binding{Mods: mods, Key: k.Key, Action: a, Desc: k.Desc}, nil
}

func (k KeySpec) action(numLayouts int) (keys.Action, error) {
	var actions []keys.Action
	if k.Layout != "" {
		if !slices.Contains(keys.LayoutCommands, k.Layout) {
			return keys.Action{}, fmt.Errorf("unknown layout command %q", k.Layout)
		}
		actions = append(actions, keys.Layout(k.Layout))
	}
	if k.LayoutIndex != nil {
		if *k.LayoutIndex < 0 || *k.LayoutIndex >= numLayouts {
			return keys.Action{}, fmt.Errorf("layout index %d out of range", *k.LayoutIndex)
		}
		actions = append(actions, keys.LayoutIndex(*k.LayoutIndex))
	}
	if k.Window != "" {
		if !slices.Contains(keys.WindowCommands, k.Window) {
			return keys.Action{}, fmt.Errorf("unknown window command %q", k.Window)
		}
		actions = append(actions, keys.Window(k.Window))
	}
	if k.Screen != nil {
		if *k.Screen < 0 {
			return keys.Action{}, fmt.Errorf("negative screen %d", *k.Screen)
		}
		actions = append(actions, keys.ToScreen(*k.Screen))
	}
	if k.Spawn != "" {
		argv, err := SplitCommand(k.Spawn)
		if err != nil {
			return keys.Action{}, err
		}
		actions = append(actions, keys.Spawn(argv...))
	}
	if k.System != "" {
		a, err := keys.System(k.System)
		if err != nil {
			return keys.Action{}, err
		}
		actions = append(actions, a)
	}
	switch len(actions) {
	case 0:
		return keys.Action{}, fmt.Errorf("no action")
	case 1:
		return actions[0], nil
	}
	return keys.Action{}, fmt.Errorf("%d actions, want exactly one", len(actions))
}

// SplitCommand splits a command line with shell quoting rules.
func SplitCommand(s string) ([]string, error) {
	argv, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", s, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return argv, nil
}

// WorkspaceGroups converts the group specs, in order.
func (c *Config) WorkspaceGroups() ([]workspace.Group, error) {
	out := make([]workspace.Group, 0, len(c.Groups))
	for i, g := range c.Groups {
		if g.Layout != "" && !slices.Contains(c.Layouts, g.Layout) {
			return nil, tilerrors.ConfigInvalid(fmt.Sprintf("group '%s' uses layout '%s', which is not in layouts", g.Name, g.Layout)).
				WithDetail("field", fmt.Sprintf("groups[%d]", i))
		}
		wg := workspace.Group{
			Name:       g.Name,
			Label:      g.Label,
			Layout:     g.Layout,
			Matches:    matchRules(g.Matches),
			Scratchpad: g.Scratchpad,
		}
		for _, d := range g.DropDowns {
			command := d.Command
			if command == "" {
				command = d.Name
			}
			argv, err := SplitCommand(command)
			if err != nil {
				return nil, tilerrors.ConfigInvalid(fmt.Sprintf("dropdown '%s': %v", d.Name, err)).
					WithDetail("field", fmt.Sprintf("groups[%d]", i))
			}
			wg.DropDowns = append(wg.DropDowns, workspace.DropDown{
				Name:            d.Name,
				Command:         argv,
				Key:             d.Key,
				Match:           d.Match,
				X:               d.X,
				Y:               d.Y,
				Width:           d.Width,
				Height:          d.Height,
				HideOnFocusLost: d.HideOnFocusLost,
			})
		}
		out = append(out, wg)
	}
	return out, nil
}

// WorkspaceFloatRules converts the float rules.
func (c *Config) WorkspaceFloatRules() []workspace.MatchRule {
	return matchRules(c.FloatRules)
}

func matchRules(specs []MatchSpec) []workspace.MatchRule {
	var out []workspace.MatchRule
	for _, m := range specs {
		out = append(out, workspace.MatchRule{WMClass: m.WMClass, Name: m.WMName})
	}
	return out
}
