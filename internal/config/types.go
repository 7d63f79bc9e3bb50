// Package config loads the tiler configuration file: key bindings, groups,
// scratchpad dropdowns, float rules, layouts and the scripts run around
// screen reconfiguration.
package config

import (
	"github.com/nigeltao/tiler/internal/logging"
)

// Config is the root of config.yml (or config.toml).
type Config struct {
	// Modifier is the window-manager modifier that "mod" stands for in key
	// specs and that group bindings use.
	Modifier string `yaml:"modifier,omitempty" toml:"modifier,omitempty" json:"modifier,omitempty" jsonschema:"description=Modifier that 'mod' stands for (e.g. mod4)"`

	// WMName is advertised as the window manager's name.
	WMName string `yaml:"wmname,omitempty" toml:"wmname,omitempty" json:"wmname,omitempty"`

	FollowMouseFocus *bool `yaml:"follow_mouse_focus,omitempty" toml:"follow_mouse_focus,omitempty" json:"follow_mouse_focus,omitempty"`

	Scripts  ScriptsConfig    `yaml:"scripts,omitempty" toml:"scripts,omitempty" json:"scripts,omitempty"`
	Topology TopologyConfig   `yaml:"topology,omitempty" toml:"topology,omitempty" json:"topology,omitempty"`
	Logging  logging.Settings `yaml:"logging,omitempty" toml:"logging,omitempty" json:"logging,omitempty"`
	Border   BorderConfig     `yaml:"border,omitempty" toml:"border,omitempty" json:"border,omitempty"`

	// Layouts lists the layouts every group cycles through, in order.
	Layouts []string `yaml:"layouts,omitempty" toml:"layouts,omitempty" json:"layouts,omitempty" jsonschema:"description=Layouts in cycling order"`

	Keys       []KeySpec   `yaml:"keys,omitempty" toml:"keys,omitempty" json:"keys,omitempty"`
	Groups     []GroupSpec `yaml:"groups,omitempty" toml:"groups,omitempty" json:"groups,omitempty"`
	FloatRules []MatchSpec `yaml:"float_rules,omitempty" toml:"float_rules,omitempty" json:"float_rules,omitempty"`
}

// ScriptsConfig names the external scripts run by the window manager.
type ScriptsConfig struct {
	// LayoutDir holds <n>screens.sh, run before n screens are configured.
	LayoutDir string `yaml:"layout_dir,omitempty" toml:"layout_dir,omitempty" json:"layout_dir,omitempty"`

	// Autostart runs once when the window manager first starts.
	Autostart string `yaml:"autostart,omitempty" toml:"autostart,omitempty" json:"autostart,omitempty"`

	// FixupTimeoutMs bounds a layout script. Zero means the default.
	FixupTimeoutMs int `yaml:"fixup_timeout_ms,omitempty" toml:"fixup_timeout_ms,omitempty" json:"fixup_timeout_ms,omitempty" jsonschema:"minimum=0"`
}

// TopologyConfig controls output counting and hotplug detection.
type TopologyConfig struct {
	// Count is "preferred" (outputs with a preferred mode) or "connected".
	Count string `yaml:"count,omitempty" toml:"count,omitempty" json:"count,omitempty" jsonschema:"enum=preferred,enum=connected"`

	// Monitor enables the kernel device event listener.
	Monitor *bool `yaml:"monitor,omitempty" toml:"monitor,omitempty" json:"monitor,omitempty"`

	Subsystem  string `yaml:"subsystem,omitempty" toml:"subsystem,omitempty" json:"subsystem,omitempty"`
	DebounceMs int    `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty" json:"debounce_ms,omitempty" jsonschema:"minimum=0"`
}

// BorderConfig styles tiled windows.
type BorderConfig struct {
	Focus  string `yaml:"focus,omitempty" toml:"focus,omitempty" json:"focus,omitempty" jsonschema:"pattern=^#?[0-9a-fA-F]{6}$"`
	Normal string `yaml:"normal,omitempty" toml:"normal,omitempty" json:"normal,omitempty" jsonschema:"pattern=^#?[0-9a-fA-F]{6}$"`
	Width  int    `yaml:"width,omitempty" toml:"width,omitempty" json:"width,omitempty" jsonschema:"minimum=0"`
	Margin int    `yaml:"margin,omitempty" toml:"margin,omitempty" json:"margin,omitempty" jsonschema:"minimum=0"`
}

// KeySpec binds one chord to exactly one action.
type KeySpec struct {
	// Mods are modifier names; "mod" means Config.Modifier.
	Mods []string `yaml:"mods,omitempty" toml:"mods,omitempty" json:"mods,omitempty"`
	Key  string   `yaml:"key" toml:"key" json:"key" jsonschema:"required"`
	Desc string   `yaml:"desc,omitempty" toml:"desc,omitempty" json:"desc,omitempty"`

	Layout      string `yaml:"layout,omitempty" toml:"layout,omitempty" json:"layout,omitempty"`
	LayoutIndex *int   `yaml:"layout_index,omitempty" toml:"layout_index,omitempty" json:"layout_index,omitempty"`
	Window      string `yaml:"window,omitempty" toml:"window,omitempty" json:"window,omitempty"`
	Screen      *int   `yaml:"screen,omitempty" toml:"screen,omitempty" json:"screen,omitempty"`
	// Spawn is a command line, split with shell quoting rules but not run
	// through a shell.
	Spawn  string `yaml:"spawn,omitempty" toml:"spawn,omitempty" json:"spawn,omitempty"`
	System string `yaml:"system,omitempty" toml:"system,omitempty" json:"system,omitempty" jsonschema:"enum=restart,enum=shutdown"`
}

// GroupSpec declares a workspace group, or the scratchpad.
type GroupSpec struct {
	Name       string         `yaml:"name" toml:"name" json:"name" jsonschema:"required"`
	Label      string         `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty"`
	Layout     string         `yaml:"layout,omitempty" toml:"layout,omitempty" json:"layout,omitempty"`
	Matches    []MatchSpec    `yaml:"matches,omitempty" toml:"matches,omitempty" json:"matches,omitempty"`
	Scratchpad bool           `yaml:"scratchpad,omitempty" toml:"scratchpad,omitempty" json:"scratchpad,omitempty"`
	DropDowns  []DropDownSpec `yaml:"dropdowns,omitempty" toml:"dropdowns,omitempty" json:"dropdowns,omitempty"`
}

// MatchSpec matches windows by class and/or name.
type MatchSpec struct {
	WMClass []string `yaml:"wm_class,omitempty" toml:"wm_class,omitempty" json:"wm_class,omitempty"`
	WMName  string   `yaml:"wm_name,omitempty" toml:"wm_name,omitempty" json:"wm_name,omitempty"`
}

// DropDownSpec declares a scratchpad dropdown. Geometry is in fractions of
// the screen.
type DropDownSpec struct {
	Name            string  `yaml:"name" toml:"name" json:"name" jsonschema:"required"`
	Command         string  `yaml:"command,omitempty" toml:"command,omitempty" json:"command,omitempty"`
	Key             string  `yaml:"key" toml:"key" json:"key" jsonschema:"required"`
	Match           string  `yaml:"match,omitempty" toml:"match,omitempty" json:"match,omitempty"`
	X               float64 `yaml:"x" toml:"x" json:"x" jsonschema:"minimum=0,maximum=1"`
	Y               float64 `yaml:"y" toml:"y" json:"y" jsonschema:"minimum=0,maximum=1"`
	Width           float64 `yaml:"width" toml:"width" json:"width" jsonschema:"minimum=0,maximum=1"`
	Height          float64 `yaml:"height" toml:"height" json:"height" jsonschema:"minimum=0,maximum=1"`
	HideOnFocusLost bool    `yaml:"on_focus_lost_hide,omitempty" toml:"on_focus_lost_hide,omitempty" json:"on_focus_lost_hide,omitempty"`
}

// Bool returns *b, or def when b is nil.
func Bool(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
