package workspace

import (
	"fmt"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
	"github.com/nigeltao/tiler/internal/keys"
)

// Registry is the ordered, process-wide set of groups. It is built once at
// startup and only read afterwards.
type Registry struct {
	groups     []*Group
	byName     map[string]*Group
	scratchpad *Group
	floatRules []MatchRule
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Group{}}
}

// Register appends g. It fails with DUPLICATE_GROUP when the name is taken,
// with DUPLICATE_SCRATCHPAD when g is a second scratchpad, and with
// CONFIG_INVALID for a malformed group. The registry is unchanged on error.
func (r *Registry) Register(g Group) error {
	if g.Name == "" {
		return tilerrors.ConfigInvalid("group has no name")
	}
	if _, ok := r.byName[g.Name]; ok {
		return tilerrors.DuplicateGroup(g.Name)
	}
	if g.Scratchpad {
		if r.scratchpad != nil {
			return tilerrors.DuplicateScratchpad(g.Name, r.scratchpad.Name)
		}
		if err := checkDropDowns(g); err != nil {
			return err
		}
	} else if len(g.DropDowns) > 0 {
		return tilerrors.ConfigInvalid(fmt.Sprintf("group '%s' has dropdowns but is not a scratchpad", g.Name))
	}

	p := &g
	r.groups = append(r.groups, p)
	r.byName[g.Name] = p
	if g.Scratchpad {
		r.scratchpad = p
	}
	return nil
}

func checkDropDowns(g Group) error {
	seen := map[string]bool{}
	for _, d := range g.DropDowns {
		switch {
		case d.Name == "":
			return tilerrors.ConfigInvalid(fmt.Sprintf("scratchpad '%s' has a dropdown with no name", g.Name))
		case seen[d.Name]:
			return tilerrors.ConfigInvalid(fmt.Sprintf("scratchpad '%s' has two dropdowns named '%s'", g.Name, d.Name))
		case d.Key == "":
			return tilerrors.ConfigInvalid(fmt.Sprintf("dropdown '%s' has no key", d.Name))
		case len(d.Command) == 0:
			return tilerrors.ConfigInvalid(fmt.Sprintf("dropdown '%s' has no command", d.Name))
		case d.Width <= 0 || d.Height <= 0 || d.X < 0 || d.Y < 0 || d.X+d.Width > 1 || d.Y+d.Height > 1:
			return tilerrors.ConfigInvalid(fmt.Sprintf("dropdown '%s' geometry is not within the screen", d.Name))
		}
		seen[d.Name] = true
	}
	return nil
}

// Groups returns every group in registration order.
func (r *Registry) Groups() []Group {
	out := make([]Group, len(r.groups))
	for i, g := range r.groups {
		out[i] = *g
	}
	return out
}

// Ordinary returns the non-scratchpad groups in registration order.
func (r *Registry) Ordinary() []Group {
	var out []Group
	for _, g := range r.groups {
		if !g.Scratchpad {
			out = append(out, *g)
		}
	}
	return out
}

func (r *Registry) Lookup(name string) (Group, bool) {
	g, ok := r.byName[name]
	if !ok {
		return Group{}, false
	}
	return *g, true
}

func (r *Registry) Scratchpad() (Group, bool) {
	if r.scratchpad == nil {
		return Group{}, false
	}
	return *r.scratchpad, true
}

// ResolveGroupFor returns the first group, in registration order, with a
// rule matching m. No match means the caller places the window in its
// active group.
func (r *Registry) ResolveGroupFor(m WindowMetadata) (Group, bool) {
	for _, g := range r.groups {
		if g.matches(m) {
			return *g, true
		}
	}
	return Group{}, false
}

// BindingsFor returns the bindings g contributes under the group modifier
// mod. A scratchpad gets one toggle binding per dropdown. An ordinary group
// gets (mod, name) to switch to it and (mod+shift, name) to move the focused
// window there and follow it.
func BindingsFor(g Group, mod keys.Mod) []keys.Binding {
	if g.Scratchpad {
		out := make([]keys.Binding, 0, len(g.DropDowns))
		for _, d := range g.DropDowns {
			out = append(out, keys.Binding{
				Mods:   mod,
				Key:    d.Key,
				Action: keys.ToggleDropDown(g.Name, d.Name),
				Desc:   "Toggle " + d.Name,
			})
		}
		return out
	}
	return []keys.Binding{
		{
			Mods:   mod,
			Key:    g.Name,
			Action: keys.SwitchGroup(g.Name),
			Desc:   "Switch to group " + g.DisplayLabel(),
		},
		{
			Mods:   mod | keys.Shift,
			Key:    g.Name,
			Action: keys.MoveToGroup(g.Name, true),
			Desc:   "Move focused window to group " + g.DisplayLabel(),
		},
	}
}

// Bindings concatenates BindingsFor over every group in registration order.
func (r *Registry) Bindings(mod keys.Mod) []keys.Binding {
	var out []keys.Binding
	for _, g := range r.groups {
		out = append(out, BindingsFor(*g, mod)...)
	}
	return out
}

// AddFloatRule adds a rule for windows that always float.
func (r *Registry) AddFloatRule(rule MatchRule) {
	r.floatRules = append(r.floatRules, rule)
}

func (r *Registry) FloatRules() []MatchRule {
	return append([]MatchRule(nil), r.floatRules...)
}

// ShouldFloat reports whether a new window starts floating: dialogs,
// notifications, transient windows and anything matching a float rule.
func (r *Registry) ShouldFloat(m WindowMetadata) bool {
	if m.TransientFor != nil {
		return true
	}
	switch m.WMType {
	case "dialog", "notification", "splash", "utility":
		return true
	}
	for _, rule := range r.floatRules {
		if rule.Match(m) {
			return true
		}
	}
	return false
}

// DropDownFor returns the scratchpad dropdown whose window class matches m.
func (r *Registry) DropDownFor(m WindowMetadata) (DropDown, bool) {
	if r.scratchpad == nil {
		return DropDown{}, false
	}
	for _, d := range r.scratchpad.DropDowns {
		if d.matches(m) {
			return d, true
		}
	}
	return DropDown{}, false
}

// AssignScreens chooses the group shown on each of n screens. Screen i keeps
// current[i] when that is still an ordinary group not already shown
// elsewhere; other screens take the first ordinary group not yet shown. A
// screen is given "" when there are more screens than groups.
func (r *Registry) AssignScreens(n int, current []string) []string {
	out := make([]string, n)
	used := map[string]bool{}
	for i := 0; i < n && i < len(current); i++ {
		g, ok := r.byName[current[i]]
		if !ok || g.Scratchpad || used[g.Name] {
			continue
		}
		out[i] = g.Name
		used[g.Name] = true
	}
	next := 0
	for i := range out {
		if out[i] != "" {
			continue
		}
		for ; next < len(r.groups); next++ {
			g := r.groups[next]
			if !g.Scratchpad && !used[g.Name] {
				out[i] = g.Name
				used[g.Name] = true
				next++
				break
			}
		}
	}
	return out
}
