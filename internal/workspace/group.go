// Package workspace holds the ordered registry of window groups, the rules
// that place new windows into them, and the key bindings each group
// contributes.
package workspace

import "strings"

// WindowMetadata is what the registry may know about a window. TransientFor
// is nil for a window that is not transient for another.
type WindowMetadata struct {
	Classes      []string
	Name         string
	TransientFor *uint32
	WMType       string
}

// MatchRule is a predicate over window metadata. Every set field must match:
// WMClass matches when any of its entries equals any window class, Name when
// it equals the window name. A rule with no fields set matches nothing.
type MatchRule struct {
	WMClass []string
	Name    string
}

func (r MatchRule) empty() bool {
	return len(r.WMClass) == 0 && r.Name == ""
}

func (r MatchRule) Match(m WindowMetadata) bool {
	if r.empty() {
		return false
	}
	if len(r.WMClass) > 0 && !anyEqual(r.WMClass, m.Classes) {
		return false
	}
	if r.Name != "" && r.Name != m.Name {
		return false
	}
	return true
}

func anyEqual(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

// DropDown is a scratchpad window: a command spawned on first toggle, shown
// floating at a fraction of the screen and hidden again on the next toggle.
type DropDown struct {
	Name    string
	Command []string
	// Key is the key symbol that toggles the dropdown, with the group
	// modifier.
	Key string
	// Match is the window class the spawned window is recognised by. Empty
	// means Name.
	Match string
	// X, Y, Width and Height are fractions of the screen.
	X, Y, Width, Height float64
	HideOnFocusLost     bool
}

// MatchClass returns the window class a dropdown's window is recognised by.
func (d DropDown) MatchClass() string {
	if d.Match != "" {
		return d.Match
	}
	return d.Name
}

func (d DropDown) matches(m WindowMetadata) bool {
	want := d.MatchClass()
	for _, c := range m.Classes {
		if strings.EqualFold(c, want) {
			return true
		}
	}
	return false
}

// Group is a named workspace. A scratchpad group is never shown; it only
// holds dropdowns.
type Group struct {
	Name  string
	Label string
	// Layout overrides the default layout when non-empty.
	Layout     string
	Matches    []MatchRule
	Scratchpad bool
	DropDowns  []DropDown
}

// DisplayLabel returns the label, or the name when no label is set.
func (g *Group) DisplayLabel() string {
	if g.Label != "" {
		return g.Label
	}
	return g.Name
}

func (g *Group) matches(m WindowMetadata) bool {
	for _, r := range g.Matches {
		if r.Match(m) {
			return true
		}
	}
	return false
}
