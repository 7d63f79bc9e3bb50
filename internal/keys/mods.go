package keys

import (
	"fmt"
	"strings"
)

// Mod is a set of modifier keys. The bit positions match the X11 core
// protocol's modifier mask, so a Mod converts directly to and from a key
// event's state field.
type Mod uint16

const (
	Shift Mod = 1 << iota
	Lock
	Control
	Mod1
	Mod2
	Mod3
	Mod4
	Mod5
)

// ModMask covers every modifier a binding may name.
const ModMask = Shift | Lock | Control | Mod1 | Mod2 | Mod3 | Mod4 | Mod5

// LockMods are Caps Lock and Num Lock. Key events are matched with them
// cleared, so a binding that names one can never fire.
const LockMods = Lock | Mod2

// modOrder is the order Mod.String names modifiers in.
var modOrder = []struct {
	m    Mod
	name string
}{
	{Mod4, "mod4"},
	{Mod1, "mod1"},
	{Mod2, "mod2"},
	{Mod3, "mod3"},
	{Mod5, "mod5"},
	{Control, "control"},
	{Shift, "shift"},
	{Lock, "lock"},
}

var modNames = map[string]Mod{
	"shift":   Shift,
	"lock":    Lock,
	"control": Control,
	"ctrl":    Control,
	"mod1":    Mod1,
	"alt":     Mod1,
	"mod2":    Mod2,
	"mod3":    Mod3,
	"mod4":    Mod4,
	"super":   Mod4,
	"mod5":    Mod5,
}

// ParseMod parses one modifier name, such as "mod4", "super" or "ctrl".
func ParseMod(name string) (Mod, error) {
	if m, ok := modNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// ParseMods parses a list of modifier names into a set. The name "mod"
// stands for groupMod, the configured window-manager modifier.
func ParseMods(names []string, groupMod Mod) (Mod, error) {
	var m Mod
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), "mod") {
			m |= groupMod
			continue
		}
		x, err := ParseMod(n)
		if err != nil {
			return 0, err
		}
		m |= x
	}
	return m, nil
}

// ParseChord parses "mod+shift+s" style text into a modifier set and key.
func ParseChord(s string, groupMod Mod) (Mod, string, error) {
	parts := strings.Split(s, "+")
	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" {
		return 0, "", fmt.Errorf("missing key in %q", s)
	}
	m, err := ParseMods(parts[:len(parts)-1], groupMod)
	if err != nil {
		return 0, "", err
	}
	return m, key, nil
}

func (m Mod) String() string {
	var names []string
	for _, o := range modOrder {
		if m&o.m != 0 {
			names = append(names, o.name)
		}
	}
	return strings.Join(names, "+")
}

// Chord formats a modifier set and key the way error messages and logs name
// a binding, for example "mod4+shift+s".
func Chord(m Mod, key string) string {
	if m == 0 {
		return key
	}
	return m.String() + "+" + key
}
