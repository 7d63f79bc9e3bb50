package main

// These constants come from /usr/include/X11/keysymdef.h.

import (
	"strconv"

	xp "github.com/BurntSushi/xgb/xproto"
)

const (
	xkISOLeftTab = 0xfe20
	xkBackspace  = 0xff08
	xkTab        = 0xff09
	xkReturn     = 0xff0d
	xkPause      = 0xff13
	xkScrollLock = 0xff14
	xkEscape     = 0xff1b
	xkHome       = 0xff50
	xkLeft       = 0xff51
	xkUp         = 0xff52
	xkRight      = 0xff53
	xkDown       = 0xff54
	xkPageUp     = 0xff55
	xkPageDown   = 0xff56
	xkEnd        = 0xff57
	xkPrint      = 0xff61
	xkInsert     = 0xff63
	xkMenu       = 0xff67
	xkF1         = 0xffbe
	xkShiftL     = 0xffe1
	xkShiftR     = 0xffe2
	xkControlL   = 0xffe3
	xkControlR   = 0xffe4
	xkCapsLock   = 0xffe5
	xkShiftLock  = 0xffe6
	xkMetaL      = 0xffe7
	xkMetaR      = 0xffe8
	xkAltL       = 0xffe9
	xkAltR       = 0xffea
	xkSuperL     = 0xffeb
	xkSuperR     = 0xffec
	xkHyperL     = 0xffed
	xkHyperR     = 0xffee
	xkDelete     = 0xffff

	xkAudioLowerVolume = 0x1008ff11
	xkAudioMute        = 0x1008ff12
	xkAudioRaiseVolume = 0x1008ff13
	xkAudioPlay        = 0x1008ff14
	xkAudioStop        = 0x1008ff15
	xkAudioPrev        = 0x1008ff16
	xkAudioNext        = 0x1008ff17
	xkMonBrightnessUp  = 0x1008ff02
	xkMonBrightnessDn  = 0x1008ff03
)

// keysymNames maps the X keysym names used in key bindings, such as "Return"
// or "equal", to keysyms. Letters and digits are added by init.
var keysymNames = map[string]xp.Keysym{
	"space":        ' ',
	"exclam":       '!',
	"quotedbl":     '"',
	"numbersign":   '#',
	"dollar":       '$',
	"percent":      '%',
	"ampersand":    '&',
	"apostrophe":   '\'',
	"parenleft":    '(',
	"parenright":   ')',
	"asterisk":     '*',
	"plus":         '+',
	"comma":        ',',
	"minus":        '-',
	"period":       '.',
	"slash":        '/',
	"colon":        ':',
	"semicolon":    ';',
	"less":         '<',
	"equal":        '=',
	"greater":      '>',
	"question":     '?',
	"at":           '@',
	"bracketleft":  '[',
	"backslash":    '\\',
	"bracketright": ']',
	"asciicircum":  '^',
	"underscore":   '_',
	"grave":        '`',
	"braceleft":    '{',
	"bar":          '|',
	"braceright":   '}',
	"asciitilde":   '~',

	"ISO_Left_Tab": xkISOLeftTab,
	"BackSpace":    xkBackspace,
	"Tab":          xkTab,
	"Return":       xkReturn,
	"Pause":        xkPause,
	"Scroll_Lock":  xkScrollLock,
	"Escape":       xkEscape,
	"Home":         xkHome,
	"Left":         xkLeft,
	"Up":           xkUp,
	"Right":        xkRight,
	"Down":         xkDown,
	"Page_Up":      xkPageUp,
	"Prior":        xkPageUp,
	"Page_Down":    xkPageDown,
	"Next":         xkPageDown,
	"End":          xkEnd,
	"Print":        xkPrint,
	"Insert":       xkInsert,
	"Menu":         xkMenu,
	"Delete":       xkDelete,

	"XF86AudioLowerVolume":  xkAudioLowerVolume,
	"XF86AudioMute":         xkAudioMute,
	"XF86AudioRaiseVolume":  xkAudioRaiseVolume,
	"XF86AudioPlay":         xkAudioPlay,
	"XF86AudioStop":         xkAudioStop,
	"XF86AudioPrev":         xkAudioPrev,
	"XF86AudioNext":         xkAudioNext,
	"XF86MonBrightnessUp":   xkMonBrightnessUp,
	"XF86MonBrightnessDown": xkMonBrightnessDn,
}

// namesByKeysym is the inverse of keysymNames. Where two names share a
// keysym, the one listed in preferredNames wins.
var namesByKeysym = map[xp.Keysym]string{}

var preferredNames = []string{"Page_Up", "Page_Down"}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		keysymNames[string(c)] = xp.Keysym(c)
	}
	for c := '0'; c <= '9'; c++ {
		keysymNames[string(c)] = xp.Keysym(c)
	}
	for i := 0; i < 12; i++ {
		keysymNames["F"+strconv.Itoa(i+1)] = xp.Keysym(xkF1 + i)
	}
	for name, ks := range keysymNames {
		if _, ok := namesByKeysym[ks]; !ok {
			namesByKeysym[ks] = name
		}
	}
	for _, name := range preferredNames {
		namesByKeysym[keysymNames[name]] = name
	}
}

// keysymForName returns the keysym for a binding's key name. Upper case
// letters name the same key as lower case ones.
func keysymForName(name string) (xp.Keysym, bool) {
	if ks, ok := keysymNames[name]; ok {
		return ks, true
	}
	if len(name) == 1 && 'A' <= name[0] && name[0] <= 'Z' {
		return xp.Keysym(name[0] - 'A' + 'a'), true
	}
	return 0, false
}

// keysymName is the binding name of a keysym, or "" for one no binding can
// name.
func keysymName(keysym xp.Keysym) string {
	if 'A' <= keysym && keysym <= 'Z' {
		keysym += 'a' - 'A'
	}
	return namesByKeysym[keysym]
}

func keysymString(keysym xp.Keysym) string {
	switch keysym {
	case xkShiftL:
		return "ShiftL"
	case xkShiftR:
		return "ShiftR"
	case xkControlL:
		return "ControlL"
	case xkControlR:
		return "ControlR"
	case xkCapsLock:
		return "CapsLock"
	case xkShiftLock:
		return "ShiftLock"
	case xkMetaL:
		return "MetaL"
	case xkMetaR:
		return "MetaR"
	case xkAltL:
		return "AltL"
	case xkAltR:
		return "AltR"
	case xkSuperL:
		return "SuperL"
	case xkSuperR:
		return "SuperR"
	case xkHyperL:
		return "HyperL"
	case xkHyperR:
		return "HyperR"
	}
	if name := keysymName(keysym); name != "" {
		return name
	}
	return "UnknownKeysym"
}
