/*
Tiler is a keyboard driven tiling window manager for X11 that keeps working
as monitors come and go. It sorts windows into named groups, shows one group
per screen, and rebuilds its screens whenever the kernel reports a display
change, such as a laptop being docked or a projector being unplugged.


INSTALLATION

To install tiler:
	1. Install Go (as per https://go.dev/doc/install or get it from your
	   distribution).
	2. Run "go install github.com/nigeltao/tiler/tiler@latest".

Tiler is designed to run from an Xsession session. Add this line to the end of
your ~/.xsession file:
	exec /path/to/your/tiler
where the path is wherever "go install" wrote to, usually $HOME/go/bin.


SCREENS

Tiler counts the outputs that have a preferred mode (or, with "count:
connected", every connected output) and makes that many screens. The first is
the master screen. Before the screens are built, tiler runs
~/.config/tiler/screenlayouts/<n>screens.sh, with n also as its first
argument, which is the place to call xrandr to arrange the monitors. A missing
or failing script is logged and otherwise ignored.

Tiler listens for kernel "drm" device events. A burst of them, as happens
when a cable is plugged in, is treated as one change once it has been quiet
for half a second. Each change runs the layout script again and rebuilds the
screens; groups stay on the screen they were on where that screen still
exists.

The "tiler outputs" command lists the outputs and how many screens they make,
without starting the window manager.


USAGE

All default shortcuts hold down the Super ('Windows') key, written "mod"
below. Mod and Return opens a terminal, mod and 'R' a launcher, mod and 'C'
closes the focused window. Mod and 'H', 'J', 'K' or 'L' move the focus
between windows; add Control to move the window instead, or Shift and 'H' or
'L' to shrink or grow it. Mod and Tab cycles the layouts: monadtall (a main
window beside a stack), max (one window at a time) and monadwide (a main
window above a stack).

Each group has a key. Mod and the group's key shows that group on the current
screen; if it is already on another screen, the two screens swap groups. Mod
and Shift and the group's key moves the focused window to that group and
follows it. Mod and 'Q' or 'W' move to the first or second screen.

The scratchpad is a hidden group of dropdown windows. Mod and a dropdown's key
starts its program the first time and afterwards shows or hides its window,
floating over the current screen. A dropdown configured to hide on focus loss
disappears as soon as another window takes the focus.

Dialogs, transient windows and anything matching a float rule float above the
tiled windows. Mod and the left mouse button drags a window, mod and the right
button resizes it, and either makes a tiled window float. Mod and the middle
button raises a window. Focus follows the mouse unless follow_mouse_focus is
turned off.

To restart tiler in place, keeping every window, hit mod and Control and 'R'.
Tiler also restarts itself whenever its config file is saved, provided the new
file is valid. Mod and Control and 'Q' quits: every window that supports it
is asked to close, and tiler exits once they have, or after ten seconds.


CUSTOMIZATION

Tiler reads ~/.config/tiler/config.yml (or config.yaml or config.toml, or the
file named by --config). Run "tiler default-config" for the built-in
configuration, a good starting point, "tiler schema" for its JSON schema, and
"tiler check" to validate a file without starting. A group listed twice, a
second scratchpad or two bindings for the same keys are reported as errors
and tiler refuses to start with them.

~/.config/tiler/autostart.sh runs once when tiler first starts, but not when
it restarts in place.


DEVELOPMENT

When working on tiler, it can be run in a nested X server such as Xephyr. From
the repository root:
	Xephyr :9 2>/dev/null &
	DISPLAY=:9 go run ./tiler -v
*/
package main
