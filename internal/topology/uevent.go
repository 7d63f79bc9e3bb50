package topology

import (
	"bytes"
	"strings"
	"sync"
	"time"
)

// DefaultSubsystem is the kernel device class whose events mean the set of
// outputs may have changed.
const DefaultSubsystem = "drm"

// DefaultQuiet is how long the monitor waits for a burst of device events to
// go quiet before reporting it.
const DefaultQuiet = 500 * time.Millisecond

// uevent is a kernel object event as broadcast on NETLINK_KOBJECT_UEVENT:
//
//	change@/devices/pci0000:00/0000:00:02.0/drm/card0\0ACTION=change\0SUBSYSTEM=drm\0...
type uevent struct {
	Action    string
	DevPath   string
	Subsystem string
}

func parseUevent(b []byte) (uevent, bool) {
	fields := bytes.Split(b, []byte{0})
	if len(fields) == 0 {
		return uevent{}, false
	}
	var u uevent
	header := string(fields[0])
	if i := strings.IndexByte(header, '@'); i > 0 {
		u.Action, u.DevPath = header[:i], header[i+1:]
	} else {
		// udevd rebroadcasts carry a "libudev" magic header instead.
		return uevent{}, false
	}
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(string(f), "=")
		if !ok {
			continue
		}
		switch k {
		case "ACTION":
			u.Action = v
		case "DEVPATH":
			u.DevPath = v
		case "SUBSYSTEM":
			u.Subsystem = v
		}
	}
	return u, true
}

// debouncer calls fire once after a burst of trigger calls has been quiet for
// the configured duration.
type debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	timer *time.Timer
	gen   uint64
	fire  func()
}

func newDebouncer(quiet time.Duration, fire func()) *debouncer {
	return &debouncer{quiet: quiet, fire: fire}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if d.gen != gen {
			// Superseded by a later trigger, or stopped.
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fire()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
