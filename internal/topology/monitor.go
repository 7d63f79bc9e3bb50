package topology

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Monitor listens for kernel device events of one subsystem and reports each
// burst of them as a single Changed event. It never inspects what changed.
type Monitor struct {
	// Subsystem filters device events. Empty means DefaultSubsystem.
	Subsystem string
	// Quiet is the debounce period. Zero means DefaultQuiet.
	Quiet time.Duration
	Log   *logrus.Entry
}

func (m *Monitor) subsystem() string {
	if m.Subsystem == "" {
		return DefaultSubsystem
	}
	return m.Subsystem
}

func (m *Monitor) quiet() time.Duration {
	if m.Quiet <= 0 {
		return DefaultQuiet
	}
	return m.Quiet
}

// handleMessage feeds one raw netlink datagram through the subsystem filter.
func (m *Monitor) handleMessage(b []byte, d *debouncer) {
	u, ok := parseUevent(b)
	if !ok || u.Subsystem != m.subsystem() {
		return
	}
	m.Log.WithFields(logrus.Fields{
		"action":  u.Action,
		"devpath": u.DevPath,
	}).Debug("device event")
	d.trigger()
}
