package topology

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nigeltao/tiler/internal/logging"
)

type fakeSource struct {
	outputs []Output
	err     error
	panics  bool
	calls   int
}

func (s *fakeSource) Outputs() ([]Output, error) {
	s.calls++
	if s.panics {
		panic("display went away")
	}
	return s.outputs, s.err
}

type boolInfo struct{ preferred bool }

func (b boolInfo) Preferred() bool { return b.preferred }

type countInfo struct{ n int }

func (c countInfo) NumPreferred() int { return c.n }

type bothInfo struct{}

func (bothInfo) Preferred() bool   { return false }
func (bothInfo) NumPreferred() int { return 3 }

func TestIsPreferred(t *testing.T) {
	tests := []struct {
		name string
		info interface{}
		want bool
	}{
		{"bool true", boolInfo{true}, true},
		{"bool false", boolInfo{false}, false},
		{"count one", countInfo{1}, true},
		{"count many", countInfo{2}, true},
		{"count zero", countInfo{0}, false},
		{"bool wins over count", bothInfo{}, false},
		{"no capability", struct{}{}, false},
		{"nil", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsPreferred(tc.info))
		})
	}
}

func newDetector(src Source, mode CountMode) *Detector {
	return &Detector{Source: src, Mode: mode, Log: logging.NewLogger("topology-test")}
}

func TestDetectorCountsPreferred(t *testing.T) {
	src := &fakeSource{outputs: []Output{
		{ID: "eDP-1", Preferred: true, Connection: Connected},
		{ID: "HDMI-1", Preferred: false, Connection: Connected},
		{ID: "DP-1", Preferred: true, Connection: Connected},
		{ID: "DP-2", Connection: Disconnected},
	}}
	d := newDetector(src, CountPreferred)

	counted, n := d.Detect()
	assert.Equal(t, 2, n)
	require.Len(t, counted, 2)
	assert.Equal(t, "eDP-1", counted[0].ID)
	assert.Equal(t, "DP-1", counted[1].ID)

	d.Mode = CountConnected
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 2, src.calls, "every call queries afresh")
}

func TestDetectorFallsBackToOne(t *testing.T) {
	assert.Equal(t, 1, newDetector(&fakeSource{err: errors.New("cannot open display")}, CountPreferred).Count())
	assert.Equal(t, 1, newDetector(&fakeSource{panics: true}, CountPreferred).Count())
	assert.Equal(t, 1, newDetector(nil, CountPreferred).Count())
}

func TestDetectorZeroPreferredIsZero(t *testing.T) {
	// A working display with nothing preferred reports zero; the screen
	// allocator is responsible for never configuring zero screens.
	d := newDetector(&fakeSource{outputs: []Output{}}, CountPreferred)
	counted, n := d.Detect()
	assert.Equal(t, 0, n)
	assert.Empty(t, counted)
}

func TestParseCountMode(t *testing.T) {
	m, err := ParseCountMode("")
	require.NoError(t, err)
	assert.Equal(t, CountPreferred, m)
	m, err = ParseCountMode("connected")
	require.NoError(t, err)
	assert.Equal(t, CountConnected, m)
	_, err = ParseCountMode("all")
	assert.Error(t, err)
}

func TestParseUevent(t *testing.T) {
	msg := []byte("change@/devices/pci0000:00/0000:00:02.0/drm/card0\x00" +
		"ACTION=change\x00DEVPATH=/devices/pci0000:00/0000:00:02.0/drm/card0\x00" +
		"SUBSYSTEM=drm\x00HOTPLUG=1\x00SEQNUM=4242\x00")
	u, ok := parseUevent(msg)
	require.True(t, ok)
	assert.Equal(t, "change", u.Action)
	assert.Equal(t, "drm", u.Subsystem)
	assert.Equal(t, "/devices/pci0000:00/0000:00:02.0/drm/card0", u.DevPath)

	_, ok = parseUevent([]byte("libudev\x00\xfe\xed\xca\xfe"))
	assert.False(t, ok)
	_, ok = parseUevent(nil)
	assert.False(t, ok)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	for i := 0; i < 5; i++ {
		d.trigger()
		time.Sleep(2 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	d.trigger()
	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerStop(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	d.trigger()
	d.stop()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestMonitorFiltersSubsystem(t *testing.T) {
	var fired atomic.Int32
	m := &Monitor{Quiet: 10 * time.Millisecond, Log: logging.NewLogger("topology-test")}
	d := newDebouncer(m.quiet(), func() { fired.Add(1) })

	m.handleMessage([]byte("add@/devices/usb1/1-1\x00ACTION=add\x00SUBSYSTEM=usb\x00"), d)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// Payload details such as ACTION are not inspected.
	m.handleMessage([]byte("remove@/devices/drm/card0-HDMI-A-1\x00ACTION=remove\x00SUBSYSTEM=drm\x00"), d)
	m.handleMessage([]byte("add@/devices/drm/card0-HDMI-A-1\x00ACTION=add\x00SUBSYSTEM=drm\x00"), d)
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMonitorDefaults(t *testing.T) {
	m := &Monitor{}
	assert.Equal(t, DefaultSubsystem, m.subsystem())
	assert.Equal(t, DefaultQuiet, m.quiet())
}
