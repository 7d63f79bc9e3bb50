// Package topology enumerates display outputs and reports when the set of
// outputs may have changed.
package topology

import (
	"fmt"

	"github.com/sirupsen/logrus"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
)

// Connection is an output's connection state.
type Connection int

const (
	Connected Connection = iota
	Disconnected
)

func (c Connection) String() string {
	if c == Connected {
		return "connected"
	}
	return "disconnected"
}

// Output is a physical or virtual display surface.
type Output struct {
	ID         string
	Preferred  bool
	Connection Connection
}

// EventKind classifies a topology event. Only Changed exists: consumers
// re-enumerate rather than apply a diff.
type EventKind int

const (
	Changed EventKind = iota
)

// Event is emitted when the output topology may have changed.
type Event struct {
	Kind EventKind
}

// Source enumerates the currently known outputs. Every call queries the
// display server afresh.
type Source interface {
	Outputs() ([]Output, error)
}

// IsPreferred is the capability check used to decide whether a display
// server's output record counts as preferred. A record exposing
// Preferred() bool is taken at its word; one exposing only NumPreferred() int
// is preferred when that count is non-zero.
func IsPreferred(info interface{}) bool {
	switch v := info.(type) {
	case interface{ Preferred() bool }:
		return v.Preferred()
	case interface{ NumPreferred() int }:
		return v.NumPreferred() != 0
	}
	return false
}

// CountMode selects which outputs Detector.Count counts.
type CountMode int

const (
	// CountPreferred counts outputs flagged preferred. This reproduces the
	// heuristic the configuration was built around; a connected output
	// without a preferred mode is not counted.
	CountPreferred CountMode = iota
	// CountConnected counts every connected output.
	CountConnected
)

// ParseCountMode parses "preferred" or "connected". The empty string means
// CountPreferred.
func ParseCountMode(s string) (CountMode, error) {
	switch s {
	case "", "preferred":
		return CountPreferred, nil
	case "connected":
		return CountConnected, nil
	}
	return CountPreferred, fmt.Errorf("unknown output count mode %q", s)
}

// Detector turns a Source into an output count. It never fails: any query
// error, including a panic inside the source, yields a count of 1 so that a
// headless or broken display never leaves zero screens configured.
type Detector struct {
	Source Source
	Mode   CountMode
	Log    *logrus.Entry
}

// Detect returns the counted outputs and their number. On failure it returns
// no outputs and a count of 1.
func (d *Detector) Detect() (counted []Output, n int) {
	outputs, err := d.query()
	if err != nil {
		d.Log.WithError(err).Warn("output query failed, assuming one screen")
		return nil, 1
	}
	for _, o := range outputs {
		if d.counts(o) {
			counted = append(counted, o)
		}
	}
	d.Log.WithFields(logrus.Fields{
		"outputs": len(outputs),
		"counted": len(counted),
	}).Debug("detected outputs")
	return counted, len(counted)
}

// Count returns the number of counted outputs, or 1 on failure.
func (d *Detector) Count() int {
	_, n := d.Detect()
	return n
}

func (d *Detector) counts(o Output) bool {
	if d.Mode == CountConnected {
		return o.Connection == Connected
	}
	return o.Preferred
}

func (d *Detector) query() (outputs []Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			outputs, err = nil, tilerrors.TopologyQuery(fmt.Errorf("panic: %v", r))
		}
	}()
	if d.Source == nil {
		return nil, tilerrors.TopologyQuery(fmt.Errorf("no output source"))
	}
	outputs, err = d.Source.Outputs()
	if err != nil {
		return nil, tilerrors.TopologyQuery(err)
	}
	return outputs, nil
}
