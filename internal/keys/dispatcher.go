// Package keys maps (modifier set, key) chords to actions and runs them
// against the window manager's live context.
package keys

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
)

// Binding is one (modifier set, key symbol) chord and the action it runs.
type Binding struct {
	Mods   Mod
	Key    string
	Action Action
	Desc   string
}

// Chord returns the binding's "mods+key" name.
func (b Binding) Chord() string { return Chord(b.Mods, b.Key) }

type chordKey struct {
	mods Mod
	key  string
}

// Dispatcher owns the dispatch table. It is built once at startup and then
// used from the main loop only.
type Dispatcher struct {
	bindings []Binding
	index    map[chordKey]int
	busy     atomic.Bool
	log      *logrus.Entry
}

func NewDispatcher(log *logrus.Entry) *Dispatcher {
	return &Dispatcher{index: map[chordKey]int{}, log: log}
}

// Register adds b. A chord that is already bound is a BINDING_CONFLICT
// error naming the chord; the table is left unchanged.
func (d *Dispatcher) Register(b Binding) error {
	if b.Key == "" {
		return tilerrors.ConfigInvalid(fmt.Sprintf("binding %q has no key", b.Chord()))
	}
	if !b.Action.Valid() {
		return tilerrors.ConfigInvalid(fmt.Sprintf("binding %q has no action", b.Chord()))
	}
	b.Mods &= ModMask
	k := chordKey{b.Mods, b.Key}
	if _, ok := d.index[k]; ok {
		return tilerrors.BindingConflict(b.Chord())
	}
	d.index[k] = len(d.bindings)
	d.bindings = append(d.bindings, b)
	return nil
}

// RegisterAll registers bs in order, stopping at the first error.
func (d *Dispatcher) RegisterAll(bs []Binding) error {
	for _, b := range bs {
		if err := d.Register(b); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the binding whose modifier set equals mods exactly. A
// binding for {mod4} does not match {mod4, shift} and vice versa.
func (d *Dispatcher) Resolve(mods Mod, key string) (Binding, bool) {
	i, ok := d.index[chordKey{mods & ModMask, key}]
	if !ok {
		return Binding{}, false
	}
	return d.bindings[i], true
}

// Dispatch runs a against c synchronously. It fails with DISPATCH_BUSY when
// called from inside another action, and recovers a panicking action into a
// DISPATCH_FAILED error. Failed actions are not retried.
func (d *Dispatcher) Dispatch(a Action, c *Context) error {
	return d.dispatch("", a, c)
}

func (d *Dispatcher) dispatch(chord string, a Action, c *Context) (err error) {
	if !d.busy.CompareAndSwap(false, true) {
		return tilerrors.DispatchBusy(a.String())
	}
	defer d.busy.Store(false)
	defer func() {
		if r := recover(); r != nil {
			err = tilerrors.DispatchFailed(chord, a.String(), fmt.Errorf("panic: %v", r))
		}
	}()
	if err := a.Run(c); err != nil {
		return tilerrors.DispatchFailed(chord, a.String(), err)
	}
	return nil
}

// HandleKey resolves and dispatches one key press. It reports whether a
// binding matched. Failures are logged with the binding's chord and returned;
// the caller carries on with the next event.
func (d *Dispatcher) HandleKey(mods Mod, key string, c *Context) (bool, error) {
	b, ok := d.Resolve(mods, key)
	if !ok {
		return false, nil
	}
	err := d.dispatch(b.Chord(), b.Action, c)
	if err != nil {
		d.log.WithError(err).WithFields(logrus.Fields{
			"key":    b.Chord(),
			"action": b.Action.String(),
		}).Warn("key action failed")
	}
	return true, err
}

// Bindings returns the table in registration order.
func (d *Dispatcher) Bindings() []Binding {
	out := make([]Binding, len(d.bindings))
	copy(out, d.bindings)
	return out
}

// Len returns the number of bindings.
func (d *Dispatcher) Len() int { return len(d.bindings) }
